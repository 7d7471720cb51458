// Package telemetry records per-step controller state to CSV for offline
// tuning analysis.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// StepRecord is one fixed step's worth of state.
type StepRecord struct {
	Tick     uint64  `csv:"tick"`
	PosX     float64 `csv:"pos_x"`
	PosY     float64 `csv:"pos_y"`
	PosZ     float64 `csv:"pos_z"`
	VelX     float64 `csv:"vel_x"`
	VelY     float64 `csv:"vel_y"`
	VelZ     float64 `csv:"vel_z"`
	Grounded bool    `csv:"grounded"`
	Snapped  bool    `csv:"snapped"`
	Contacts int     `csv:"contacts"`
}

const flushEvery = 64

// Recorder buffers step records and appends them to steps.csv in the output
// directory. A nil Recorder is valid and records nothing.
type Recorder struct {
	file          *os.File
	buf           []*StepRecord
	headerWritten bool
}

// NewRecorder creates the output directory and steps.csv. An empty dir
// disables recording and returns a nil Recorder.
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "steps.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating steps.csv: %w", err)
	}
	return &Recorder{file: f}, nil
}

// Record buffers one step. Buffered records are flushed in batches.
func (r *Recorder) Record(rec StepRecord) error {
	if r == nil {
		return nil
	}
	r.buf = append(r.buf, &rec)
	if len(r.buf) >= flushEvery {
		return r.flush()
	}
	return nil
}

func (r *Recorder) flush() error {
	if len(r.buf) == 0 {
		return nil
	}
	records := r.buf
	r.buf = nil

	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.file); err != nil {
			return fmt.Errorf("writing steps.csv: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.file); err != nil {
		return fmt.Errorf("appending steps.csv: %w", err)
	}
	return nil
}

// Close flushes any buffered records and closes the file.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	flushErr := r.flush()
	closeErr := r.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
