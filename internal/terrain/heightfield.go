// Package terrain provides the demo ground geometry: a bilinear heightfield
// that serves both as the controller's snap probe and as the per-step source
// of contact normals.
package terrain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Versifine/strider/internal/contact"
)

// contactEpsilon is how close the body's feet must be to the surface for the
// field to report a live contact.
const contactEpsilon = 0.05

// Heightfield is a rectangular grid of surface heights, bilinearly
// interpolated between samples. Queries outside the grid clamp to the edge,
// extending the border cells to infinity.
type Heightfield struct {
	cellSize float64
	heights  [][]float64 // heights[iz][ix]
}

// New validates and wraps a height grid. The grid must be rectangular and at
// least 2x2 samples.
func New(heights [][]float64, cellSize float64) (*Heightfield, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %v", cellSize)
	}
	if len(heights) < 2 {
		return nil, fmt.Errorf("need at least 2 rows, got %d", len(heights))
	}
	width := len(heights[0])
	if width < 2 {
		return nil, fmt.Errorf("need at least 2 columns, got %d", width)
	}
	for i, row := range heights {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), width)
		}
	}
	return &Heightfield{cellSize: cellSize, heights: heights}, nil
}

// Generate fills a rows x cols grid from a height function of world x/z.
func Generate(rows, cols int, cellSize float64, f func(x, z float64) float64) (*Heightfield, error) {
	heights := make([][]float64, rows)
	for iz := range heights {
		row := make([]float64, cols)
		for ix := range row {
			row[ix] = f(float64(ix)*cellSize, float64(iz)*cellSize)
		}
		heights[iz] = row
	}
	return New(heights, cellSize)
}

// HeightAt samples the surface height under world (x, z).
func (h *Heightfield) HeightAt(x, z float64) float64 {
	fx := clampf(x/h.cellSize, 0, float64(len(h.heights[0])-1))
	fz := clampf(z/h.cellSize, 0, float64(len(h.heights)-1))

	ix := int(math.Floor(fx))
	iz := int(math.Floor(fz))
	if ix >= len(h.heights[0])-1 {
		ix = len(h.heights[0]) - 2
	}
	if iz >= len(h.heights)-1 {
		iz = len(h.heights) - 2
	}
	tx := fx - float64(ix)
	tz := fz - float64(iz)

	h00 := h.heights[iz][ix]
	h10 := h.heights[iz][ix+1]
	h01 := h.heights[iz+1][ix]
	h11 := h.heights[iz+1][ix+1]

	top := h00 + (h10-h00)*tx
	bottom := h01 + (h11-h01)*tx
	return top + (bottom-top)*tz
}

// NormalAt estimates the unit surface normal under world (x, z) by central
// differences one cell apart.
func (h *Heightfield) NormalAt(x, z float64) r3.Vec {
	s := h.cellSize
	dx := (h.HeightAt(x+s, z) - h.HeightAt(x-s, z)) / (2 * s)
	dz := (h.HeightAt(x, z+s) - h.HeightAt(x, z-s)) / (2 * s)
	return r3.Unit(r3.Vec{X: -dx, Y: 1, Z: -dz})
}

// ProbeDown implements contact.Prober: a vertical ray from pos to the
// surface directly beneath it. Positions below the surface miss; so do
// surfaces farther than maxDist.
func (h *Heightfield) ProbeDown(pos r3.Vec, maxDist float64) (contact.Hit, bool) {
	ground := h.HeightAt(pos.X, pos.Z)
	dist := pos.Y - ground
	if dist < 0 || dist > maxDist {
		return contact.Hit{}, false
	}
	return contact.Hit{
		Normal:   h.NormalAt(pos.X, pos.Z),
		Distance: dist,
	}, true
}

// ContactNormals reports the step's contact normals for a body whose feet
// are at pos: one surface normal when resting on (or within epsilon of) the
// ground, none otherwise.
func (h *Heightfield) ContactNormals(pos r3.Vec) []r3.Vec {
	if pos.Y-h.HeightAt(pos.X, pos.Z) > contactEpsilon {
		return nil
	}
	return []r3.Vec{h.NormalAt(pos.X, pos.Z)}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
