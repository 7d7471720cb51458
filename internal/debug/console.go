// Package debug provides an interactive terminal console that drives the
// controller from raw keyboard input. It owns the frame/fixed-step loop, so
// the controller and body are only ever touched from its tick goroutine.
package debug

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Versifine/strider/internal/controller"
	"github.com/Versifine/strider/internal/physics"
	"github.com/Versifine/strider/internal/telemetry"
)

const (
	defaultTickInterval = 20 * time.Millisecond
	defaultMovePulse    = 180 * time.Millisecond

	// Raw look-delta per arrow key press. The rig scales it by sensitivity,
	// so at the default 0.5 one press turns 5 degrees.
	lookStep = 10.0
)

// Surface is the terrain the body walks on: the integrator's ground queries
// plus resting-contact detection for the tracker. Implementations must be
// immutable after construction; the console queries them from two goroutines.
type Surface interface {
	HeightAt(x, z float64) float64
	NormalAt(x, z float64) r3.Vec
	ContactNormals(pos r3.Vec) []r3.Vec
}

// statusSnapshot is the tick loop's published view of the simulation, read by
// the key goroutine for the status line and :state. The controller and body
// themselves are never touched outside the tick loop.
type statusSnapshot struct {
	pos      r3.Vec
	vel      r3.Vec
	dir      r3.Vec
	tick     uint64
	pitch    float64
	grounded bool
	snapped  bool
	enabled  bool
}

// Console reads keys in raw mode and steps the simulation on a fixed ticker.
type Console struct {
	ctrl         *controller.Controller
	body         *physics.Body
	surface      Surface
	recorder     *telemetry.Recorder
	tickInterval time.Duration
	movePulse    time.Duration
	home         r3.Vec

	mu            sync.Mutex
	intentX       float64
	intentZ       float64
	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time
	lookDX        float64
	lookDY        float64
	commandMode   bool
	commandBuf    []rune
	statusWidth   int
	snapshot      statusSnapshot

	// Key-driven mutations are queued here and consumed inside step, so the
	// controller and body stay single-caller.
	pendingParams   *controller.Params
	pendingEnable   *bool
	pendingTeleport *r3.Vec
	pendingReset    bool
	enabled         bool
}

// NewConsole wires the console to a controller, its body, and the surface the
// body moves over. recorder may be nil.
func NewConsole(ctrl *controller.Controller, body *physics.Body, surface Surface, recorder *telemetry.Recorder, tickRate int) *Console {
	interval := defaultTickInterval
	if tickRate > 0 {
		interval = time.Second / time.Duration(tickRate)
	}
	c := &Console{
		ctrl:         ctrl,
		body:         body,
		surface:      surface,
		recorder:     recorder,
		tickInterval: interval,
		movePulse:    defaultMovePulse,
		home:         body.Position(),
		enabled:      ctrl.Enabled(),
	}
	c.snapshot = c.takeSnapshot()
	return c
}

// Start switches the terminal to raw mode and blocks reading keys until ctx
// is cancelled or stdin fails.
func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.ctrl == nil {
		return fmt.Errorf("console controller is nil")
	}
	if c.body == nil {
		return fmt.Errorf("console body is nil")
	}
	if c.surface == nil {
		return fmt.Errorf("console surface is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Print("\r\n")
	}()

	fmt.Println("[debug] console started (W/A/S/D pulse, arrows look, X enable/disable, R reset, : command)")
	c.renderStatusLine()

	go c.tickLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		c.handleKey(reader, b)
	}
}

// tickLoop is the sole caller of controller, body, and recorder methods.
func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	dt := c.tickInterval.Seconds()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.step(dt)
			c.renderStatusLine()
		}
	}
}

// ApplyParams queues new tuning values for the next tick. Safe to call from
// any goroutine; the controller itself is only touched from the tick loop.
func (c *Console) ApplyParams(params controller.Params) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.pendingParams = &params
	c.mu.Unlock()
}

func (c *Console) step(dt float64) {
	c.applyPending()

	x, z, dx, dy := c.consumeInput()

	c.ctrl.SetMovementIntent(x, z)
	c.ctrl.AddLookDelta(dx, dy)
	for _, n := range c.surface.ContactNormals(c.body.Position()) {
		c.ctrl.ReportContact(n)
	}

	c.ctrl.OnFrame(dt)
	c.ctrl.OnFixedStep(dt)
	c.body.Integrate(c.surface, dt)

	pos := c.body.Position()
	vel := c.body.Velocity()
	if err := c.recorder.Record(telemetry.StepRecord{
		Tick:     c.ctrl.Tick(),
		PosX:     pos.X,
		PosY:     pos.Y,
		PosZ:     pos.Z,
		VelX:     vel.X,
		VelY:     vel.Y,
		VelZ:     vel.Z,
		Grounded: c.ctrl.Grounded(),
		Snapped:  c.ctrl.Snapped(),
		Contacts: c.ctrl.GroundContacts(),
	}); err != nil {
		slog.Debug("telemetry record failed", "error", err)
	}

	snap := c.takeSnapshot()
	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()
}

// applyPending drains queued key-driven mutations. Runs on the tick
// goroutine, the only caller of controller and body methods.
func (c *Console) applyPending() {
	c.mu.Lock()
	params := c.pendingParams
	enable := c.pendingEnable
	teleport := c.pendingTeleport
	reset := c.pendingReset
	c.pendingParams = nil
	c.pendingEnable = nil
	c.pendingTeleport = nil
	c.pendingReset = false
	c.mu.Unlock()

	if params != nil {
		c.ctrl.ApplyParams(*params)
		slog.Info("controller params applied",
			"speed_max", params.SpeedMax,
			"acceleration_max", params.AccelerationMax,
		)
	}
	if enable != nil {
		c.ctrl.SetEnabled(*enable)
	}
	if teleport != nil {
		c.body.SetPosition(*teleport)
		c.body.SetVelocity(r3.Vec{})
	}
	if reset {
		c.body.SetPosition(c.home)
		c.body.SetVelocity(r3.Vec{})
	}
}

// takeSnapshot reads controller and body state; tick goroutine only (and the
// constructor, before the loop starts).
func (c *Console) takeSnapshot() statusSnapshot {
	return statusSnapshot{
		pos:      c.body.Position(),
		vel:      c.body.Velocity(),
		dir:      c.ctrl.Rig().ViewDirection(),
		tick:     c.ctrl.Tick(),
		pitch:    c.ctrl.Rig().Pitch(),
		grounded: c.ctrl.Grounded(),
		snapped:  c.ctrl.Snapped(),
		enabled:  c.ctrl.Enabled(),
	}
}

// consumeInput snapshots movement intent and drains the accumulated look
// delta under the lock.
func (c *Console) consumeInput() (x, z, dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyMovementPulseLocked(time.Now())
	dx, dy = c.lookDX, c.lookDY
	c.lookDX = 0
	c.lookDY = 0
	return c.intentX, c.intentZ, dx, dy
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'w', 'W':
		c.pulseForward()
	case 's', 'S':
		c.pulseBackward()
	case 'a', 'A':
		c.pulseLeft()
	case 'd', 'D':
		c.pulseRight()
	case 'x', 'X':
		c.toggleEnabled()
	case 'r', 'R':
		c.resetBody()
	case 27: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch arrow {
		case 'D': // left
			c.addLook(-lookStep, 0)
		case 'C': // right
			c.addLook(lookStep, 0)
		case 'A': // up
			c.addLook(0, -lookStep)
		case 'B': // down
			c.addLook(0, lookStep)
		}
	}
	c.renderStatusLine()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Print("\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Print("\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Print("\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Printf("\r:%s ", buf)
		fmt.Printf("\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Printf("\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		c.mu.Lock()
		snap := c.snapshot
		c.mu.Unlock()
		fmt.Printf("[debug] tick=%d pos=(%.3f,%.3f,%.3f) vel=(%.3f,%.3f,%.3f) ground=%t snap=%t pitch=%.1f enabled=%t\r\n",
			snap.tick,
			snap.pos.X, snap.pos.Y, snap.pos.Z,
			snap.vel.X, snap.vel.Y, snap.vel.Z,
			snap.grounded, snap.snapped, snap.pitch, snap.enabled,
		)
	case "tp":
		if len(parts) != 4 {
			fmt.Printf("[debug] usage: :tp <x> <y> <z>\r\n")
			return
		}
		x, err1 := strconv.ParseFloat(parts[1], 64)
		y, err2 := strconv.ParseFloat(parts[2], 64)
		z, err3 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Printf("[debug] invalid tp args\r\n")
			return
		}
		c.queueTeleport(r3.Vec{X: x, Y: y, Z: z})
		fmt.Printf("[debug] tp set to (%.3f, %.3f, %.3f)\r\n", x, y, z)
	case "height":
		if len(parts) != 3 {
			fmt.Printf("[debug] usage: :height <x> <z>\r\n")
			return
		}
		x, err1 := strconv.ParseFloat(parts[1], 64)
		z, err2 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil {
			fmt.Printf("[debug] invalid height args\r\n")
			return
		}
		n := c.surface.NormalAt(x, z)
		fmt.Printf("[debug] surface (%.2f, %.2f): height=%.3f normal=(%.3f,%.3f,%.3f)\r\n",
			x, z, c.surface.HeightAt(x, z), n.X, n.Y, n.Z)
	default:
		fmt.Printf("[debug] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) printHelp() {
	fmt.Print("[debug] keys:\r\n")
	fmt.Print("  W/S/A/D: pulse movement (~180ms)\r\n")
	fmt.Print("  Arrow Left/Right: yaw\r\n")
	fmt.Print("  Arrow Up/Down: pitch\r\n")
	fmt.Print("  X: toggle controller input\r\n")
	fmt.Print("  R: reset to start position\r\n")
	fmt.Print("  : enter command mode\r\n")
	fmt.Print("[debug] commands:\r\n")
	fmt.Print("  :tp <x> <y> <z>\r\n")
	fmt.Print("  :height <x> <z>\r\n")
	fmt.Print("  :state\r\n")
	fmt.Print("  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	x, z := c.intentX, c.intentZ
	width := c.statusWidth
	snap := c.snapshot
	enabled := c.enabled
	c.mu.Unlock()

	line := fmt.Sprintf(
		"[intent:(%+.0f,%+.0f) on:%s | dir:(%.2f,%.2f,%.2f) | X:%.2f Y:%.2f Z:%.2f |v|:%.2f ground:%t]",
		x, z,
		boolLabel(enabled),
		snap.dir.X, snap.dir.Y, snap.dir.Z,
		snap.pos.X, snap.pos.Y, snap.pos.Z,
		r3.Norm(snap.vel),
		snap.grounded,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Printf("\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) addLook(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookDX += dx
	c.lookDY += dy
}

func (c *Console) toggleEnabled() {
	c.mu.Lock()
	c.enabled = !c.enabled
	enabled := c.enabled
	c.pendingEnable = &enabled
	if !enabled {
		c.intentX = 0
		c.intentZ = 0
		c.forwardUntil = time.Time{}
		c.backwardUntil = time.Time{}
		c.leftUntil = time.Time{}
		c.rightUntil = time.Time{}
		c.lookDX = 0
		c.lookDY = 0
	}
	c.mu.Unlock()
	slog.Debug("controller input toggled", "enabled", enabled)
}

func (c *Console) resetBody() {
	c.mu.Lock()
	c.pendingReset = true
	c.mu.Unlock()
	slog.Debug("body reset queued", "x", c.home.X, "y", c.home.Y, "z", c.home.Z)
}

func (c *Console) queueTeleport(pos r3.Vec) {
	c.mu.Lock()
	c.pendingTeleport = &pos
	c.mu.Unlock()
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (c *Console) pulseForward() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intentZ = 1
	c.forwardUntil = time.Now().Add(c.movePulse)
	c.backwardUntil = time.Time{}
}

func (c *Console) pulseBackward() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intentZ = -1
	c.backwardUntil = time.Now().Add(c.movePulse)
	c.forwardUntil = time.Time{}
}

func (c *Console) pulseLeft() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intentX = -1
	c.leftUntil = time.Now().Add(c.movePulse)
	c.rightUntil = time.Time{}
}

func (c *Console) pulseRight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intentX = 1
	c.rightUntil = time.Now().Add(c.movePulse)
	c.leftUntil = time.Time{}
}

func (c *Console) applyMovementPulseLocked(now time.Time) {
	if !c.forwardUntil.IsZero() && !now.Before(c.forwardUntil) {
		if c.intentZ > 0 {
			c.intentZ = 0
		}
		c.forwardUntil = time.Time{}
	}
	if !c.backwardUntil.IsZero() && !now.Before(c.backwardUntil) {
		if c.intentZ < 0 {
			c.intentZ = 0
		}
		c.backwardUntil = time.Time{}
	}
	if !c.leftUntil.IsZero() && !now.Before(c.leftUntil) {
		if c.intentX < 0 {
			c.intentX = 0
		}
		c.leftUntil = time.Time{}
	}
	if !c.rightUntil.IsZero() && !now.Before(c.rightUntil) {
		if c.intentX > 0 {
			c.intentX = 0
		}
		c.rightUntil = time.Time{}
	}
}
