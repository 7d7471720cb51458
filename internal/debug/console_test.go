package debug

import (
	"math"
	"sync"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Versifine/strider/internal/controller"
	"github.com/Versifine/strider/internal/physics"
	"github.com/Versifine/strider/internal/terrain"
)

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func newTestConsole(t *testing.T) (*Console, *physics.Body) {
	t.Helper()
	field, err := terrain.Generate(8, 8, 1.0, func(x, z float64) float64 { return 1 })
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	body := physics.NewBody(r3.Vec{X: 4, Y: 1, Z: 4})
	ctrl := controller.New(body, field, nil, controller.Params{
		SpeedMax:        8,
		AccelerationMax: 30,
		AirMultiplier:   0.3,
		GroundThreshold: 0.9,
		ProbeDistance:   1.25,
		Sensitivity:     0.5,
		FOV:             70,
	})
	return NewConsole(ctrl, body, field, nil, 50), body
}

func TestConsole_TeleportAppliesOnNextStep(t *testing.T) {
	c, body := newTestConsole(t)

	c.queueTeleport(r3.Vec{X: 2, Y: 5, Z: 2})

	// Queued only: the body is untouched until the tick loop runs.
	approxEqual(t, body.Position().X, 4, 0, "position.x before step")

	c.step(0.02)

	pos := body.Position()
	approxEqual(t, pos.X, 2, 1e-12, "position.x")
	approxEqual(t, pos.Z, 2, 1e-12, "position.z")
	if pos.Y >= 5 || pos.Y < 4.9 {
		t.Fatalf("position.y = %.6f, want just below 5 after one step of gravity", pos.Y)
	}
}

func TestConsole_ResetAppliesOnNextStep(t *testing.T) {
	c, body := newTestConsole(t)

	c.queueTeleport(r3.Vec{X: 2, Y: 5, Z: 2})
	c.step(0.02)
	c.resetBody()
	c.step(0.02)

	pos := body.Position()
	approxEqual(t, pos.X, 4, 1e-12, "position.x")
	approxEqual(t, pos.Y, 1, 1e-12, "position.y clamped to surface at home")
	approxEqual(t, pos.Z, 4, 1e-12, "position.z")
}

func TestConsole_ToggleEnabledAppliesOnNextStep(t *testing.T) {
	c, _ := newTestConsole(t)

	c.pulseForward()
	c.toggleEnabled()

	c.mu.Lock()
	intentZ := c.intentZ
	c.mu.Unlock()
	if intentZ != 0 {
		t.Fatalf("intent.z = %v after disable, want 0", intentZ)
	}

	c.step(0.02)
	if c.ctrl.Enabled() {
		t.Fatal("controller still enabled after disable toggle stepped")
	}

	c.toggleEnabled()
	c.step(0.02)
	if !c.ctrl.Enabled() {
		t.Fatal("controller still disabled after enable toggle stepped")
	}
}

// Mirrors Start's goroutine structure: key handlers on one goroutine, the
// fixed-step loop on another. Run with -race.
func TestConsole_KeyHandlersSafeDuringTicks(t *testing.T) {
	c, _ := newTestConsole(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.renderStatusLine()
			c.resetBody()
			c.toggleEnabled()
			c.pulseForward()
			c.addLook(1, 1)
			c.queueTeleport(r3.Vec{X: 3, Y: 2, Z: 3})
			c.ApplyParams(controller.Params{
				SpeedMax:        4,
				AccelerationMax: 20,
				AirMultiplier:   0.3,
				GroundThreshold: 0.9,
				ProbeDistance:   1.25,
				Sensitivity:     0.5,
				FOV:             70,
			})
		}
	}()

	for i := 0; i < 100; i++ {
		c.step(0.005)
	}
	wg.Wait()

	if got := c.ctrl.Tick(); got != 100 {
		t.Fatalf("tick = %d, want 100", got)
	}
}
