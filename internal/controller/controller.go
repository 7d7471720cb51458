// Package controller drives one physics body's locomotion. An external
// scheduler calls OnFrame at render cadence and OnFixedStep at simulation
// cadence; collision and input collaborators feed contacts and intent in
// between. The controller owns no threads and assumes a single caller.
package controller

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Versifine/strider/internal/contact"
	"github.com/Versifine/strider/internal/locomotion"
	"github.com/Versifine/strider/internal/look"
)

// Body is the physics body whose linear velocity the controller amends.
// Position feeds the snap probe; velocity is read and conditionally rewritten
// once per fixed step.
type Body interface {
	Position() r3.Vec
	Velocity() r3.Vec
	SetVelocity(v r3.Vec)
}

// Publisher receives controller state transitions. Usually an event bus;
// nil disables publishing.
type Publisher interface {
	Publish(name string, evt any)
}

// Event names published on grounded-state transitions.
const (
	EventGrounded = "controller.grounded"
	EventAirborne = "controller.airborne"
	EventSnap     = "controller.snap"
)

// Transition is the payload for all controller events.
type Transition struct {
	Tick     uint64
	Position r3.Vec
	Normal   r3.Vec
}

// Params collects the static configuration for one controller.
type Params struct {
	SpeedMax        float64
	AccelerationMax float64
	AirMultiplier   float64
	GroundThreshold float64
	ProbeDistance   float64
	Sensitivity     float64
	FOV             float64
}

type Controller struct {
	body   Body
	prober contact.Prober
	bus    Publisher

	tracker *contact.Tracker
	solver  *locomotion.Solver
	rig     *look.Rig

	params  Params
	enabled bool

	intent          locomotion.Intent
	pendingLookX    float64
	pendingLookY    float64
	desiredVelocity r3.Vec

	tick        uint64
	wasGrounded bool
	grounded    bool
	snapped     bool
}

// New wires a controller to its collaborators. bus may be nil.
func New(body Body, prober contact.Prober, bus Publisher, params Params) *Controller {
	return &Controller{
		body:    body,
		prober:  prober,
		bus:     bus,
		tracker: contact.NewTracker(params.GroundThreshold, params.ProbeDistance),
		solver: locomotion.NewSolver(locomotion.Tuning{
			SpeedMax:        params.SpeedMax,
			AccelerationMax: params.AccelerationMax,
			AirMultiplier:   params.AirMultiplier,
		}),
		rig:     look.NewRig(params.Sensitivity, params.FOV),
		params:  params,
		enabled: true,
	}
}

// ApplyParams swaps the tuning values, e.g. after a config reload. Wiring
// (body, prober, bus) is fixed for the controller's lifetime.
func (c *Controller) ApplyParams(params Params) {
	if c == nil {
		return
	}
	c.params = params
	c.solver.SetTuning(locomotion.Tuning{
		SpeedMax:        params.SpeedMax,
		AccelerationMax: params.AccelerationMax,
		AirMultiplier:   params.AirMultiplier,
	})
	c.tracker.SetGroundThreshold(params.GroundThreshold)
	c.tracker.SetProbeDistance(params.ProbeDistance)
	c.rig.SetSensitivity(params.Sensitivity)
}

// SetEnabled toggles input ingestion. Disabling zeroes the held intent and
// any pending look delta rather than leaving them stale.
func (c *Controller) SetEnabled(enabled bool) {
	if c == nil {
		return
	}
	c.enabled = enabled
	if !enabled {
		c.intent = locomotion.Intent{}
		c.pendingLookX = 0
		c.pendingLookY = 0
	}
}

func (c *Controller) Enabled() bool {
	return c != nil && c.enabled
}

// SetMovementIntent records the frame's desired local-space motion. Each
// component is clamped to [-1, 1]; the pair is deliberately not normalized.
func (c *Controller) SetMovementIntent(x, z float64) {
	if c == nil || !c.enabled {
		return
	}
	c.intent = locomotion.Intent{X: clampAxis(x), Z: clampAxis(z)}
}

// AddLookDelta accumulates look input until the next OnFrame.
func (c *Controller) AddLookDelta(dx, dy float64) {
	if c == nil || !c.enabled {
		return
	}
	c.pendingLookX += dx
	c.pendingLookY += dy
}

// ReportContact forwards one contact normal from the collision collaborator.
// Valid between the previous and current fixed step's resolution.
func (c *Controller) ReportContact(n r3.Vec) {
	if c == nil {
		return
	}
	c.tracker.ReportContact(n)
}

// OnFrame integrates look input, reapplies the configured field of view, and
// recomputes the desired velocity from the current intent and facing.
func (c *Controller) OnFrame(dt float64) {
	if c == nil {
		return
	}
	_ = dt // look deltas are already per-frame quantities

	dx, dy := c.pendingLookX, c.pendingLookY
	c.pendingLookX = 0
	c.pendingLookY = 0
	c.rig.Apply(dx, dy)

	// FOV is reapplied unconditionally: a plain configuration value, not
	// locomotion state.
	c.rig.SetFOV(c.params.FOV)

	c.desiredVelocity = c.solver.DesiredVelocity(c.intent, c.rig.Forward(), c.rig.Right())
}

// OnFixedStep runs one simulation step: resolve the step's effective contact
// normal, correct velocity if grounding was forced by a snap, converge the
// tangential velocity toward the desired velocity, and hand the result back
// to the body. Contact accumulation is cleared last.
func (c *Controller) OnFixedStep(dt float64) {
	if c == nil {
		return
	}
	c.tick++
	c.tracker.BeginStep()

	res := c.tracker.Resolve(c.body.Position(), c.prober)

	vel := c.body.Velocity()
	if res.Snapped {
		vel = c.solver.CorrectOnSnap(vel, res.Normal)
		c.publish(EventSnap, res.Normal)
	}
	vel = c.solver.Step(vel, c.desiredVelocity, res.Normal, res.Grounded, dt)
	c.body.SetVelocity(vel)

	if res.Grounded != c.wasGrounded {
		if res.Grounded {
			c.publish(EventGrounded, res.Normal)
		} else {
			c.publish(EventAirborne, res.Normal)
		}
	}
	c.wasGrounded = res.Grounded
	c.grounded = res.Grounded
	c.snapped = res.Snapped

	c.tracker.ClearStep()
}

// Grounded reports the outcome of the most recent fixed step.
func (c *Controller) Grounded() bool {
	return c != nil && c.grounded
}

// Snapped reports whether the most recent fixed step grounded via the probe.
func (c *Controller) Snapped() bool {
	return c != nil && c.snapped
}

// Tick is the number of fixed steps taken.
func (c *Controller) Tick() uint64 {
	if c == nil {
		return 0
	}
	return c.tick
}

// Rig exposes the orientation rig for view consumers.
func (c *Controller) Rig() *look.Rig {
	if c == nil {
		return nil
	}
	return c.rig
}

// GroundContacts reports the live contact count accumulated for the upcoming
// step.
func (c *Controller) GroundContacts() int {
	if c == nil {
		return 0
	}
	return c.tracker.GroundContacts()
}

func (c *Controller) publish(name string, normal r3.Vec) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(name, Transition{
		Tick:     c.tick,
		Position: c.body.Position(),
		Normal:   normal,
	})
}

func clampAxis(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
