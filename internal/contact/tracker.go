// Package contact tracks ground contacts for a single physics body across
// fixed simulation steps and resolves one effective contact normal per step.
package contact

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Up is the world up axis. Contact classification and the airborne fallback
// plane are both defined against it.
var Up = r3.Vec{Y: 1}

// Hit is the result of a downward ground probe.
type Hit struct {
	Normal   r3.Vec
	Distance float64
}

// Prober casts a ray straight down from pos and reports the first surface
// within maxDist. A miss returns ok=false, never an error; any query failure
// degrades to the airborne state.
type Prober interface {
	ProbeDown(pos r3.Vec, maxDist float64) (hit Hit, ok bool)
}

// Resolution is the outcome of one fixed step: the contact plane to move on,
// whether the body counts as grounded, and whether grounding was forced by a
// snap probe rather than a live contact.
type Resolution struct {
	Normal   r3.Vec
	Grounded bool
	Snapped  bool
}

// Tracker accumulates the contact normals reported during one fixed step.
// Normals at or above the ground threshold count as ground; steeper ones
// (walls, ceilings) are observed but never treated as ground.
//
// Reported normals must be unit length. A single ground contact is returned
// as-is without renormalization; only a multi-contact sum is normalized.
type Tracker struct {
	groundThreshold float64
	probeDistance   float64

	groundContacts     int
	normalSum          r3.Vec
	stepsSinceGrounded int
}

func NewTracker(groundThreshold, probeDistance float64) *Tracker {
	return &Tracker{
		groundThreshold: groundThreshold,
		probeDistance:   probeDistance,
	}
}

// SetGroundThreshold replaces the classification threshold. Takes effect for
// contacts reported after the call.
func (t *Tracker) SetGroundThreshold(threshold float64) {
	t.groundThreshold = threshold
}

// SetProbeDistance replaces the snap probe ray length.
func (t *Tracker) SetProbeDistance(dist float64) {
	t.probeDistance = dist
}

// ReportContact records one contact normal for the current step. Contacts
// may arrive in any order; the accumulated sum is commutative.
func (t *Tracker) ReportContact(n r3.Vec) {
	if n.Y < t.groundThreshold {
		return
	}
	t.groundContacts++
	t.normalSum = r3.Add(t.normalSum, n)
}

// BeginStep marks the start of a fixed step. The steps-since-grounded counter
// advances here, before Resolve, so that a step that regains ground resets it
// back to zero in the same step.
func (t *Tracker) BeginStep() {
	t.stepsSinceGrounded++
}

// Resolve produces the effective contact normal for the step. With live
// ground contacts the body is grounded on their (normalized) sum. Without
// any, a snap probe may force grounding; otherwise the body is airborne and
// the up axis keeps plane math well-defined.
func (t *Tracker) Resolve(pos r3.Vec, prober Prober) Resolution {
	if t.groundContacts > 0 {
		t.stepsSinceGrounded = 0
		n := t.normalSum
		if t.groundContacts > 1 {
			n = r3.Unit(n)
		}
		return Resolution{Normal: n, Grounded: true}
	}

	if n, ok := t.attemptSnap(pos, prober); ok {
		t.stepsSinceGrounded = 0
		return Resolution{Normal: n, Grounded: true, Snapped: true}
	}

	return Resolution{Normal: Up}
}

// attemptSnap probes for ground directly below the body. It only fires within
// one step of last being grounded, so genuine jumps and falls are not snapped
// back onto the surface.
func (t *Tracker) attemptSnap(pos r3.Vec, prober Prober) (r3.Vec, bool) {
	if t.stepsSinceGrounded > 1 {
		return r3.Vec{}, false
	}
	if prober == nil {
		return r3.Vec{}, false
	}
	hit, ok := prober.ProbeDown(pos, t.probeDistance)
	if !ok {
		return r3.Vec{}, false
	}
	if hit.Normal.Y < t.groundThreshold {
		return r3.Vec{}, false
	}
	t.groundContacts = 1
	t.normalSum = hit.Normal
	return hit.Normal, true
}

// ClearStep discards the step's contact accumulation. Call once at the end of
// every fixed step, after the resolved normal has been consumed.
func (t *Tracker) ClearStep() {
	t.groundContacts = 0
	t.normalSum = r3.Vec{}
}

// GroundContacts reports how many ground-classified contacts the current
// step has accumulated.
func (t *Tracker) GroundContacts() int {
	return t.groundContacts
}

// StepsSinceGrounded reports how many steps have begun since the body was
// last grounded.
func (t *Tracker) StepsSinceGrounded() int {
	return t.stepsSinceGrounded
}
