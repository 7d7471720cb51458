// Package locomotion computes acceleration-clamped velocity changes along a
// contact plane. The solver only ever amends the tangential components of a
// body's velocity; gravity and normal forces stay with the physics engine.
package locomotion

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tuning holds the solver's movement parameters. AirMultiplier scales the
// acceleration limit while airborne and must lie in [0, 1].
type Tuning struct {
	SpeedMax        float64
	AccelerationMax float64
	AirMultiplier   float64
}

// Intent is the desired local-space motion for one frame. Components are in
// [-1, 1] per axis: X strafes, Z moves along the facing direction. The pair
// is not normalized.
type Intent struct {
	X float64
	Z float64
}

// Solver converges the body's tangential velocity toward a desired velocity,
// moving each horizontal axis by at most AccelerationMax*dt per step.
type Solver struct {
	tuning Tuning
}

func NewSolver(t Tuning) *Solver {
	return &Solver{tuning: t}
}

// SetTuning swaps the movement parameters, e.g. on config reload.
func (s *Solver) SetTuning(t Tuning) {
	s.tuning = t
}

func (s *Solver) Tuning() Tuning {
	return s.tuning
}

// DesiredVelocity maps a movement intent onto the facing basis. Combined
// axes are deliberately not renormalized: forward plus strafe yields up to
// sqrt(2) times the single-axis speed.
func (s *Solver) DesiredVelocity(intent Intent, forward, right r3.Vec) r3.Vec {
	v := r3.Add(r3.Scale(intent.Z, forward), r3.Scale(intent.X, right))
	return r3.Scale(s.tuning.SpeedMax, v)
}

// Step returns the velocity for the next step. The world X and Z axes are
// projected onto the plane orthogonal to normal to form the step's horizontal
// basis; the current velocity is decomposed onto it, each component moves
// toward the desired velocity's matching world component without overshoot,
// and the deltas are re-added along the basis. The component of vel along
// normal passes through untouched.
//
// normal must be unit length and must not be orthogonal to the world up axis;
// the contact tracker's ground threshold guarantees both.
func (s *Solver) Step(vel, desired, normal r3.Vec, grounded bool, dt float64) r3.Vec {
	xAxis := r3.Unit(projectOnPlane(r3.Vec{X: 1}, normal))
	zAxis := r3.Unit(projectOnPlane(r3.Vec{Z: 1}, normal))

	currentX := r3.Dot(vel, xAxis)
	currentZ := r3.Dot(vel, zAxis)

	accel := s.tuning.AccelerationMax
	if !grounded {
		accel *= s.tuning.AirMultiplier
	}
	maxChange := accel * dt

	newX := moveTowards(currentX, desired.X, maxChange)
	newZ := moveTowards(currentZ, desired.Z, maxChange)

	vel = r3.Add(vel, r3.Scale(newX-currentX, xAxis))
	return r3.Add(vel, r3.Scale(newZ-currentZ, zAxis))
}

// CorrectOnSnap re-projects a velocity onto a freshly snapped contact plane.
// Only fires when the velocity points away from the surface (cresting a
// ramp); speed magnitude is preserved. Velocities already moving into or
// along the surface pass through unchanged.
func (s *Solver) CorrectOnSnap(vel, hitNormal r3.Vec) r3.Vec {
	d := r3.Dot(vel, hitNormal)
	if d <= 0 {
		return vel
	}
	speed := r3.Norm(vel)
	tangent := r3.Sub(vel, r3.Scale(d, hitNormal))
	if r3.Norm(tangent) == 0 {
		// Moving straight off the surface; nothing tangential to keep.
		return vel
	}
	return r3.Scale(speed, r3.Unit(tangent))
}

func projectOnPlane(v, n r3.Vec) r3.Vec {
	return r3.Sub(v, r3.Scale(r3.Dot(v, n), n))
}

func moveTowards(current, target, maxDelta float64) float64 {
	if math.Abs(target-current) <= maxDelta {
		return target
	}
	if target > current {
		return current + maxDelta
	}
	return current - maxDelta
}
