package locomotion

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func testSolver() *Solver {
	return NewSolver(Tuning{
		SpeedMax:        8,
		AccelerationMax: 30,
		AirMultiplier:   0.3,
	})
}

func TestStep_GroundedAccelerationClamp(t *testing.T) {
	s := testSolver()

	got := s.Step(r3.Vec{}, r3.Vec{Z: 8}, r3.Vec{Y: 1}, true, 0.1)

	// maxChange = 30 * 0.1 = 3, well short of the desired 8.
	approxEqual(t, got.X, 0, 1e-12, "vel.x")
	approxEqual(t, got.Y, 0, 1e-12, "vel.y")
	approxEqual(t, got.Z, 3, 1e-12, "vel.z")
}

func TestStep_AirborneMultiplierDampsAcceleration(t *testing.T) {
	s := testSolver()

	got := s.Step(r3.Vec{}, r3.Vec{Z: 8}, r3.Vec{Y: 1}, false, 0.1)

	approxEqual(t, got.Z, 0.9, 1e-12, "vel.z")
}

func TestStep_NoOvershootNearTarget(t *testing.T) {
	s := testSolver()

	got := s.Step(r3.Vec{Z: 7.5}, r3.Vec{Z: 8}, r3.Vec{Y: 1}, true, 0.1)

	// Remaining gap of 0.5 is inside maxChange=3: land exactly on target.
	approxEqual(t, got.Z, 8, 1e-12, "vel.z")
}

func TestStep_IdempotentAtTarget(t *testing.T) {
	s := testSolver()
	vel := r3.Vec{X: 2, Y: -1.5, Z: 5}

	got := s.Step(vel, r3.Vec{X: 2, Z: 5}, r3.Vec{Y: 1}, true, 0.1)

	approxEqual(t, got.X, vel.X, 1e-12, "vel.x")
	approxEqual(t, got.Y, vel.Y, 1e-12, "vel.y")
	approxEqual(t, got.Z, vel.Z, 1e-12, "vel.z")
}

func TestStep_NormalComponentUntouched(t *testing.T) {
	s := testSolver()
	normal := r3.Unit(r3.Vec{X: 0.15, Y: 1, Z: -0.1})
	vel := r3.Vec{X: 1.2, Y: -3.4, Z: 0.7}

	got := s.Step(vel, r3.Vec{X: -4, Z: 6}, normal, true, 0.05)

	approxEqual(t, r3.Dot(got, normal), r3.Dot(vel, normal), 1e-12, "normal component")
}

func TestStep_PerAxisChangeBounded(t *testing.T) {
	s := testSolver()
	normal := r3.Unit(r3.Vec{X: -0.1, Y: 1, Z: 0.2})
	vel := r3.Vec{X: 3, Y: 0.5, Z: -2}
	dt := 0.02

	got := s.Step(vel, r3.Vec{X: -8, Z: 8}, normal, true, dt)

	maxChange := 30.0 * dt
	xAxis := r3.Unit(projectOnPlane(r3.Vec{X: 1}, normal))
	zAxis := r3.Unit(projectOnPlane(r3.Vec{Z: 1}, normal))
	dx := r3.Dot(got, xAxis) - r3.Dot(vel, xAxis)
	dz := r3.Dot(got, zAxis) - r3.Dot(vel, zAxis)
	if math.Abs(dx) > maxChange+1e-12 || math.Abs(dz) > maxChange+1e-12 {
		t.Fatalf("axis deltas (%.6f, %.6f) exceed maxChange %.6f", dx, dz, maxChange)
	}
}

func TestStep_SlopeBasisStaysTangential(t *testing.T) {
	s := testSolver()
	normal := r3.Unit(r3.Vec{X: 0, Y: 0.98058, Z: -0.19612})

	got := s.Step(r3.Vec{}, r3.Vec{Z: 8}, normal, true, 0.1)

	// All gained velocity lies in the contact plane.
	approxEqual(t, r3.Dot(got, normal), 0, 1e-9, "normal component")
	if got.Z <= 0 || got.Y <= 0 {
		t.Fatalf("vel = %+v, want uphill motion with positive y and z", got)
	}
}

func TestDesiredVelocity_ScalesByIntentAndSpeed(t *testing.T) {
	s := testSolver()
	forward := r3.Vec{Z: 1}
	right := r3.Vec{X: 1}

	got := s.DesiredVelocity(Intent{Z: 1}, forward, right)
	approxEqual(t, got.Z, 8, 1e-12, "forward desired.z")

	got = s.DesiredVelocity(Intent{X: -0.5}, forward, right)
	approxEqual(t, got.X, -4, 1e-12, "strafe desired.x")
}

func TestDesiredVelocity_DiagonalIsNotNormalized(t *testing.T) {
	s := testSolver()

	got := s.DesiredVelocity(Intent{X: 1, Z: 1}, r3.Vec{Z: 1}, r3.Vec{X: 1})

	// Both axes at full deflection stack up to sqrt(2) times SpeedMax.
	approxEqual(t, r3.Norm(got), 8*math.Sqrt2, 1e-12, "|desired|")
}

func TestCorrectOnSnap_LeavesTangentialVelocityAlone(t *testing.T) {
	s := testSolver()
	vel := r3.Vec{Z: 5}

	got := s.CorrectOnSnap(vel, r3.Vec{Y: 1})

	// dot = 0: already along the surface.
	if got != vel {
		t.Fatalf("vel = %+v, want unchanged %+v", got, vel)
	}
}

func TestCorrectOnSnap_LeavesDescendingVelocityAlone(t *testing.T) {
	s := testSolver()
	vel := r3.Vec{Y: -2, Z: 5}

	got := s.CorrectOnSnap(vel, r3.Vec{Y: 1})

	if got != vel {
		t.Fatalf("vel = %+v, want unchanged %+v", got, vel)
	}
}

func TestCorrectOnSnap_ReprojectsPreservingSpeed(t *testing.T) {
	s := testSolver()
	hit := r3.Vec{X: 0.6, Y: 0.8, Z: 0}
	vel := r3.Vec{Y: 5}

	got := s.CorrectOnSnap(vel, hit)

	approxEqual(t, r3.Norm(got), 5, 1e-12, "|vel|")
	approxEqual(t, r3.Dot(got, hit), 0, 1e-12, "normal component")
}
