// Package physics integrates the demo body: gravity, position integration,
// and penetration resolution against the ground surface. The locomotion
// controller only amends the body's velocity; everything else about the
// body's motion lives here.
package physics

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	GravityAcceleration = 9.81

	// Below this speed residual velocity components are zeroed to keep the
	// body from creeping.
	minimumResidualSpeed = 1e-6
)

// Ground is the surface the body moves over.
type Ground interface {
	HeightAt(x, z float64) float64
	NormalAt(x, z float64) r3.Vec
}

// Body is a point-mass body with its feet at Position. Single-threaded by
// contract: the fixed-step loop is the only writer.
type Body struct {
	position r3.Vec
	velocity r3.Vec
}

func NewBody(position r3.Vec) *Body {
	return &Body{position: position}
}

func (b *Body) Position() r3.Vec {
	return b.position
}

func (b *Body) Velocity() r3.Vec {
	return b.velocity
}

func (b *Body) SetVelocity(v r3.Vec) {
	b.velocity = v
}

func (b *Body) SetPosition(p r3.Vec) {
	b.position = p
}

// Integrate advances the body by one fixed step: apply gravity, move, then
// resolve penetration against the ground by clamping to the surface and
// removing the velocity component pointing into it.
func (b *Body) Integrate(ground Ground, dt float64) {
	b.velocity.Y -= GravityAcceleration * dt
	b.position = r3.Add(b.position, r3.Scale(dt, b.velocity))

	if ground != nil {
		surface := ground.HeightAt(b.position.X, b.position.Z)
		if b.position.Y < surface {
			b.position.Y = surface
			n := ground.NormalAt(b.position.X, b.position.Z)
			if into := r3.Dot(b.velocity, n); into < 0 {
				b.velocity = r3.Sub(b.velocity, r3.Scale(into, n))
			}
		}
	}

	zeroResidual(&b.velocity)
}

func zeroResidual(v *r3.Vec) {
	if v.X < minimumResidualSpeed && v.X > -minimumResidualSpeed {
		v.X = 0
	}
	if v.Y < minimumResidualSpeed && v.Y > -minimumResidualSpeed {
		v.Y = 0
	}
	if v.Z < minimumResidualSpeed && v.Z > -minimumResidualSpeed {
		v.Z = 0
	}
}
