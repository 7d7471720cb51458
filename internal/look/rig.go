// Package look integrates per-frame look deltas into two decoupled
// orientations: the body yaws about the world up axis, a separate view
// pitches about its own local right axis. Keeping them apart avoids gimbal
// coupling between turning and aiming.
package look

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	pitchMinDeg = -89.0
	pitchMaxDeg = 89.0

	degToRad = math.Pi / 180.0
)

// Rig owns the body and view orientations. Positive look deltas turn right
// and pitch down, matching the usual screen-space mouse convention.
type Rig struct {
	sensitivity float64
	fov         float64

	body     r3.Rotation
	view     r3.Rotation
	pitchDeg float64
}

func NewRig(sensitivity, fov float64) *Rig {
	return &Rig{
		sensitivity: sensitivity,
		fov:         fov,
		body:        identity(),
		view:        identity(),
	}
}

func (r *Rig) SetSensitivity(s float64) {
	r.sensitivity = s
}

// SetFOV stores the view's field of view. Callers reapply it every frame as a
// plain configuration value; the rig just holds the latest.
func (r *Rig) SetFOV(fov float64) {
	r.fov = fov
}

func (r *Rig) FOV() float64 {
	return r.fov
}

// Apply integrates one frame's look delta, in device units scaled by the
// sensitivity. Yaw composes into the body as a world-space increment; pitch
// composes into the view as a local increment, clamped so the view can never
// flip past straight up or straight down.
func (r *Rig) Apply(dx, dy float64) {
	yawDeg := dx * r.sensitivity
	if yawDeg != 0 {
		inc := r3.NewRotation(yawDeg*degToRad, r3.Vec{Y: 1})
		r.body = compose(inc, r.body)
	}

	pitchDeg := dy * r.sensitivity
	clamped := clampPitch(r.pitchDeg+pitchDeg) - r.pitchDeg
	if clamped != 0 {
		r.pitchDeg += clamped
		inc := r3.NewRotation(clamped*degToRad, r3.Vec{X: 1})
		r.view = compose(r.view, inc)
	}
}

// Forward is the body's facing direction. The body only ever yaws, so this
// stays horizontal.
func (r *Rig) Forward() r3.Vec {
	return r.body.Rotate(r3.Vec{Z: 1})
}

// Right is the body's strafe axis.
func (r *Rig) Right() r3.Vec {
	return r.body.Rotate(r3.Vec{X: 1})
}

// Body returns the body orientation consumed by the physics subsystem.
func (r *Rig) Body() r3.Rotation {
	return r.body
}

// View returns the pitch-only view orientation, local to the body.
func (r *Rig) View() r3.Rotation {
	return r.view
}

// ViewDirection is the world-space aim direction: body yaw composed with
// view pitch.
func (r *Rig) ViewDirection() r3.Vec {
	return compose(r.body, r.view).Rotate(r3.Vec{Z: 1})
}

// Pitch reports the accumulated view pitch in degrees, positive downward.
func (r *Rig) Pitch() float64 {
	return r.pitchDeg
}

func clampPitch(deg float64) float64 {
	if deg < pitchMinDeg {
		return pitchMinDeg
	}
	if deg > pitchMaxDeg {
		return pitchMaxDeg
	}
	return deg
}

func identity() r3.Rotation {
	return r3.Rotation(quat.Number{Real: 1})
}

func compose(a, b r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Mul(quat.Number(a), quat.Number(b)))
}
