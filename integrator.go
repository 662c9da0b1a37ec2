// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package orbital

import (
	"math"
	"time"
)

// Integrator defaults and numerical guards.
const (
	// DefaultSensitivity converts horizontal pointer pixels to yaw
	// radians.
	DefaultSensitivity = 0.01

	// DefaultPitchSensitivity converts vertical pointer pixels to
	// pitch degrees.
	DefaultPitchSensitivity = 0.25

	// DefaultFriction is the per-tick velocity decay while coasting.
	DefaultFriction = 0.95

	// MaxPitchDegrees is the upper pitch clamp; pitch never leaves
	// [0, MaxPitchDegrees].
	MaxPitchDegrees = 30.0

	// velocityLimit clamps the smoothed angular velocity (rad/s).
	velocityLimit = 3.0

	// velocitySnapEpsilon is the coasting cutoff: below this the
	// velocity snaps to exactly zero.
	velocitySnapEpsilon = 1e-3

	// velocitySmoothing is the low-pass weight kept from the previous
	// smoothed velocity on each drag sample.
	velocitySmoothing = 0.9

	// minDragInterval floors the drag dt so that bursty pointer
	// events cannot produce unbounded instantaneous velocity.
	minDragInterval = 16 * time.Millisecond

	// maxDragDelta clamps a single pointer delta, in pixels. Larger
	// jumps are treated as input glitches.
	maxDragDelta = 512.0
)

// Integrator models the product's orientation as a damped rotational
// system driven by pointer drag: a flywheel with friction. It owns
// the Orientation State — yaw, pitch and smoothed angular velocity —
// and guarantees all three stay finite and in range for any input.
//
// The integrator is not safe for concurrent use; input events and
// animation ticks are expected to arrive on one event loop, the way
// the render pipeline consumes them.
type Integrator struct {
	mode RenderMode

	yaw      float64 // radians, wrapped to [0, 2π)
	pitch    float64 // degrees, clamped to [0, 30]
	velocity float64 // rad/s, smoothed and clamped to [-3, 3]

	sensitivity      float64
	pitchSensitivity float64
	friction         float64

	dragging bool
}

// NewIntegrator creates an integrator at rest, facing the front frame,
// with default sensitivity and friction.
func NewIntegrator(mode RenderMode) *Integrator {
	return &Integrator{
		mode:             mode,
		sensitivity:      DefaultSensitivity,
		pitchSensitivity: DefaultPitchSensitivity,
		friction:         DefaultFriction,
	}
}

// SetSensitivity overrides the pixel-to-radian drag scale.
// Non-positive or non-finite values are ignored.
func (in *Integrator) SetSensitivity(s float64) {
	if isFinite(s) && s > 0 {
		in.sensitivity = s
	}
}

// SetPitchSensitivity overrides the pixel-to-degree elevation scale.
// Non-positive or non-finite values are ignored.
func (in *Integrator) SetPitchSensitivity(s float64) {
	if isFinite(s) && s > 0 {
		in.pitchSensitivity = s
	}
}

// SetFriction overrides the coasting decay factor. Values outside
// (0, 1) are ignored.
func (in *Integrator) SetFriction(f float64) {
	if isFinite(f) && f > 0 && f < 1 {
		in.friction = f
	}
}

// PointerDown marks the start of a drag gesture. While the pointer is
// down Step applies no friction; the pointer drives the state.
func (in *Integrator) PointerDown() {
	in.dragging = true
}

// PointerUp releases the drag. The current smoothed velocity carries
// over into coasting, producing the flick/inertia feel.
func (in *Integrator) PointerUp() {
	in.dragging = false
}

// Dragging reports whether a drag gesture is in progress.
func (in *Integrator) Dragging() bool {
	return in.dragging
}

// DragBy applies a pointer-move delta. dx and dy are pixels; dt is
// the time since the previous pointer sample and is floored at 16 ms
// so glitchy event timing cannot explode the instantaneous velocity.
//
// Yaw advances by dx*sensitivity. The instantaneous velocity
// dx*sensitivity/dt feeds an exponential low-pass
// (0.9*prev + 0.1*inst) and is clamped to [-3, 3] rad/s. Pitch only
// advances in orbital mode and is clamped to [0, 30] degrees.
func (in *Integrator) DragBy(dx, dy float64, dt time.Duration) {
	dx = sanitizeDelta(dx)
	dy = sanitizeDelta(dy)
	if dt < minDragInterval {
		dt = minDragInterval
	}

	delta := dx * in.sensitivity
	in.yaw = wrapRadians(in.yaw + delta)

	instantaneous := delta / dt.Seconds()
	in.velocity = clamp(velocitySmoothing*in.velocity+(1-velocitySmoothing)*instantaneous,
		-velocityLimit, velocityLimit)

	if in.mode == ModeOrbital {
		in.pitch = clamp(in.pitch+dy*in.pitchSensitivity, 0, MaxPitchDegrees)
	}
}

// Step advances the simulation by one animation tick. With no drag in
// progress the velocity decays by the friction factor and snaps to
// exactly zero below the epsilon cutoff, and yaw coasts by
// velocity*dt. In turnstile mode pitch is forced to zero every tick.
func (in *Integrator) Step(dt time.Duration) {
	if in.mode == ModeTurnstile {
		in.pitch = 0
	}
	if in.dragging || dt <= 0 {
		return
	}

	in.velocity *= in.friction
	if math.Abs(in.velocity) < velocitySnapEpsilon {
		in.velocity = 0
		return
	}
	in.yaw = wrapRadians(in.yaw + in.velocity*dt.Seconds())
}

// Yaw returns the current yaw in radians, in [0, 2π).
func (in *Integrator) Yaw() float64 {
	return in.yaw
}

// YawDegrees returns the current yaw in degrees, in [0, 360).
func (in *Integrator) YawDegrees() float64 {
	return normalizeDegrees(in.yaw * 180 / math.Pi)
}

// Pitch returns the current pitch in degrees, in [0, 30].
func (in *Integrator) Pitch() float64 {
	return in.pitch
}

// Velocity returns the smoothed angular velocity in rad/s, in [-3, 3].
func (in *Integrator) Velocity() float64 {
	return in.velocity
}

// Mode returns the active render mode.
func (in *Integrator) Mode() RenderMode {
	return in.mode
}

// SetMode switches the render mode and resets pitch, per the mode
// state machine: switching is the only transition, and it always
// re-levels the camera.
func (in *Integrator) SetMode(mode RenderMode) {
	in.mode = mode
	in.pitch = 0
}

// Orientation returns the current orientation as a unit quaternion.
func (in *Integrator) Orientation() Quaternion {
	return FromYawPitch(in.yaw, in.pitch)
}

// Flick seeds the smoothed velocity directly, clamped to [-3, 3].
// Useful for scripted spins and diagnostics.
func (in *Integrator) Flick(velocity float64) {
	if !isFinite(velocity) {
		return
	}
	in.velocity = clamp(velocity, -velocityLimit, velocityLimit)
}

func sanitizeDelta(d float64) float64 {
	if !isFinite(d) {
		return 0
	}
	return clamp(d, -maxDragDelta, maxDragDelta)
}

func wrapRadians(r float64) float64 {
	if !isFinite(r) {
		return 0
	}
	r = math.Mod(r, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
