// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package orbital

import "fmt"

// RenderMode selects the playback style of the engine.
//
// All mode-dependent behavior — frame table size, angle step, pitch
// handling, ring blending — is derived from this single value, by the
// integrator and the render pipeline alike. Modes only change via an
// explicit SetRenderMode call; there are no automatic transitions.
type RenderMode int

const (
	// ModeOrbital uses all 16 frames and blends vertically between
	// the two atlas rings by pitch.
	ModeOrbital RenderMode = iota

	// ModeTurnstile uses only the 8 cardinal/intercardinal frames,
	// ignores pitch and never samples the elevated ring.
	ModeTurnstile
)

// String returns a human-readable mode name.
func (m RenderMode) String() string {
	switch m {
	case ModeOrbital:
		return "orbital"
	case ModeTurnstile:
		return "turnstile"
	default:
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
}

// FrameCount returns the number of frames the mode plays back.
func (m RenderMode) FrameCount() int {
	if m == ModeTurnstile {
		return TurnstileFrameCount
	}
	return FrameCount
}

// AngleStep returns the angular distance between adjacent frames in
// degrees.
func (m RenderMode) AngleStep() float64 {
	if m == ModeTurnstile {
		return TurnstileAngleStep
	}
	return AngleStep
}

// Sequence returns the mode's playback permutation: element k is the
// frame index shown at k*AngleStep() degrees. The returned slice is a
// copy and safe to modify.
func (m RenderMode) Sequence() []int {
	if m == ModeTurnstile {
		seq := make([]int, TurnstileFrameCount)
		copy(seq, TurnstileSequence[:])
		return seq
	}
	seq := make([]int, FrameCount)
	copy(seq, AngularSequence[:])
	return seq
}
