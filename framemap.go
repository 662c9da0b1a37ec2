// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package orbital

import "math"

// Frame layout constants for the compass-quadrant atlas.
const (
	// GridSize is the number of cells per atlas row and column.
	GridSize = 4

	// FrameCount is the total number of frames in a full atlas.
	FrameCount = GridSize * GridSize

	// TurnstileFrameCount is the number of frames used in turnstile
	// mode: the cardinal and intercardinal rows only.
	TurnstileFrameCount = 8

	// AngleStep is the angular distance between adjacent frames in
	// orbital mode, in degrees.
	AngleStep = 360.0 / FrameCount

	// TurnstileAngleStep is the angular distance between adjacent
	// frames in turnstile mode, in degrees.
	TurnstileAngleStep = 360.0 / TurnstileFrameCount
)

// CompassFrame describes one sprite-atlas cell: the compass direction
// it depicts, the viewing angle in degrees [0, 360), and the cell's
// position in the 4x4 grid.
//
// CompassFrame values are immutable; the full set of 16 lives in
// QuadrantGrid.
type CompassFrame struct {
	// Direction is the canonical compass label ("N", "NNE", ...).
	Direction string

	// Angle is the viewing angle in degrees, 0 inclusive to 360
	// exclusive. 0 is the front (north) view.
	Angle float64

	// GridRow and GridCol locate the cell in the atlas, 0-3 each.
	GridRow, GridCol int
}

// FrameIndex returns the cell's raster-order index in the atlas.
func (f CompassFrame) FrameIndex() int {
	return f.GridRow*GridSize + f.GridCol
}

// QuadrantGrid is the canonical frame table in storage order.
//
// Storage order is the generation hierarchy, not increasing angle:
// the upstream image generator produces higher-fidelity results when
// asked for the most visually distinctive views first, so cardinals
// come first, then intercardinals, then the two rows of 22.5°-offset
// fine directions. Playback order is derived from this table as
// AngularSequence; the two must never be edited independently.
var QuadrantGrid = [FrameCount]CompassFrame{
	// Row 0: cardinals.
	{Direction: "N", Angle: 0, GridRow: 0, GridCol: 0},
	{Direction: "S", Angle: 180, GridRow: 0, GridCol: 1},
	{Direction: "E", Angle: 90, GridRow: 0, GridCol: 2},
	{Direction: "W", Angle: 270, GridRow: 0, GridCol: 3},
	// Row 1: intercardinals.
	{Direction: "NW", Angle: 315, GridRow: 1, GridCol: 0},
	{Direction: "NE", Angle: 45, GridRow: 1, GridCol: 1},
	{Direction: "SE", Angle: 135, GridRow: 1, GridCol: 2},
	{Direction: "SW", Angle: 225, GridRow: 1, GridCol: 3},
	// Row 2: fine north/south directions.
	{Direction: "NNW", Angle: 337.5, GridRow: 2, GridCol: 0},
	{Direction: "NNE", Angle: 22.5, GridRow: 2, GridCol: 1},
	{Direction: "SSE", Angle: 157.5, GridRow: 2, GridCol: 2},
	{Direction: "SSW", Angle: 202.5, GridRow: 2, GridCol: 3},
	// Row 3: fine east/west directions.
	{Direction: "WNW", Angle: 292.5, GridRow: 3, GridCol: 0},
	{Direction: "ENE", Angle: 67.5, GridRow: 3, GridCol: 1},
	{Direction: "ESE", Angle: 112.5, GridRow: 3, GridCol: 2},
	{Direction: "WSW", Angle: 247.5, GridRow: 3, GridCol: 3},
}

// AngularSequence maps angle index to frame index for orbital
// playback: AngularSequence[k] is the frame shown at k*22.5 degrees.
// Derived from QuadrantGrid at init; QuadrantGrid is the single
// source of truth for both this table and the shader-side copy.
var AngularSequence [FrameCount]int

// TurnstileSequence is the 8-frame playback permutation for
// turnstile mode: TurnstileSequence[k] is the frame at k*45 degrees.
// Uses only grid rows 0-1 (frames 0-7).
var TurnstileSequence [TurnstileFrameCount]int

// frameToAngleIndex is the exact inverse of AngularSequence.
var frameToAngleIndex [FrameCount]int

// angularLabels holds the compass labels in increasing-angle order.
var angularLabels [FrameCount]string

func init() {
	for i := range AngularSequence {
		AngularSequence[i] = -1
	}
	for _, f := range QuadrantGrid {
		k := int(math.Round(f.Angle / AngleStep))
		if k < 0 || k >= FrameCount || AngularSequence[k] != -1 {
			panic("orbital: quadrant grid angles are not a 22.5° permutation")
		}
		AngularSequence[k] = f.FrameIndex()
		angularLabels[k] = f.Direction
	}
	for k, frame := range AngularSequence {
		frameToAngleIndex[frame] = k
	}

	// Turnstile playback restricts to the first two grid rows.
	i := 0
	for _, frame := range AngularSequence {
		if frame < TurnstileFrameCount {
			TurnstileSequence[i] = frame
			i++
		}
	}
	if i != TurnstileFrameCount {
		panic("orbital: grid rows 0-1 do not cover the 45° steps")
	}
}

// BlendFrames is the result of an angular frame lookup: the two
// nearest frames and the blend factor between them.
type BlendFrames struct {
	// FrameA and FrameB are atlas frame indices. FrameA is at or
	// below the requested angle, FrameB is the next frame in
	// increasing-angle order (wrapping past 360°).
	FrameA, FrameB int

	// Blend is the interpolation factor from FrameA toward FrameB,
	// in [0, 1).
	Blend float64

	// AngleIndexA and AngleIndexB are the corresponding playback
	// (angle-order) indices.
	AngleIndexA, AngleIndexB int
}

// BlendFramesAt returns the two frames bracketing yawDegrees and the
// blend factor between them, for full 16-frame orbital playback.
//
// The function is total: any real input, including negatives, values
// beyond 360 and non-finite values, produces valid frame indices and
// Blend in [0, 1). At exact multiples of 22.5° Blend is 0 and FrameA
// is the exact frame for that angle.
func BlendFramesAt(yawDegrees float64) BlendFrames {
	return blendFrames(yawDegrees, AngleStep, AngularSequence[:])
}

// BlendFramesFor is BlendFramesAt generalized over the render mode:
// turnstile mode uses the 8-frame table and 45° steps.
func BlendFramesFor(mode RenderMode, yawDegrees float64) BlendFrames {
	if mode == ModeTurnstile {
		return blendFrames(yawDegrees, TurnstileAngleStep, TurnstileSequence[:])
	}
	return blendFrames(yawDegrees, AngleStep, AngularSequence[:])
}

func blendFrames(yawDegrees, step float64, sequence []int) BlendFrames {
	n := len(sequence)
	yaw := normalizeDegrees(yawDegrees)
	angle := yaw / step
	ia := int(math.Floor(angle)) % n
	ib := (ia + 1) % n
	return BlendFrames{
		FrameA:      sequence[ia],
		FrameB:      sequence[ib],
		Blend:       angle - math.Floor(angle),
		AngleIndexA: ia,
		AngleIndexB: ib,
	}
}

// CompassDirectionAt returns the compass label nearest to yawDegrees.
// Ties round up to the higher angle.
func CompassDirectionAt(yawDegrees float64) string {
	yaw := normalizeDegrees(yawDegrees)
	k := int(math.Round(yaw/AngleStep)) % FrameCount
	return angularLabels[k]
}

// FrameGridPosition returns the atlas column and row of a frame.
// frameIndex outside [0, 16) is wrapped into range.
func FrameGridPosition(frameIndex int) (col, row int) {
	f := wrapFrame(frameIndex)
	return f % GridSize, f / GridSize
}

// FrameAngle returns the viewing angle in degrees of a frame.
func FrameAngle(frameIndex int) float64 {
	return QuadrantGrid[wrapFrame(frameIndex)].Angle
}

// FrameDirection returns the compass label of a frame.
func FrameDirection(frameIndex int) string {
	return QuadrantGrid[wrapFrame(frameIndex)].Direction
}

// FrameToAngleIndex returns the playback (angle-order) index of a
// frame: the exact inverse of AngularSequence.
func FrameToAngleIndex(frameIndex int) int {
	return frameToAngleIndex[wrapFrame(frameIndex)]
}

func wrapFrame(frameIndex int) int {
	f := frameIndex % FrameCount
	if f < 0 {
		f += FrameCount
	}
	return f
}

// normalizeDegrees wraps an angle into [0, 360). Non-finite input
// normalizes to 0 so downstream lookups stay in range.
func normalizeDegrees(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}
