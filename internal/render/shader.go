// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/naga"
)

//go:embed shaders/orbital.wgsl
var shaderTemplate string

// genMarker is replaced by the generated frame table block when the
// shader source is assembled.
const genMarker = "// GEN:FRAME_TABLE"

// ErrTableSpec reports an inconsistent frame table handed to the
// shader assembler.
var ErrTableSpec = errors.New("render: invalid frame table")

// TableSpec carries the frame lookup data baked into the shader.
// The caller owns the canonical table; this package only transcribes
// it, so CPU and GPU can never disagree on the angle-to-frame order.
type TableSpec struct {
	// FrameCount is the number of angular stops in the sequence.
	FrameCount int
	// AngleStep is the angular distance between stops, in degrees.
	AngleStep float64
	// Sequence maps angular index to atlas frame index.
	Sequence []int
}

func (t TableSpec) validate() error {
	if t.FrameCount <= 0 || t.FrameCount > 16 {
		return fmt.Errorf("%w: frame count %d", ErrTableSpec, t.FrameCount)
	}
	if len(t.Sequence) != t.FrameCount {
		return fmt.Errorf("%w: sequence length %d for %d frames", ErrTableSpec, len(t.Sequence), t.FrameCount)
	}
	if t.AngleStep <= 0 {
		return fmt.Errorf("%w: angle step %v", ErrTableSpec, t.AngleStep)
	}
	seen := make(map[int]bool, len(t.Sequence))
	for i, f := range t.Sequence {
		if f < 0 || f >= 16 {
			return fmt.Errorf("%w: sequence[%d] = %d out of range", ErrTableSpec, i, f)
		}
		if seen[f] {
			return fmt.Errorf("%w: sequence[%d] = %d repeated", ErrTableSpec, i, f)
		}
		seen[f] = true
	}
	return nil
}

// AssembleShader splices the generated frame table into the WGSL
// template. When ringBlend is false the pitch ring cross-fade is
// compiled out and ring0 alone drives the output.
func AssembleShader(table TableSpec, lumaThreshold float32, ringBlend bool) (string, error) {
	if err := table.validate(); err != nil {
		return "", err
	}
	if !strings.Contains(shaderTemplate, genMarker) {
		return "", fmt.Errorf("%w: template marker missing", ErrTableSpec)
	}

	var b strings.Builder
	b.WriteString("// Generated from the quadrant grid. Do not edit by hand.\n")
	fmt.Fprintf(&b, "fn frame_count() -> f32 {\n    return %s;\n}\n\n", wgslFloat(float64(table.FrameCount)))
	fmt.Fprintf(&b, "fn angle_step() -> f32 {\n    return %s;\n}\n\n", wgslFloat(table.AngleStep))
	fmt.Fprintf(&b, "fn luma_threshold() -> f32 {\n    return %s;\n}\n\n", wgslFloat(float64(lumaThreshold)))

	// Dynamic indexing of a module-scope array is not portable across
	// naga targets, so the table becomes an if-chain.
	b.WriteString("fn frame_for_index(i: u32) -> u32 {\n")
	for i, f := range table.Sequence[:len(table.Sequence)-1] {
		fmt.Fprintf(&b, "    if (i == %du) {\n        return %du;\n    }\n", i, f)
	}
	fmt.Fprintf(&b, "    return %du;\n}\n\n", table.Sequence[len(table.Sequence)-1])

	b.WriteString("fn ring_blend(pitch: f32) -> f32 {\n")
	if ringBlend {
		b.WriteString("    return smoother_step(clamp(pitch / 30.0, 0.0, 1.0));\n")
	} else {
		b.WriteString("    return 0.0;\n")
	}
	b.WriteString("}")

	return strings.Replace(shaderTemplate, genMarker, b.String(), 1), nil
}

// CompileShaderToSPIRV compiles assembled WGSL to SPIR-V words.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// wgslFloat renders a float literal that WGSL parses as f32.
func wgslFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
