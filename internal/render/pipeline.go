// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render drives the GPU side of the orbital viewer: shader
// assembly, atlas upload, and the offscreen render plus readback path.
// The public package wraps this with input handling and frame math.
package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrShaderBuild reports a shader that failed to assemble or
	// compile for the active backend.
	ErrShaderBuild = errors.New("render: shader build failed")
	// ErrNotReady reports a draw attempted before atlases were
	// uploaded or after the pipeline was destroyed.
	ErrNotReady = errors.New("render: pipeline not ready")
	// ErrFrameSize reports a destination buffer that does not match
	// the render target dimensions.
	ErrFrameSize = errors.New("render: frame buffer size mismatch")
)

// uniformSize is the byte size of the shader Uniforms block:
// yaw, pitch, velocity, mode as four f32 values.
const uniformSize = 16

// quadVertexStride is 16 bytes per vertex: position vec2 + uv vec2.
const quadVertexStride = 16

const quadVertexCount = 6

// Config configures a Pipeline.
type Config struct {
	// Width and Height set the offscreen render target size.
	Width  uint32
	Height uint32

	// LumaThreshold is the background key cutoff in [0, 1].
	LumaThreshold float32

	// Orbital and Turnstile are the frame tables baked into the two
	// shader variants.
	Orbital   TableSpec
	Turnstile TableSpec

	// Device and Queue, when both set, make the pipeline render on an
	// externally owned device instead of acquiring its own.
	Device hal.Device
	Queue  hal.Queue

	// AdapterName labels an external device for diagnostics.
	AdapterName string
}

// State is the per-draw input to Render.
type State struct {
	// Yaw is the heading in radians.
	Yaw float32
	// Pitch is the elevation in degrees.
	Pitch float32
	// Velocity is the angular velocity in radians per second.
	Velocity float32
	// Turnstile selects the 8-frame single-ring variant.
	Turnstile bool
}

// Pipeline owns the GPU resources for rendering the product quad.
// It is not safe for concurrent use; the engine serializes access.
type Pipeline struct {
	device      hal.Device
	queue       hal.Queue
	gpu         *gpuContext // non-nil when the device is pipeline-owned
	adapterName string

	cfg Config

	orbitalShader   hal.ShaderModule
	turnstileShader hal.ShaderModule
	bindLayout      hal.BindGroupLayout
	pipeLayout      hal.PipelineLayout
	sampler         hal.Sampler

	orbitalPipeline   hal.RenderPipeline
	turnstilePipeline hal.RenderPipeline // created lazily on first turnstile draw

	vertexBuf  hal.Buffer
	uniformBuf hal.Buffer

	ring0     *ringTexture
	ring1     *ringTexture
	bindGroup hal.BindGroup

	targetTex  hal.Texture
	targetView hal.TextureView
	width      uint32
	height     uint32

	destroyed bool
}

// NewPipeline acquires a device (unless one is supplied), compiles the
// orbital shader variant, and builds the static pipeline state. The
// turnstile variant is compiled on first use.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: zero render target size", ErrNotReady)
	}

	p := &Pipeline{cfg: cfg, adapterName: cfg.AdapterName}
	if cfg.Device != nil && cfg.Queue != nil {
		p.device = cfg.Device
		p.queue = cfg.Queue
	} else {
		gpu, err := acquireGPU()
		if err != nil {
			return nil, err
		}
		p.gpu = gpu
		p.device = gpu.device
		p.queue = gpu.queue
		p.adapterName = gpu.adapterName
	}

	if err := p.createStatic(); err != nil {
		p.Destroy()
		return nil, err
	}
	if err := p.ensureTarget(cfg.Width, cfg.Height); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

// AdapterName returns the name of the adapter rendering this pipeline.
func (p *Pipeline) AdapterName() string { return p.adapterName }

// Width returns the current render target width in pixels.
func (p *Pipeline) Width() uint32 { return p.width }

// Height returns the current render target height in pixels.
func (p *Pipeline) Height() uint32 { return p.height }

func (p *Pipeline) createStatic() error {
	orbShader, err := p.buildShader("orbital_shader", p.cfg.Orbital, true)
	if err != nil {
		return err
	}
	p.orbitalShader = orbShader

	// Bind group layout:
	//   Binding 0: Uniforms (uniform buffer, vertex+fragment)
	//   Binding 1: ring0 atlas texture (texture_2d, fragment)
	//   Binding 2: ring1 atlas texture (texture_2d, fragment)
	//   Binding 3: sampler (fragment)
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "orbital_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create orbital bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "orbital_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create orbital pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "orbital_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create orbital sampler: %w", err)
	}
	p.sampler = sampler

	pipeline, err := p.createVariantPipeline("orbital_pipeline", p.orbitalShader)
	if err != nil {
		return err
	}
	p.orbitalPipeline = pipeline

	vertexBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "orbital_quad_vertices",
		Size:  uint64(len(quadVertexData())),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	p.vertexBuf = vertexBuf
	p.queue.WriteBuffer(p.vertexBuf, 0, quadVertexData())

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "orbital_uniforms",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	return nil
}

// buildShader assembles a table variant, compiles it to SPIR-V, and
// creates the hal module. All shader failures surface as ErrShaderBuild
// so the caller can fall back to static display.
func (p *Pipeline) buildShader(label string, table TableSpec, ringBlend bool) (hal.ShaderModule, error) {
	src, err := AssembleShader(table, p.cfg.LumaThreshold, ringBlend)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrShaderBuild, label, err)
	}
	spirv, err := CompileShaderToSPIRV(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrShaderBuild, label, err)
	}
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrShaderBuild, label, err)
	}
	slogger().Debug("shader compiled", "label", label, "frames", table.FrameCount)
	return shader, nil
}

func (p *Pipeline) createVariantPipeline(label string, shader hal.ShaderModule) (hal.RenderPipeline, error) {
	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return pipeline, nil
}

// ensureTurnstilePipeline compiles the 8-frame variant on first use.
// Most sessions never leave orbital mode, so the second shader is not
// paid for up front.
func (p *Pipeline) ensureTurnstilePipeline() error {
	if p.turnstilePipeline != nil {
		return nil
	}
	shader, err := p.buildShader("turnstile_shader", p.cfg.Turnstile, false)
	if err != nil {
		return err
	}
	p.turnstileShader = shader

	pipeline, err := p.createVariantPipeline("turnstile_pipeline", shader)
	if err != nil {
		return err
	}
	p.turnstilePipeline = pipeline
	return nil
}

// UploadAtlases uploads both ring atlases and rebuilds the bind group.
// Both atlases must be square RGBA with the same dimensions. For
// turnstile content the second ring is typically a copy of the first.
func (p *Pipeline) UploadAtlases(size uint32, ring0, ring1 []uint8) error {
	if p.destroyed {
		return ErrNotReady
	}

	tex0, err := createRingTexture(p.device, p.queue, "orbital_ring0", size, ring0)
	if err != nil {
		return err
	}
	tex1, err := createRingTexture(p.device, p.queue, "orbital_ring1", size, ring1)
	if err != nil {
		tex0.destroy(p.device)
		return err
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "orbital_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: p.uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: tex0.view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.TextureViewBinding{
				TextureView: tex1.view.NativeHandle(),
			}},
			{Binding: 3, Resource: gputypes.SamplerBinding{
				Sampler: p.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		tex0.destroy(p.device)
		tex1.destroy(p.device)
		return fmt.Errorf("create orbital bind group: %w", err)
	}

	// Swap in the new resources only once everything succeeded.
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
	}
	p.ring0.destroy(p.device)
	p.ring1.destroy(p.device)
	p.ring0 = tex0
	p.ring1 = tex1
	p.bindGroup = bindGroup

	slogger().Debug("atlases uploaded", "size", size)
	return nil
}

// ensureTarget creates or resizes the offscreen render target.
func (p *Pipeline) ensureTarget(w, h uint32) error {
	if p.targetTex != nil && p.width == w && p.height == h {
		return nil
	}
	p.destroyTarget()

	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "orbital_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create render target: %w", err)
	}
	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "orbital_target_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.device.DestroyTexture(tex)
		return fmt.Errorf("create render target view: %w", err)
	}
	p.targetTex = tex
	p.targetView = view
	p.width = w
	p.height = h
	return nil
}

// Resize changes the render target size. A no-op when the size is
// unchanged.
func (p *Pipeline) Resize(w, h uint32) error {
	if p.destroyed {
		return ErrNotReady
	}
	if w == 0 || h == 0 {
		return fmt.Errorf("%w: zero render target size", ErrFrameSize)
	}
	return p.ensureTarget(w, h)
}

// Render draws one frame into dst, which must hold width*height*4
// bytes and receives tightly packed RGBA rows.
func (p *Pipeline) Render(st State, dst []uint8) error {
	if p.destroyed || p.bindGroup == nil {
		return ErrNotReady
	}
	if uint32(len(dst)) != p.width*p.height*4 {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrFrameSize, len(dst), p.width*p.height*4)
	}

	pipeline := p.orbitalPipeline
	if st.Turnstile {
		if err := p.ensureTurnstilePipeline(); err != nil {
			return err
		}
		pipeline = p.turnstilePipeline
	}

	p.queue.WriteBuffer(p.uniformBuf, 0, packUniforms(st))

	return p.encodeAndReadback(pipeline, dst)
}

// encodeAndReadback encodes the draw, copies the target to a staging
// buffer, submits, waits, and swizzles the BGRA readback into dst.
func (p *Pipeline) encodeAndReadback(pipeline hal.RenderPipeline, dst []uint8) error {
	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "orbital_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("orbital_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "orbital_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       p.targetView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.vertexBuf, 0)
	rp.Draw(quadVertexCount, 1, 0, 0)
	rp.End()

	// The color attachment has to move to a transfer-src layout before
	// the copy below. No-op on backends without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: p.targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pixelBufSize := uint64(p.width) * uint64(p.height) * 4
	stagingBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "orbital_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer p.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(p.targetTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: p.width * 4, RowsPerImage: p.height},
		TextureBase:  hal.ImageCopyTexture{Texture: p.targetTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: p.width, Height: p.height, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer p.device.DestroyFence(fence)

	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := p.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBufSize)
	if err := p.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	bgraToRGBA(readback, dst)
	return nil
}

// Destroy releases all GPU resources. Safe to call more than once.
func (p *Pipeline) Destroy() {
	if p == nil || p.destroyed {
		return
	}
	p.destroyed = true

	if p.device != nil {
		p.destroyTarget()
		if p.bindGroup != nil {
			p.device.DestroyBindGroup(p.bindGroup)
			p.bindGroup = nil
		}
		p.ring0.destroy(p.device)
		p.ring1.destroy(p.device)
		p.ring0, p.ring1 = nil, nil
		if p.uniformBuf != nil {
			p.device.DestroyBuffer(p.uniformBuf)
			p.uniformBuf = nil
		}
		if p.vertexBuf != nil {
			p.device.DestroyBuffer(p.vertexBuf)
			p.vertexBuf = nil
		}
		if p.turnstilePipeline != nil {
			p.device.DestroyRenderPipeline(p.turnstilePipeline)
			p.turnstilePipeline = nil
		}
		if p.orbitalPipeline != nil {
			p.device.DestroyRenderPipeline(p.orbitalPipeline)
			p.orbitalPipeline = nil
		}
		if p.sampler != nil {
			p.device.DestroySampler(p.sampler)
			p.sampler = nil
		}
		if p.pipeLayout != nil {
			p.device.DestroyPipelineLayout(p.pipeLayout)
			p.pipeLayout = nil
		}
		if p.bindLayout != nil {
			p.device.DestroyBindGroupLayout(p.bindLayout)
			p.bindLayout = nil
		}
		if p.turnstileShader != nil {
			p.device.DestroyShaderModule(p.turnstileShader)
			p.turnstileShader = nil
		}
		if p.orbitalShader != nil {
			p.device.DestroyShaderModule(p.orbitalShader)
			p.orbitalShader = nil
		}
	}

	if p.gpu != nil {
		p.gpu.destroy()
		p.gpu = nil
	}
	p.device = nil
	p.queue = nil
}

func (p *Pipeline) destroyTarget() {
	if p.targetView != nil {
		p.device.DestroyTextureView(p.targetView)
		p.targetView = nil
	}
	if p.targetTex != nil {
		p.device.DestroyTexture(p.targetTex)
		p.targetTex = nil
	}
}

// packUniforms lays out State as four little-endian f32 values
// matching the shader Uniforms block.
func packUniforms(st State) []byte {
	buf := make([]byte, uniformSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(st.Yaw))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(st.Pitch))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(st.Velocity))
	mode := float32(0)
	if st.Turnstile {
		mode = 1
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(mode))
	return buf
}

// quadVertexData returns two triangles covering the full target in
// NDC, UV origin at the top-left.
func quadVertexData() []byte {
	verts := []float32{
		// x, y, u, v
		-1, 1, 0, 0, // top left
		1, 1, 1, 0, // top right
		-1, -1, 0, 1, // bottom left
		1, 1, 1, 0, // top right
		1, -1, 1, 1, // bottom right
		-1, -1, 0, 1, // bottom left
	}
	buf := make([]byte, len(verts)*4)
	for i, v := range verts {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// quadVertexLayout describes the quad vertex format:
//
//	location 0: position (vec2<f32>)
//	location 1: uv (vec2<f32>)
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			},
		},
	}
}

// bgraToRGBA swizzles tightly packed BGRA bytes into RGBA.
func bgraToRGBA(src, dst []uint8) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i+3 < n; i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}
}
