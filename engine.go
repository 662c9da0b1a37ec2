// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package orbital

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/orbital/internal/render"
)

// DefaultLumaThreshold is the background key cutoff. Pixels brighter
// than this become fully transparent, removing the white studio
// backdrop baked into product photography.
const DefaultLumaThreshold = 0.975

var (
	// ErrUnsupported is returned by Render when no usable GPU adapter
	// is available. The engine stays alive; state operations keep
	// working so callers can show a static fallback.
	ErrUnsupported = errors.New("orbital: gpu rendering unavailable")

	// ErrDisposed is returned by operations on a disposed engine.
	ErrDisposed = errors.New("orbital: engine disposed")
)

// Engine is the top-level product viewer: it owns the rotation state,
// the loaded atlases, and the GPU pipeline, and turns pointer input
// into rendered frames.
//
// All methods are safe for concurrent use. GPU work is serialized
// internally; input events arriving during a render are applied to the
// state that the next render observes.
type Engine struct {
	mu sync.Mutex

	integrator *Integrator
	atlases    *AtlasPair
	pipeline   *render.Pipeline
	frame      *Frame
	presented  any // last texture handed to a TextureDrawer

	label     string
	supported bool
	disposed  bool
}

// New builds an Engine around the given atlas pair. GPU setup failures
// do not fail construction: the engine comes up with Supported() false
// and Render returning ErrUnsupported, while drag and snapshot state
// keep working.
func New(atlases *AtlasPair, opts ...Option) (*Engine, error) {
	if atlases == nil {
		return nil, ErrAtlasNil
	}

	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}

	in := NewIntegrator(o.mode)
	in.SetSensitivity(o.sensitivity)
	in.SetPitchSensitivity(o.pitchSens)
	in.SetFriction(o.friction)

	e := &Engine{
		integrator: in,
		atlases:    atlases,
		frame:      NewFrame(o.width, o.height),
		label:      o.productLabel,
	}

	cfg := render.Config{
		Width:         uint32(o.width),
		Height:        uint32(o.height),
		LumaThreshold: o.lumaThreshold,
		Orbital:       tableSpec(ModeOrbital),
		Turnstile:     tableSpec(ModeTurnstile),
	}
	if dev, queue, name, ok := halFromProvider(o.deviceProvider); ok {
		cfg.Device = dev
		cfg.Queue = queue
		cfg.AdapterName = name
	}

	pipeline, err := render.NewPipeline(cfg)
	if err != nil {
		// Render falls back to ErrUnsupported from here on.
		Logger().Warn("gpu pipeline unavailable", "error", err)
		return e, nil
	}

	size := uint32(atlases.Ring0.Width())
	if err := pipeline.UploadAtlases(size, atlases.Ring0.Pix(), atlases.Ring1.Pix()); err != nil {
		Logger().Warn("atlas upload failed", "error", err)
		pipeline.Destroy()
		return e, nil
	}

	e.pipeline = pipeline
	e.supported = true
	Logger().Info("engine ready",
		"adapter", pipeline.AdapterName(),
		"atlas", size,
		"mode", o.mode.String())
	return e, nil
}

// tableSpec transcribes a mode's frame table for the shader assembler.
func tableSpec(mode RenderMode) render.TableSpec {
	return render.TableSpec{
		FrameCount: mode.FrameCount(),
		AngleStep:  mode.AngleStep(),
		Sequence:   mode.Sequence(),
	}
}

// halFromProvider extracts a shared hal device from a provider that
// follows the gogpu HalDevice/HalQueue convention.
func halFromProvider(provider any) (hal.Device, hal.Queue, string, bool) {
	if provider == nil {
		return nil, nil, "", false
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		Logger().Warn("device provider does not expose HAL types")
		return nil, nil, "", false
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, "", false
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, "", false
	}
	name := "external"
	if np, ok := provider.(interface{ AdapterName() string }); ok {
		name = np.AdapterName()
	}
	return device, queue, name, true
}

// Supported reports whether GPU rendering is available.
func (e *Engine) Supported() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.supported && !e.disposed
}

// PointerDown begins a drag gesture.
func (e *Engine) PointerDown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.integrator.PointerDown()
}

// PointerUp ends a drag gesture; accumulated velocity starts coasting.
func (e *Engine) PointerUp() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.integrator.PointerUp()
}

// DragBy applies a pointer movement of dx, dy pixels over dt.
func (e *Engine) DragBy(dx, dy float64, dt time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.integrator.DragBy(dx, dy, dt)
}

// Flick seeds a coasting spin, as after a fast pointer release.
func (e *Engine) Flick(velocity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.integrator.Flick(velocity)
}

// Advance steps the rotation physics by dt.
func (e *Engine) Advance(dt time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.integrator.Step(dt)
}

// SetRenderMode switches between orbital and turnstile presentation.
// Switching resets the pitch; the yaw carries over.
func (e *Engine) SetRenderMode(mode RenderMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.integrator.SetMode(mode)
}

// Mode returns the active render mode.
func (e *Engine) Mode() RenderMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.integrator.Mode()
}

// Resize changes the output frame size in pixels.
func (e *Engine) Resize(width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return ErrDisposed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("orbital: invalid size %dx%d", width, height)
	}
	e.frame.resize(width, height)
	if !e.supported {
		return nil
	}
	return e.pipeline.Resize(uint32(width), uint32(height))
}

// Render draws the current orientation and returns the frame. The
// returned Frame is owned by the engine and valid until the next
// Render or Resize call.
func (e *Engine) Render() (*Frame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return nil, ErrDisposed
	}
	if !e.supported {
		return nil, ErrUnsupported
	}

	st := render.State{
		Yaw:       float32(e.integrator.Yaw()),
		Pitch:     float32(e.integrator.Pitch()),
		Velocity:  float32(e.integrator.Velocity()),
		Turnstile: e.integrator.Mode() == ModeTurnstile,
	}
	if err := e.pipeline.Render(st, e.frame.Pix()); err != nil {
		if errors.Is(err, render.ErrUnsupported) {
			e.supported = false
			return nil, ErrUnsupported
		}
		return nil, err
	}
	return e.frame, nil
}

// Snapshot returns a copy of the observable engine state for
// diagnostics overlays and tests.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	mode := e.integrator.Mode()
	bf := BlendFramesFor(mode, e.integrator.YawDegrees())
	s := Snapshot{
		YawRadians:   e.integrator.Yaw(),
		YawDegrees:   e.integrator.YawDegrees(),
		PitchDegrees: e.integrator.Pitch(),
		Velocity:     e.integrator.Velocity(),
		FrameA:       bf.FrameA,
		FrameB:       bf.FrameB,
		Blend:        bf.Blend,
		Compass:      CompassDirectionAt(e.integrator.YawDegrees()),
		Mode:         mode,
		ProductLabel: e.label,
		Supported:    e.supported && !e.disposed,
		AtlasSize:    e.atlases.Ring0.Width(),
		FrameWidth:   e.frame.Width(),
		FrameHeight:  e.frame.Height(),
	}
	if e.pipeline != nil {
		s.Adapter = e.pipeline.AdapterName()
	}
	return s
}

// Orientation returns the current view orientation as a quaternion.
func (e *Engine) Orientation() Quaternion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.integrator.Orientation()
}

// Dispose releases GPU resources. The engine is unusable afterwards;
// Dispose is idempotent.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.disposed = true
	e.supported = false
	if e.pipeline != nil {
		e.pipeline.Destroy()
		e.pipeline = nil
	}
	if e.presented != nil {
		if d, ok := e.presented.(interface{ Destroy() }); ok {
			d.Destroy()
		}
		e.presented = nil
	}
}

// Snapshot is a point-in-time copy of the engine's observable state.
type Snapshot struct {
	YawRadians   float64
	YawDegrees   float64
	PitchDegrees float64
	Velocity     float64

	// FrameA and FrameB are the atlas frames bracketing the yaw, with
	// Blend as the linear fraction toward FrameB. Easing is applied
	// shader-side at render time.
	FrameA int
	FrameB int
	Blend  float64

	// Compass is the 16-wind label nearest the yaw, "N" through "NNW".
	Compass string

	Mode         RenderMode
	ProductLabel string
	Adapter      string
	Supported    bool
	AtlasSize    int
	FrameWidth   int
	FrameHeight  int
}

// String formats the snapshot for debug overlays.
func (s Snapshot) String() string {
	return fmt.Sprintf("%s yaw=%.1f° pitch=%.1f° v=%.3f %s frames=%d>%d@%.2f",
		s.Mode, s.YawDegrees, s.PitchDegrees, s.Velocity, s.Compass,
		s.FrameA, s.FrameB, s.Blend)
}
