//go:build !nogpu

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func noopConfig(device hal.Device, queue hal.Queue) Config {
	return Config{
		Width:         64,
		Height:        64,
		LumaThreshold: 0.975,
		Orbital:       orbitalTable(),
		Turnstile:     turnstileTable(),
		Device:        device,
		Queue:         queue,
		AdapterName:   "noop",
	}
}

func TestNewPipeline(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPipeline(noopConfig(device, queue))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	defer p.Destroy()

	if p.orbitalShader == nil {
		t.Error("expected non-nil orbital shader")
	}
	if p.orbitalPipeline == nil {
		t.Error("expected non-nil orbital pipeline")
	}
	if p.turnstilePipeline != nil {
		t.Error("turnstile pipeline built eagerly")
	}
	if p.bindLayout == nil || p.pipeLayout == nil || p.sampler == nil {
		t.Error("static resources missing")
	}
	if p.targetTex == nil || p.targetView == nil {
		t.Error("render target missing")
	}
	if p.Width() != 64 || p.Height() != 64 {
		t.Errorf("target size (%d, %d), want (64, 64)", p.Width(), p.Height())
	}
	if p.AdapterName() != "noop" {
		t.Errorf("adapter name %q", p.AdapterName())
	}
}

func TestNewPipelineZeroSize(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	cfg := noopConfig(device, queue)
	cfg.Width = 0
	if _, err := NewPipeline(cfg); err == nil {
		t.Fatal("expected error for zero-size target")
	}
}

func TestNewPipelineBadTable(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	cfg := noopConfig(device, queue)
	cfg.Orbital.Sequence = []int{1, 2, 3}
	_, err := NewPipeline(cfg)
	if !errors.Is(err, ErrShaderBuild) {
		t.Fatalf("error = %v, want ErrShaderBuild", err)
	}
}

func TestEnsureTurnstilePipeline(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPipeline(noopConfig(device, queue))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	defer p.Destroy()

	if err := p.ensureTurnstilePipeline(); err != nil {
		t.Fatalf("ensureTurnstilePipeline failed: %v", err)
	}
	if p.turnstilePipeline == nil || p.turnstileShader == nil {
		t.Fatal("turnstile resources missing after ensure")
	}

	// Second call reuses the pipeline.
	prev := p.turnstilePipeline
	if err := p.ensureTurnstilePipeline(); err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if p.turnstilePipeline != prev {
		t.Error("turnstile pipeline rebuilt on second ensure")
	}
}

func TestUploadAtlases(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPipeline(noopConfig(device, queue))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	defer p.Destroy()

	if p.bindGroup != nil {
		t.Fatal("bind group exists before upload")
	}

	pix := make([]uint8, 64*64*4)
	if err := p.UploadAtlases(64, pix, pix); err != nil {
		t.Fatalf("UploadAtlases failed: %v", err)
	}
	if p.bindGroup == nil || p.ring0 == nil || p.ring1 == nil {
		t.Fatal("atlas resources missing after upload")
	}

	// Re-upload replaces the resources without error.
	if err := p.UploadAtlases(64, pix, pix); err != nil {
		t.Fatalf("second UploadAtlases failed: %v", err)
	}
}

func TestUploadAtlasesSizeMismatch(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPipeline(noopConfig(device, queue))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	defer p.Destroy()

	if err := p.UploadAtlases(64, make([]uint8, 16), make([]uint8, 64*64*4)); err == nil {
		t.Fatal("expected error for short pixel data")
	}
}

func TestRenderBeforeUpload(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPipeline(noopConfig(device, queue))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	defer p.Destroy()

	dst := make([]uint8, 64*64*4)
	if err := p.Render(State{}, dst); !errors.Is(err, ErrNotReady) {
		t.Fatalf("error = %v, want ErrNotReady", err)
	}
}

func TestRenderFrameSizeMismatch(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPipeline(noopConfig(device, queue))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	defer p.Destroy()

	pix := make([]uint8, 64*64*4)
	if err := p.UploadAtlases(64, pix, pix); err != nil {
		t.Fatalf("UploadAtlases failed: %v", err)
	}
	if err := p.Render(State{}, make([]uint8, 16)); !errors.Is(err, ErrFrameSize) {
		t.Fatalf("error = %v, want ErrFrameSize", err)
	}
}

func TestResize(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPipeline(noopConfig(device, queue))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	defer p.Destroy()

	if err := p.Resize(128, 96); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if p.Width() != 128 || p.Height() != 96 {
		t.Errorf("size after resize (%d, %d)", p.Width(), p.Height())
	}

	// Same size is a no-op that keeps the target.
	tex := p.targetTex
	if err := p.Resize(128, 96); err != nil {
		t.Fatalf("no-op Resize failed: %v", err)
	}
	if p.targetTex != tex {
		t.Error("no-op resize recreated the target")
	}

	if err := p.Resize(0, 10); !errors.Is(err, ErrFrameSize) {
		t.Errorf("zero resize error = %v, want ErrFrameSize", err)
	}
}

func TestDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPipeline(noopConfig(device, queue))
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	pix := make([]uint8, 64*64*4)
	if err := p.UploadAtlases(64, pix, pix); err != nil {
		t.Fatalf("UploadAtlases failed: %v", err)
	}

	p.Destroy()
	if p.orbitalPipeline != nil || p.bindGroup != nil || p.targetTex != nil {
		t.Error("resources survive Destroy")
	}

	// Destroyed pipelines reject further work, and double destroy is
	// safe.
	if err := p.Render(State{}, pix); !errors.Is(err, ErrNotReady) {
		t.Errorf("Render after Destroy = %v, want ErrNotReady", err)
	}
	if err := p.UploadAtlases(64, pix, pix); !errors.Is(err, ErrNotReady) {
		t.Errorf("UploadAtlases after Destroy = %v, want ErrNotReady", err)
	}
	p.Destroy()
}

func TestPackUniforms(t *testing.T) {
	buf := packUniforms(State{Yaw: 1.5, Pitch: 30, Velocity: -2, Turnstile: true})
	if len(buf) != uniformSize {
		t.Fatalf("uniform size %d, want %d", len(buf), uniformSize)
	}
	// mode flag is the last float.
	if buf[12] != 0 || buf[13] != 0 || buf[14] != 0x80 || buf[15] != 0x3f {
		t.Errorf("mode float bytes = % x, want 1.0", buf[12:16])
	}
	buf = packUniforms(State{})
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("zero state byte %d = %#x", i, b)
		}
	}
}

func TestQuadVertexData(t *testing.T) {
	data := quadVertexData()
	if len(data) != quadVertexCount*quadVertexStride {
		t.Fatalf("vertex data %d bytes, want %d", len(data), quadVertexCount*quadVertexStride)
	}
	layout := quadVertexLayout()
	if len(layout) != 1 || layout[0].ArrayStride != quadVertexStride {
		t.Fatalf("unexpected vertex layout %+v", layout)
	}
	if len(layout[0].Attributes) != 2 {
		t.Fatalf("want 2 vertex attributes, got %d", len(layout[0].Attributes))
	}
}

func TestBGRAToRGBA(t *testing.T) {
	src := []uint8{1, 2, 3, 4, 5, 6, 7, 8}
	dst := make([]uint8, 8)
	bgraToRGBA(src, dst)
	want := []uint8{3, 2, 1, 4, 7, 6, 5, 8}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}
