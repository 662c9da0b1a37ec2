// Command orbitsim renders a headless product spin and writes the
// frames as WebP images. It doubles as a smoke test for the GPU path
// on machines without a window system.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"github.com/gogpu/orbital"
)

func main() {
	var (
		ring0   = flag.String("ring0", "ring0.png", "eye-level atlas image (4x4 grid)")
		ring1   = flag.String("ring1", "", "elevated atlas image; defaults to ring0")
		outDir  = flag.String("out", "frames", "output directory")
		frames  = flag.Int("frames", 48, "number of frames to render")
		size    = flag.Int("size", 600, "output frame size in pixels")
		mode    = flag.String("mode", "orbital", "render mode: orbital or turnstile")
		flick   = flag.Float64("flick", 1.5, "initial spin velocity in rad/s")
		verbose = flag.Bool("v", false, "log engine internals")
	)
	flag.Parse()

	if *verbose {
		orbital.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	renderMode := orbital.ModeOrbital
	switch *mode {
	case "orbital":
	case "turnstile":
		renderMode = orbital.ModeTurnstile
	default:
		log.Fatalf("unknown mode %q", *mode)
	}

	if *ring1 == "" {
		*ring1 = *ring0
	}
	atlases, err := orbital.LoadAtlasPair(*ring0, *ring1)
	if err != nil {
		log.Fatalf("load atlases: %v", err)
	}

	eng, err := orbital.New(atlases,
		orbital.WithSize(*size, *size),
		orbital.WithRenderMode(renderMode),
		orbital.WithProductLabel(filepath.Base(*ring0)),
	)
	if err != nil {
		log.Fatalf("create engine: %v", err)
	}
	defer eng.Dispose()

	if !eng.Supported() {
		log.Fatal("no usable GPU adapter")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	eng.Flick(*flick)

	const step = 16 * time.Millisecond
	for i := 0; i < *frames; i++ {
		eng.Advance(step)
		frame, err := eng.Render()
		if err != nil {
			log.Fatalf("render frame %d: %v", i, err)
		}
		if err := writeFrame(*outDir, i, frame); err != nil {
			log.Fatalf("write frame %d: %v", i, err)
		}
	}

	snap := eng.Snapshot()
	log.Printf("rendered %d frames to %s (final: %s)", *frames, *outDir, snap)
}

func writeFrame(dir string, i int, frame *orbital.Frame) error {
	path := filepath.Join(dir, fmt.Sprintf("frame_%03d.webp", i))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return nativewebp.Encode(f, frame.ToImage(), nil)
}
