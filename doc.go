// Package orbital renders interactive 360-degree product rotation from
// pre-rendered sprite atlases.
//
// # Overview
//
// orbital drives a drag-to-spin product viewer of the kind used on
// e-commerce product pages. The product is photographed or rendered at
// fixed compass angles into 4x4 sprite atlases; at display time the
// engine maps pointer input to a heading, picks the two atlas frames
// bracketing it, and cross-fades between them on the GPU so rotation
// reads as continuous motion.
//
// Two presentation modes are supported. Orbital mode uses sixteen
// frames at 22.5 degree steps across two elevation rings, with
// vertical drag tilting between rings. Turnstile mode uses eight
// frames at 45 degree steps on a single ring and keeps the camera
// level.
//
// # Quick Start
//
//	import "github.com/gogpu/orbital"
//
//	atlases, err := orbital.LoadAtlasPair("ring0.png", "ring1.png")
//	if err != nil {
//		log.Fatal(err)
//	}
//	eng, err := orbital.New(atlases, orbital.WithSize(800, 800))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer eng.Dispose()
//
//	eng.PointerDown()
//	eng.DragBy(12, 0, 16*time.Millisecond)
//	eng.PointerUp()
//
//	for i := 0; i < 60; i++ {
//		eng.Advance(16 * time.Millisecond)
//		frame, err := eng.Render()
//		...
//	}
//
// # Architecture
//
// The package is organized into:
//   - Public API: Engine, Integrator, Atlas, Frame, Snapshot
//   - Frame math: the quadrant grid and angular sequences shared by
//     CPU queries and the generated shader table
//   - internal/render: wgpu hal pipeline, shader assembly, readback
//
// Rendering runs offscreen and reads back RGBA pixels, so the engine
// works headless; PresentTo integrates with gogpu surfaces when a
// window is present.
package orbital
