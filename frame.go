package orbital

import "image"

// Frame is one rendered output image: a tightly packed RGBA pixel
// buffer the presentation shell can blit or upload. The engine reuses
// one Frame across Render calls; copy the pixels if they must outlive
// the next frame.
type Frame struct {
	width  int
	height int
	pix    []uint8 // RGBA, 4 bytes per pixel
}

// NewFrame creates a zeroed frame buffer.
func NewFrame(width, height int) *Frame {
	return &Frame{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.width }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.height }

// Pix returns the raw RGBA pixel data.
func (f *Frame) Pix() []uint8 { return f.pix }

// ToImage copies the frame into a standard image.RGBA.
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	copy(img.Pix, f.pix)
	return img
}

// resize reallocates the buffer when dimensions change.
func (f *Frame) resize(width, height int) {
	if f.width == width && f.height == height {
		return
	}
	f.width = width
	f.height = height
	f.pix = make([]uint8, width*height*4)
}
