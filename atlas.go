// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package orbital

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"

	// Register the atlas image formats. The generation service emits
	// PNG or WebP; JPEG and TGA sources show up in offline testing.
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/ftrvxmtrx/tga"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxAtlasDim is the largest atlas edge uploaded as-is. Larger images
// are downscaled to stay under common GPU texture limits.
const maxAtlasDim = 8192

// Atlas loading errors.
var (
	// ErrAtlasNil is returned when a nil image or atlas is supplied.
	ErrAtlasNil = errors.New("orbital: atlas is nil")

	// ErrAtlasGrid is returned when the image cannot be divided into
	// a 4x4 grid of equal square cells.
	ErrAtlasGrid = errors.New("orbital: atlas is not a 4x4 grid of square cells")

	// ErrAtlasMismatch is returned when the two rings of a pair have
	// different dimensions.
	ErrAtlasMismatch = errors.New("orbital: atlas rings have different dimensions")
)

// Atlas is one decoded sprite sheet: a 4x4 grid of equal-size square
// cells, one CompassFrame rendering per cell, in QuadrantGrid storage
// order. Pixels are straight-alpha RGBA, ready for GPU upload.
type Atlas struct {
	img      *image.NRGBA
	cellSize int
}

// LoadAtlas decodes an atlas image from r and validates its layout.
func LoadAtlas(r io.Reader) (*Atlas, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("orbital: decode atlas: %w", err)
	}
	a, err := NewAtlasFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w (format %s)", err, format)
	}
	return a, nil
}

// LoadAtlasFile decodes an atlas image from a file path.
func LoadAtlasFile(path string) (*Atlas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("orbital: open atlas: %w", err)
	}
	defer f.Close()
	a, err := LoadAtlas(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	return a, nil
}

// NewAtlasFromImage validates an already-decoded image as an atlas.
// Oversized images are downscaled to fit GPU texture limits; the grid
// constraint is checked after scaling.
func NewAtlasFromImage(img image.Image) (*Atlas, error) {
	if img == nil {
		return nil, ErrAtlasNil
	}

	nrgba := toNRGBA(img)
	if w := nrgba.Bounds().Dx(); w > maxAtlasDim {
		nrgba = scaleNRGBA(nrgba, maxAtlasDim)
	}

	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()
	if w == 0 || h == 0 || w != h || w%GridSize != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrAtlasGrid, w, h)
	}

	return &Atlas{img: nrgba, cellSize: w / GridSize}, nil
}

// Width returns the atlas width in pixels.
func (a *Atlas) Width() int { return a.img.Bounds().Dx() }

// Height returns the atlas height in pixels.
func (a *Atlas) Height() int { return a.img.Bounds().Dy() }

// CellSize returns the edge length of one frame cell in pixels.
func (a *Atlas) CellSize() int { return a.cellSize }

// Pix returns the raw RGBA pixel data, 4 bytes per pixel, tightly
// packed row-major. The engine uploads this once and never mutates it.
func (a *Atlas) Pix() []uint8 { return a.img.Pix }

// Cell returns the sub-image holding one frame, addressed by raster
// frame index.
func (a *Atlas) Cell(frameIndex int) *image.NRGBA {
	col, row := FrameGridPosition(frameIndex)
	r := image.Rect(col*a.cellSize, row*a.cellSize, (col+1)*a.cellSize, (row+1)*a.cellSize)
	return a.img.SubImage(r).(*image.NRGBA)
}

// AtlasPair is the engine's texture input: ring0 is the eye-level
// sprite sheet, ring1 the 30°-elevated one. Both rings are loaded
// once per engine instance and immutable thereafter. Turnstile mode
// uses only grid rows 0-1 of ring0.
type AtlasPair struct {
	Ring0, Ring1 *Atlas
}

// NewAtlasPair validates that the two rings agree in size.
func NewAtlasPair(ring0, ring1 *Atlas) (*AtlasPair, error) {
	if ring0 == nil || ring1 == nil {
		return nil, ErrAtlasNil
	}
	if ring0.Width() != ring1.Width() || ring0.Height() != ring1.Height() {
		return nil, fmt.Errorf("%w: ring0 %dx%d, ring1 %dx%d", ErrAtlasMismatch,
			ring0.Width(), ring0.Height(), ring1.Width(), ring1.Height())
	}
	return &AtlasPair{Ring0: ring0, Ring1: ring1}, nil
}

// LoadAtlasPair decodes and validates both rings from file paths.
func LoadAtlasPair(ring0Path, ring1Path string) (*AtlasPair, error) {
	ring0, err := LoadAtlasFile(ring0Path)
	if err != nil {
		return nil, err
	}
	ring1, err := LoadAtlasFile(ring1Path)
	if err != nil {
		return nil, err
	}
	return NewAtlasPair(ring0, ring1)
}

// toNRGBA converts any decoded image to straight-alpha NRGBA with a
// zero-origin bounds rectangle.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// scaleNRGBA downscales so the longest edge equals dim, preserving
// the aspect ratio.
func scaleNRGBA(src *image.NRGBA, dim int) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= h {
		h = h * dim / w
		w = dim
	} else {
		w = w * dim / h
		h = dim
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
