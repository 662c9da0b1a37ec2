// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package orbital

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Presentation errors.
var (
	// ErrInvalidDrawContext is returned when the draw context does not
	// expose texture creation and drawing.
	ErrInvalidDrawContext = errors.New("orbital: dc does not implement a texture drawer")
)

// PresentTo renders the current orientation and draws it into a gogpu
// draw context at the given position. The dc must expose
// DrawTexture(tex any, x, y float32) error and Renderer() any, with
// the renderer able to create textures from RGBA pixels; a
// gogpu.Context's texture drawer satisfies this:
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    eng.Advance(frameTime)
//	    eng.PresentTo(dc.AsTextureDrawer(), 0, 0)
//	})
//
// The engine keeps the presented texture alive until the next
// PresentTo or Dispose call.
func (e *Engine) PresentTo(dc any, x, y float32) error {
	type textureDrawer interface {
		DrawTexture(tex any, x, y float32) error
		Renderer() any
	}
	type textureCreator interface {
		NewTextureFromRGBA(width, height int, data []byte) (any, error)
	}

	drawer, ok := dc.(textureDrawer)
	if !ok {
		return ErrInvalidDrawContext
	}
	creator, ok := drawer.Renderer().(textureCreator)
	if !ok {
		return ErrInvalidDrawContext
	}

	frame, err := e.Render()
	if err != nil {
		return err
	}

	tex, err := creator.NewTextureFromRGBA(frame.Width(), frame.Height(), frame.Pix())
	if err != nil {
		return fmt.Errorf("orbital: NewTextureFromRGBA failed: %w", err)
	}

	// Frame pixels are premultiplied; tell the compositor so it picks
	// the BlendFactorOne pipeline.
	if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
		pt.SetPremultiplied(true)
	}
	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return ErrInvalidDrawContext
	}

	e.mu.Lock()
	prev := e.presented
	e.presented = tex
	e.mu.Unlock()

	// The creator's upload waits for the GPU, so the previously
	// presented texture is no longer referenced by in-flight work.
	if prev != nil {
		if d, ok := prev.(interface{ Destroy() }); ok {
			d.Destroy()
		}
	}

	return drawer.DrawTexture(gpuTex, x, y)
}
