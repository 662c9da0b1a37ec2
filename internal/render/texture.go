// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ringTexture owns one uploaded atlas ring.
type ringTexture struct {
	texture hal.Texture
	view    hal.TextureView
	size    uint32
}

// createRingTexture allocates a sampled 2D texture and uploads the
// RGBA atlas pixels in one WriteTexture call.
func createRingTexture(device hal.Device, queue hal.Queue, label string, size uint32, pix []uint8) (*ringTexture, error) {
	if uint32(len(pix)) != size*size*4 {
		return nil, fmt.Errorf("render: atlas %q pixel data %d bytes, want %d", label, len(pix), size*size*4)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create atlas texture %q: %w", label, err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("failed to create atlas texture view %q: %w", label, err)
	}

	queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  size * 4,
			RowsPerImage: size,
		},
		&hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
	)

	return &ringTexture{texture: tex, view: view, size: size}, nil
}

func (r *ringTexture) destroy(device hal.Device) {
	if r == nil {
		return
	}
	if r.view != nil {
		device.DestroyTextureView(r.view)
		r.view = nil
	}
	if r.texture != nil {
		device.DestroyTexture(r.texture)
		r.texture = nil
	}
}
