package orbital

import "testing"

func TestFrame(t *testing.T) {
	f := NewFrame(32, 16)
	if f.Width() != 32 || f.Height() != 16 {
		t.Fatalf("frame size (%d, %d)", f.Width(), f.Height())
	}
	if len(f.Pix()) != 32*16*4 {
		t.Fatalf("pix length %d", len(f.Pix()))
	}

	f.Pix()[0] = 0xff
	img := f.ToImage()
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Fatalf("image bounds %v", img.Bounds())
	}
	if img.Pix[0] != 0xff {
		t.Error("ToImage does not expose frame pixels")
	}

	f.resize(8, 8)
	if f.Width() != 8 || len(f.Pix()) != 8*8*4 {
		t.Errorf("resize left (%d, %d) with %d bytes", f.Width(), f.Height(), len(f.Pix()))
	}
}
