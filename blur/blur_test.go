// SPDX-License-Identifier: Unlicense OR MIT

package blur

import (
	"testing"

	"golang.org/x/image/math/fixed"
)

func TestRadiusPixelsScalesWithDPI(t *testing.T) {
	if R := RadiusPixels(fixed.I(1), 72); R != 1 {
		t.Fatalf("1 logical unit at 72 dpi: got %d, want 1", R)
	}
	if R := RadiusPixels(fixed.I(1), 144); R != 2 {
		t.Fatalf("1 logical unit at 144 dpi: got %d, want 2", R)
	}
}

func TestRadiusPixelsClampsToMax(t *testing.T) {
	if R := RadiusPixels(fixed.I(1000), 72); R != MaxRadius {
		t.Fatalf("got %d, want clamp to %d", R, MaxRadius)
	}
}

func TestBlurZeroRadiusIsIdentity(t *testing.T) {
	src := NewCoverage(2, 2)
	src.Pix = []uint8{10, 20, 30, 40}
	out := Blur(src, 0)
	if out.Width != 2 || out.Height != 2 {
		t.Fatalf("zero-radius blur should not pad the buffer")
	}
	for i, v := range src.Pix {
		if out.Pix[i] != v {
			t.Fatalf("pixel %d: got %d, want %d", i, out.Pix[i], v)
		}
	}
}

func TestBlurPadsByThreeRadius(t *testing.T) {
	src := NewCoverage(4, 4)
	out := Blur(src, 2)
	wantPad := 3 * 2
	if out.Width != src.Width+2*wantPad || out.Height != src.Height+2*wantPad {
		t.Fatalf("got %dx%d, want %dx%d", out.Width, out.Height, src.Width+2*wantPad, src.Height+2*wantPad)
	}
}

func TestBlurSpreadsASinglePixel(t *testing.T) {
	src := NewCoverage(1, 1)
	src.Pix[0] = 255
	out := Blur(src, 1)
	// The center of the output should retain significant coverage, and
	// neighboring pixels should now be non-zero due to the spread.
	cx, cy := out.Width/2, out.Height/2
	if out.Pix[cy*out.Stride+cx] == 0 {
		t.Fatalf("expected the blurred center to retain coverage")
	}
	if out.Pix[cy*out.Stride+cx+1] == 0 {
		t.Fatalf("expected blur to spread coverage to a neighboring pixel")
	}
	// Far corners should remain at zero coverage (input treated as zero
	// outside its bounds).
	if out.Pix[0] != 0 {
		t.Fatalf("expected the far corner to remain unblurred zero coverage, got %d", out.Pix[0])
	}
}

func TestBlurPreservesUniformCoverage(t *testing.T) {
	// Large relative to the radius, so the center sits well away from
	// the zero-padded edges' influence.
	src := NewCoverage(40, 40)
	for i := range src.Pix {
		src.Pix[i] = 128
	}
	out := Blur(src, 2)
	cx, cy := out.Width/2, out.Height/2
	v := out.Pix[cy*out.Stride+cx]
	if v < 120 || v > 136 {
		t.Fatalf("interior of a uniform field drifted too far under blur: got %d, want ~128", v)
	}
}
