// SPDX-License-Identifier: Unlicense OR MIT

package raster

import (
	"image/color"
	"testing"

	"golang.org/x/image/math/fixed"
)

func newBuffer(w, h int) *Buffer {
	return &Buffer{Pix: make([]byte, w*h*4), Stride: w * 4, Width: w, Height: h}
}

func (b *Buffer) at(x, y int) (r, g, bl, a uint8) {
	p := b.pixelAt(x, y)
	return p[2], p[1], p[0], p[3]
}

func TestFillRectOpaque(t *testing.T) {
	buf := newBuffer(4, 4)
	FillRect(buf, Rect{1, 1, 3, 3}, color.NRGBA{R: 255, A: 255}, buf.bounds())
	r, g, b, a := buf.at(1, 1)
	if r != 255 || g != 0 || b != 0 || a != 255 {
		t.Fatalf("got (%d,%d,%d,%d), want (255,0,0,255)", r, g, b, a)
	}
	if r, _, _, a := buf.at(0, 0); r != 0 || a != 0 {
		t.Fatalf("expected untouched pixel outside rect to stay zero, got r=%d a=%d", r, a)
	}
}

func TestFillRectClipsToFramebuffer(t *testing.T) {
	buf := newBuffer(2, 2)
	FillRect(buf, Rect{-5, -5, 10, 10}, color.NRGBA{G: 255, A: 255}, buf.bounds())
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if _, g, _, a := buf.at(x, y); g != 255 || a != 255 {
				t.Fatalf("pixel (%d,%d) not fully painted: g=%d a=%d", x, y, g, a)
			}
		}
	}
}

func TestFillRectHonorsNarrowerClip(t *testing.T) {
	buf := newBuffer(4, 4)
	FillRect(buf, Rect{0, 0, 4, 4}, color.NRGBA{B: 255, A: 255}, Rect{0, 0, 2, 2})
	if _, _, _, a := buf.at(0, 0); a != 255 {
		t.Fatalf("expected pixel inside clip rect to be painted")
	}
	if _, _, _, a := buf.at(3, 3); a != 0 {
		t.Fatalf("expected pixel outside clip rect to stay untouched")
	}
}

func TestFillRectOverBlendsPartialAlpha(t *testing.T) {
	buf := newBuffer(1, 1)
	FillRect(buf, Rect{0, 0, 1, 1}, color.NRGBA{R: 255, A: 255}, buf.bounds())
	FillRect(buf, Rect{0, 0, 1, 1}, color.NRGBA{B: 255, A: 128}, buf.bounds())
	r, _, b, a := buf.at(0, 0)
	if a != 255 {
		t.Fatalf("compositing over an opaque pixel should stay opaque, got a=%d", a)
	}
	if r == 0 || b == 0 {
		t.Fatalf("expected a blend of red and blue, got r=%d b=%d", r, b)
	}
}

func TestClearZeroesOpaquePixels(t *testing.T) {
	buf := newBuffer(4, 4)
	for i := range buf.Pix {
		buf.Pix[i] = 255
	}
	Clear(buf, Rect{1, 1, 3, 3}, buf.bounds())
	if r, g, b, a := buf.at(1, 1); r != 0 || g != 0 || b != 0 || a != 0 {
		t.Fatalf("expected cleared pixel to be fully zero, got (%d,%d,%d,%d)", r, g, b, a)
	}
	if _, _, _, a := buf.at(0, 0); a != 255 {
		t.Fatalf("expected pixel outside the clear rect to stay untouched")
	}
}

func TestMaskBlitScalesByCoverage(t *testing.T) {
	buf := newBuffer(2, 1)
	mask := Mask{Pix: []uint8{255, 0}, Stride: 2, Width: 2, Height: 1}
	MaskBlit(buf, [2]int{0, 0}, mask, color.NRGBA{G: 255, A: 255}, buf.bounds())
	if _, g, _, a := buf.at(0, 0); g != 255 || a != 255 {
		t.Fatalf("full-coverage pixel: got g=%d a=%d, want 255,255", g, a)
	}
	if _, _, _, a := buf.at(1, 0); a != 0 {
		t.Fatalf("zero-coverage pixel should stay untouched, got a=%d", a)
	}
}

func TestColorBlitUniformAlpha(t *testing.T) {
	buf := newBuffer(1, 1)
	src := ColorImage{Pix: []byte{0, 0, 255, 255}, Stride: 4, Width: 1, Height: 1} // opaque red (BGRA)
	ColorBlit(buf, [2]int{0, 0}, src, 128, buf.bounds())
	_, _, _, a := buf.at(0, 0)
	if a == 0 || a == 255 {
		t.Fatalf("expected partial alpha after scaling by 128/255, got %d", a)
	}
}

func TestStrokeRectFullPixelCoverage(t *testing.T) {
	buf := newBuffer(2, 2)
	StrokeRect(buf, fixed.Rectangle26_6{Min: fixed.P(0, 0), Max: fixed.P(2, 2)}, color.NRGBA{R: 255, A: 255}, buf.bounds())
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if _, _, _, a := buf.at(x, y); a != 255 {
				t.Fatalf("pixel (%d,%d): want fully covered, got a=%d", x, y, a)
			}
		}
	}
}

func TestStrokeRectFractionalEdgeIsDimmerThanInterior(t *testing.T) {
	buf := newBuffer(2, 1)
	// A rect spanning x in [0.5, 1.5) covers half of pixel column 0 and
	// half of pixel column 1.
	r := fixed.Rectangle26_6{Min: fixed.P(0, 0), Max: fixed.P(0, 1)}
	r.Min.X = fixed.I(1) / 2
	r.Max.X = r.Min.X + fixed.I(1)
	r.Max.Y = fixed.I(1)
	StrokeRect(buf, r, color.NRGBA{R: 255, A: 255}, buf.bounds())
	_, _, _, a0 := buf.at(0, 0)
	_, _, _, a1 := buf.at(1, 0)
	if a0 == 0 || a0 >= 255 {
		t.Fatalf("expected partial coverage on the leading edge pixel, got a=%d", a0)
	}
	if a1 == 0 || a1 >= 255 {
		t.Fatalf("expected partial coverage on the trailing edge pixel, got a=%d", a1)
	}
}

func TestAxisCoverageFullAndEmpty(t *testing.T) {
	if c := axisCoverage(fixed.I(0), fixed.I(1), fixed.I(0), fixed.I(1)); c != 255 {
		t.Fatalf("exact-cell span should be full coverage, got %d", c)
	}
	if c := axisCoverage(fixed.I(5), fixed.I(6), fixed.I(0), fixed.I(1)); c != 0 {
		t.Fatalf("disjoint span should be zero coverage, got %d", c)
	}
}
