// SPDX-License-Identifier: Unlicense OR MIT

// Package raster implements the CPU rasterizer: a set of blit primitives
// that composite glyph bitmaps, backgrounds, decorations, and blurred
// shadows into a caller-owned premultiplied BGRA framebuffer.
//
// Unlike the teacher's GPU-oriented rasterizer (which decoded an op
// stream into vertex/stencil commands for a graphics backend), this
// package never owns a command stream: callers in package paint invoke
// its blit functions directly against a Buffer, one draw call per
// primitive, since there is no GPU pipeline to batch work for.
package raster

import (
	"image/color"

	"github.com/subrandr/subrandr/internal/f32color"
	"golang.org/x/image/math/fixed"
)

// Buffer is a caller-owned premultiplied BGRA framebuffer: Pix holds
// Height rows of Stride bytes, each row packing Width BGRA8888 pixels
// starting at byte offset y*Stride.
type Buffer struct {
	Pix           []byte
	Stride        int
	Width, Height int
}

// Rect is an axis-aligned pixel rectangle, half-open like image.Rectangle.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Empty reports whether r contains no pixels.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// Intersect returns the largest rectangle contained in both r and o.
func (r Rect) Intersect(o Rect) Rect {
	if r.X0 < o.X0 {
		r.X0 = o.X0
	}
	if r.Y0 < o.Y0 {
		r.Y0 = o.Y0
	}
	if r.X1 > o.X1 {
		r.X1 = o.X1
	}
	if r.Y1 > o.Y1 {
		r.Y1 = o.Y1
	}
	return r
}

// bounds is the framebuffer's own pixel rectangle, used as the default
// clip every blit is narrowed to (§4.5 "every blit is clipped to the
// framebuffer rectangle").
func (b *Buffer) bounds() Rect { return Rect{0, 0, b.Width, b.Height} }

func effectiveClip(b *Buffer, clip Rect) Rect { return b.bounds().Intersect(clip) }

func (b *Buffer) pixelAt(x, y int) []byte {
	i := y*b.Stride + x*4
	return b.Pix[i : i+4 : i+4]
}

// premultipliedBGRA converts a non-premultiplied sRGB color to
// premultiplied (B, G, R, A) byte order, matching the framebuffer's
// in-memory layout.
func premultipliedBGRA(c color.NRGBA) (b, g, r, a uint8) {
	p := f32color.NRGBAToRGBA(c)
	return p.B, p.G, p.R, p.A
}

// FillRect OVER-composites a constant premultiplied color onto rect,
// clipped to clip and the framebuffer bounds.
func FillRect(buf *Buffer, rect Rect, c color.NRGBA, clip Rect) {
	r := rect.Intersect(effectiveClip(buf, clip))
	if r.Empty() {
		return
	}
	cb, cg, cr, ca := premultipliedBGRA(c)
	if ca == 0 {
		return
	}
	for y := r.Y0; y < r.Y1; y++ {
		for x := r.X0; x < r.X1; x++ {
			blendOver(buf.pixelAt(x, y), cb, cg, cr, ca)
		}
	}
}

// Clear unconditionally zeroes every pixel in rect (clipped to clip and
// the framebuffer bounds) to fully transparent. Unlike FillRect with a
// zero-alpha color, this always writes: a zero-alpha SRC-OVER blend is a
// no-op by construction, which would leave stale pixels behind whenever
// the destination isn't already transparent.
func Clear(buf *Buffer, rect Rect, clip Rect) {
	r := rect.Intersect(effectiveClip(buf, clip))
	if r.Empty() {
		return
	}
	for y := r.Y0; y < r.Y1; y++ {
		row := buf.Pix[y*buf.Stride+r.X0*4 : y*buf.Stride+r.X1*4]
		for i := range row {
			row[i] = 0
		}
	}
}

// blendOver applies premultiplied SRC-OVER: dst' = src + dst*(1-src.a),
// computed in 8-bit with rounding toward nearest.
func blendOver(dst []byte, sb, sg, sr, sa uint8) {
	ia := uint32(255 - sa)
	dst[0] = sb + div255(uint32(dst[0])*ia)
	dst[1] = sg + div255(uint32(dst[1])*ia)
	dst[2] = sr + div255(uint32(dst[2])*ia)
	dst[3] = sa + div255(uint32(dst[3])*ia)
}

// div255 divides by 255 with round-to-nearest, the standard integer
// approximation used for 8-bit alpha compositing.
func div255(v uint32) uint8 {
	return uint8((v + 128 + (v+128)>>8) >> 8)
}

// Mask is an 8-bit coverage mask, one byte per pixel, row-major with its
// own stride (glyph bitmaps from text.GlyphCache use this shape).
type Mask struct {
	Pix           []uint8
	Stride        int
	Width, Height int
}

// MaskBlit composites color through mask at origin: for each destination
// pixel, dst' = C*(M/255) + dst*(1 - C.a*M/255), per §4.5's Mask blit
// primitive, used to paint an antialiased glyph in a single solid color.
func MaskBlit(buf *Buffer, origin [2]int, mask Mask, c color.NRGBA, clip Rect) {
	dst := Rect{origin[0], origin[1], origin[0] + mask.Width, origin[1] + mask.Height}
	r := dst.Intersect(effectiveClip(buf, clip))
	if r.Empty() {
		return
	}
	cb, cg, cr, ca := premultipliedBGRA(c)
	for y := r.Y0; y < r.Y1; y++ {
		my := y - origin[1]
		for x := r.X0; x < r.X1; x++ {
			mx := x - origin[0]
			m := uint32(mask.Pix[my*mask.Stride+mx])
			if m == 0 {
				continue
			}
			sb := uint8(div255(uint32(cb) * m))
			sg := uint8(div255(uint32(cg) * m))
			sr := uint8(div255(uint32(cr) * m))
			sa := uint8(div255(uint32(ca) * m))
			blendOver(buf.pixelAt(x, y), sb, sg, sr, sa)
		}
	}
}

// ColorImage is a premultiplied BGRA source image, used for color-glyph
// bitmaps (emoji, embedded PNG glyph data) rather than coverage masks.
type ColorImage struct {
	Pix           []byte // BGRA8888, row-major
	Stride        int
	Width, Height int
}

// ColorBlit composites src at origin with premultiplied SRC-OVER,
// scaling every source pixel's channels by alpha/255 first (§4.5's
// Color blit: "premultiplied BGRA SRC-OVER, multiplied by a uniform
// alpha"), used for color-glyph bitmaps.
func ColorBlit(buf *Buffer, origin [2]int, src ColorImage, alpha uint8, clip Rect) {
	dst := Rect{origin[0], origin[1], origin[0] + src.Width, origin[1] + src.Height}
	r := dst.Intersect(effectiveClip(buf, clip))
	if r.Empty() || alpha == 0 {
		return
	}
	for y := r.Y0; y < r.Y1; y++ {
		sy := y - origin[1]
		for x := r.X0; x < r.X1; x++ {
			sx := x - origin[0]
			i := sy*src.Stride + sx*4
			sb, sg, sr, sa := src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3]
			if alpha != 255 {
				a := uint32(alpha)
				sb = uint8(div255(uint32(sb) * a))
				sg = uint8(div255(uint32(sg) * a))
				sr = uint8(div255(uint32(sr) * a))
				sa = uint8(div255(uint32(sa) * a))
			}
			if sa == 0 {
				continue
			}
			blendOver(buf.pixelAt(x, y), sb, sg, sr, sa)
		}
	}
}

// StrokeRect fills an axis-aligned rectangle given in 26.6 sub-pixel
// coordinates, decomposing its fractional edges into edge-AA rows and
// columns per §4.5's Stroke primitive: the interior is filled at full
// coverage, and the first/last partial row and column are filled at
// their fractional coverage, multiplied independently so a rectangle
// smaller than one pixel in both axes still composites a dim pixel
// rather than nothing.
func StrokeRect(buf *Buffer, r fixed.Rectangle26_6, c color.NRGBA, clip Rect) {
	x0, x1 := r.Min.X, r.Max.X
	y0, y1 := r.Min.Y, r.Max.Y
	if x1 <= x0 || y1 <= y0 {
		return
	}
	ix0, ix1 := x0.Floor(), x1.Ceil()
	iy0, iy1 := y0.Floor(), y1.Ceil()
	bounds := effectiveClip(buf, clip).Intersect(Rect{ix0, iy0, ix1, iy1})
	if bounds.Empty() {
		return
	}
	cb, cg, cr, ca := premultipliedBGRA(c)
	for y := bounds.Y0; y < bounds.Y1; y++ {
		rowCov := axisCoverage(fixed.I(y), fixed.I(y+1), y0, y1)
		if rowCov == 0 {
			continue
		}
		for x := bounds.X0; x < bounds.X1; x++ {
			colCov := axisCoverage(fixed.I(x), fixed.I(x+1), x0, x1)
			if colCov == 0 {
				continue
			}
			cov := uint32(rowCov) * uint32(colCov) / 255
			if cov == 0 {
				continue
			}
			sb := uint8(div255(uint32(cb) * cov))
			sg := uint8(div255(uint32(cg) * cov))
			sr := uint8(div255(uint32(cr) * cov))
			sa := uint8(div255(uint32(ca) * cov))
			blendOver(buf.pixelAt(x, y), sb, sg, sr, sa)
		}
	}
}

// axisCoverage returns, as an 8-bit fraction, how much of the unit pixel
// cell [cellStart, cellEnd) is covered by the span [spanStart, spanEnd).
func axisCoverage(cellStart, cellEnd, spanStart, spanEnd fixed.Int26_6) uint8 {
	lo := spanStart
	if cellStart > lo {
		lo = cellStart
	}
	hi := spanEnd
	if cellEnd < hi {
		hi = cellEnd
	}
	if hi <= lo {
		return 0
	}
	covered := hi - lo
	full := cellEnd - cellStart
	frac := int64(covered) * 255 / int64(full)
	if frac > 255 {
		frac = 255
	}
	return uint8(frac)
}
