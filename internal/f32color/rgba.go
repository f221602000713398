// SPDX-License-Identifier: Unlicense OR MIT

// Package f32color implements premultiplied-alpha color conversions used by
// the rasterizer's blit primitives.
//
// Unlike a GPU-facing UI toolkit, subrandr composites channel-by-channel in
// sRGB directly (no linear conversion): this matches how browsers rasterize
// WebVTT/SRV3 overlays, per the rendering contract in the rasterizer
// component. RGBA here is therefore a straight (gamma-naive) premultiplied
// representation, not a linear light space.
package f32color

import "image/color"

// RGBA is an 8-bit premultiplied sRGB color, stored as float32 channels in
// [0, 1] for blending precision.
type RGBA struct {
	R, G, B, A float32
}

// Array returns rgba values in a [4]float32 array.
func (c RGBA) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Opaque returns the color with its alpha forced to 1.
func (c RGBA) Opaque() RGBA {
	c.A = 1
	return c
}

// SRGB converts c back into an 8-bit non-premultiplied color.
func (c RGBA) SRGB() color.NRGBA {
	if c.A == 0 {
		return color.NRGBA{}
	}
	return color.NRGBA{
		R: clamp8(c.R / c.A * 255),
		G: clamp8(c.G / c.A * 255),
		B: clamp8(c.B / c.A * 255),
		A: clamp8(c.A * 255),
	}
}

// LinearFromSRGB is named for parity with the premultiplication helpers it
// replaces; it performs no gamma conversion, only premultiplication, since
// the rasterizer blends directly in sRGB space.
func LinearFromSRGB(c color.NRGBA) RGBA {
	a := float32(c.A) / 0xFF
	return RGBA{
		R: float32(c.R) / 0xFF * a,
		G: float32(c.G) / 0xFF * a,
		B: float32(c.B) / 0xFF * a,
		A: a,
	}
}

// NRGBAToRGBA converts a non-premultiplied color to a premultiplied one
// without gamma conversion.
func NRGBAToRGBA(c color.NRGBA) color.RGBA {
	if c.A == 0xFF {
		return color.RGBA(c)
	}
	p := LinearFromSRGB(c)
	return color.RGBA{R: clamp8(p.R * 255), G: clamp8(p.G * 255), B: clamp8(p.B * 255), A: c.A}
}

// NRGBAToLinearRGBA is an alias retained for call-site parity with the
// teacher's naming; in this gamma-naive variant it is identical to
// NRGBAToRGBA.
func NRGBAToLinearRGBA(c color.NRGBA) color.RGBA {
	return NRGBAToRGBA(c)
}

// RGBAToNRGBA un-premultiplies a premultiplied sRGB color.
func RGBAToNRGBA(c color.RGBA) color.NRGBA {
	if c.A == 0xFF {
		return color.NRGBA(c)
	}
	return RGBA{
		R: float32(c.R) / 0xFF,
		G: float32(c.G) / 0xFF,
		B: float32(c.B) / 0xFF,
		A: float32(c.A) / 0xFF,
	}.SRGB()
}

// MulAlpha scales c's alpha channel by alpha/255.
func MulAlpha(c color.NRGBA, alpha uint8) color.NRGBA {
	c.A = uint8(uint32(c.A) * uint32(alpha) / 0xFF)
	return c
}

func clamp8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
