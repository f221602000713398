// SPDX-License-Identifier: Unlicense OR MIT

// Package text implements §4.2's Font Matcher & Glyph Cache: shaping a
// bidi-reordered, itemized run of text into positioned glyph clusters,
// and rasterizing those glyphs into cached coverage bitmaps.
//
// The shaping half is adapted from gio's text/gotext.go: the same
// script/font-coverage itemization approach (splitByScript,
// splitByFaces) over github.com/go-text/typesetting/shaping, but without
// gio's bidi pass or line wrapping, both of which belong one layer up in
// package inline where the rest of the CSS-inline-layout logic lives.
package text

import (
	gofont "github.com/go-text/typesetting/font"
	"golang.org/x/image/math/fixed"
)

// GlyphID uniquely identifies a rasterized glyph shape: the same (face,
// ppem, glyph index) always produces the same ID, so it doubles as a
// cache key. Layout mirrors gio's newGlyphID/splitGlyphID bit packing
// (facebits/sizebits/gidbits) to fold face+size+glyph into one integer
// without a struct key.
type GlyphID uint64

const (
	faceBits = 16
	sizeBits = 16
	gidBits  = 64 - faceBits - sizeBits
)

// NewGlyphID packs a face index, pixels-per-em, and font-native glyph
// index into a GlyphID.
func NewGlyphID(faceIdx int, ppem fixed.Int26_6, gid gofont.GID) GlyphID {
	if uint64(gid)&^((1<<gidBits)-1) != 0 {
		panic("text: glyph id out of bounds")
	}
	if faceIdx&^((1<<faceBits)-1) != 0 {
		panic("text: face index out of bounds")
	}
	p := uint64(ppem) & ((1 << sizeBits) - 1)
	return GlyphID(uint64(faceIdx)<<(gidBits+sizeBits) | p<<gidBits | uint64(gid))
}

// Split is the inverse of NewGlyphID.
func (g GlyphID) Split() (faceIdx int, ppem fixed.Int26_6, gid gofont.GID) {
	faceIdx = int(g >> (gidBits + sizeBits))
	ppem = fixed.Int26_6(g & ((1<<sizeBits - 1) << gidBits) >> gidBits)
	gid = gofont.GID(g & (1<<gidBits - 1))
	return
}

// Glyph is one positioned glyph within a shaped run (§3 GlyphRun).
type Glyph struct {
	ID           GlyphID
	ClusterIndex int
	RuneCount    int
	GlyphCount   int
	XAdvance     fixed.Int26_6
	YAdvance     fixed.Int26_6
	XOffset      fixed.Int26_6
	YOffset      fixed.Int26_6
	Bounds       fixed.Rectangle26_6
}

// Direction mirrors the di.Direction progression of a run: LTR or RTL.
// Vertical progressions are not representable. No document field can
// request vertical text, so no run is ever vertical and no diagnostic is
// logged for it.
type Direction uint8

const (
	LTR Direction = iota
	RTL
)

// Run is a sequence of glyphs shaped with a single face, all flowing in
// the same direction (§3 GlyphRun, minus the style fields the inline
// layer attaches separately).
type Run struct {
	FaceIndex int
	Face      gofont.Face
	Glyphs    []Glyph
	Advance   fixed.Int26_6
	PPEM      fixed.Int26_6
	Direction Direction
	// Ascent/Descent/Gap are in font design units scaled to PPEM, as
	// reported by the shaper for this run's face.
	Ascent, Descent, Gap fixed.Int26_6
}
