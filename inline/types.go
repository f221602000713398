// SPDX-License-Identifier: Unlicense OR MIT

// Package inline implements §4.3's Inline Layout Engine: CSS-style
// inline layout of one Box at a target width, covering LTR/RTL bidi
// reordering, Unicode line breaking, and ruby annotation placement.
//
// It is kept separate from gio's layout package (constraint-based
// widget layout) both in name and in responsibility: this package only
// arranges text runs produced by package text, it never measures
// widgets or handles input.
package inline

import (
	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/document"
	"github.com/subrandr/subrandr/text"
)

// Box is the layout input derived from an Event at a point in time
// (§3): a node tree, the width it must be laid out at, and the anchor
// its resulting block is ultimately placed at.
type Box struct {
	Root       document.InlineNode
	WidthPx    fixed.Int26_6
	Anchor     document.AnchorSpec
	LineHeight float64 // line-gap factor, default 1.2 if zero
	Flags      document.Flags
}

// GlyphRun is one shaped, positioned run of glyphs sharing a face, size,
// color, and edge treatment (§3). XOffset/YOffset displace the run from
// the line's (OriginX, baseline) origin; YOffset is how a ruby
// annotation run is raised above its base without needing a second
// LineFragment per ruby container.
type GlyphRun struct {
	Face          text.Run
	Color         document.Color
	EdgeStyle     document.EdgeStyle
	EdgeColor     document.Color
	EdgeBlur      fixed.Int26_6
	BidiLevel     int
	XOffset       fixed.Int26_6
	YOffset       fixed.Int26_6
	Underline     bool
	Strikethrough bool
}

// Decoration is an underline or strikethrough rectangle attached to a
// LineFragment. OffsetFromTop is measured down from the line's top
// edge, which lies Ascent above the line's baseline.
type Decoration struct {
	Kind          DecorationKind
	X, Width      fixed.Int26_6
	Thickness     fixed.Int26_6
	OffsetFromTop fixed.Int26_6
	Color         document.Color
}

// DecorationKind discriminates Decoration variants.
type DecorationKind uint8

const (
	DecorationUnderline DecorationKind = iota
	DecorationStrikethrough
)

// Rect is an axis-aligned 26.6 rectangle, used for background boxes.
// Color is only meaningful when Rect is used as a LineFragment's
// Background; Result.Bounds leaves it zero.
type Rect struct {
	X, Y, Width, Height fixed.Int26_6
	Color               document.Color
}

// LineFragment is one laid-out line within a box (§3).
type LineFragment struct {
	OriginX, OriginY fixed.Int26_6 // OriginY is the baseline.
	Width            fixed.Int26_6
	Ascent, Descent  fixed.Int26_6
	Runs             []GlyphRun
	Decorations      []Decoration
	Background       *Rect
}

// Result is the full output of laying out one Box.
type Result struct {
	Lines  []LineFragment
	Bounds Rect
}
