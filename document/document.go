// SPDX-License-Identifier: Unlicense OR MIT

// Package document implements the neutral, time-independent subtitle
// document model that format-specific parsers (SRV3, WebVTT) produce and
// that the rendering pipeline consumes.
package document

import (
	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/fontprovider"
)

// Format records which source format a Document was parsed from. The
// rendering pipeline reads the per-format behavioral flags below rather
// than branching on Format directly, so new formats only need to set the
// right flags.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatSRV3
	FormatWebVTT
)

// Flags captures the small, per-format behavioral differences the painter
// and layout engine need (§9 Design notes: "Format-variant knobs").
type Flags struct {
	// DecorationsAfterGlyphs paints underline/strikethrough after glyph
	// bodies (SRV3) instead of before them (WebVTT).
	DecorationsAfterGlyphs bool
	// TightBackgroundBox sizes the per-line background rectangle to the
	// text ascent/descent (WebVTT) rather than padding it out further
	// (SRV3 cue boxes tend to run taller).
	TightBackgroundBox bool
}

// Document is an immutable, parsed subtitle file: a set of time-indexed
// events plus the font provider its parser was given (Fonts). The
// renderer does not read Fonts; it resolves styles through the provider
// passed to Renderer.SetSubtitles. It is safe for concurrent read access
// by multiple renderers.
type Document struct {
	Format Format
	Flags  Flags
	Events []Event
	Fonts  fontprovider.Provider
}

// Event is one subtitle cue: an inline node tree active for [TStartMS,
// TEndMS), anchored somewhere in the video frame.
type Event struct {
	TStartMS, TEndMS int64
	Root             InlineNode
	Anchor           AnchorSpec
}

// Active reports whether the event is visible at time t, per §4.1: t_start
// <= t < t_end.
func (e Event) Active(t int64) bool {
	return e.TStartMS <= t && t < e.TEndMS
}

// HAlign is the horizontal alignment of an anchored box.
type HAlign uint8

const (
	HStart HAlign = iota
	HCenter
	HEnd
)

// VAlign is the vertical alignment of an anchored box.
type VAlign uint8

const (
	VTop VAlign = iota
	VMiddle
	VBottom
)

// AnchorSpec positions an event's box within the inner video area (the
// context's video size minus padding). Percentages are fractions in
// [0, 1] of that inner area's width/height.
type AnchorSpec struct {
	HAlign   HAlign
	VAlign   VAlign
	XPct     float64
	YPct     float64
	WidthPct float64
}

// NodeKind discriminates the InlineNode variants.
type NodeKind uint8

const (
	NodeText NodeKind = iota
	NodeInline
	NodeLineBreak
	NodeRuby
)

// InlineNode is a tagged-variant node of the inline tree (§3). Only the
// fields relevant to Kind are populated; this mirrors the "tagged-variant
// inline tree" design note (§9) and keeps recursive layout code auditable
// by switching on Kind rather than dynamic dispatch.
type InlineNode struct {
	Kind NodeKind

	// NodeText
	Chars []rune

	// NodeInline, NodeRuby
	Children []InlineNode

	// NodeRuby
	Annotation []InlineNode

	Style Style
}

// EdgeStyle is the glyph edge treatment (§3).
type EdgeStyle uint8

const (
	EdgeNone EdgeStyle = iota
	EdgeDropShadow
	EdgeRaised
	EdgeDepressed
	EdgeOutline
	EdgeSoftShadow
)

// RubyMode controls how a Ruby node's annotation is positioned relative to
// its base.
type RubyMode uint8

const (
	RubyNone RubyMode = iota
	RubyOver
	RubyUnder
	RubyContainer
)

// Color is a non-premultiplied 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Style is the flat, inherited style bag attached to every InlineNode
// (§3). A node's Style holds its own explicit values; the inline layout
// engine resolves inheritance at layout time by calling Inherit on each
// node with its parent's resolved style (see Inherit for which fields
// inherit).
type Style struct {
	FamilyList    []string
	Weight        fontprovider.Weight
	Italic        bool
	FontSizePt    float64
	Color         Color
	Background    Color
	EdgeStyle     EdgeStyle
	EdgeColor     Color
	EdgeBlur      fixed.Int26_6
	Underline     bool
	Strikethrough bool
	LetterSpacing fixed.Int26_6
	RubyMode      RubyMode
}

// DefaultStyle is the root style every document's inheritance chain
// starts from.
func DefaultStyle() Style {
	return Style{
		FamilyList: []string{"sans-serif"},
		Weight:     fontprovider.Normal,
		FontSizePt: 18,
		Color:      Color{R: 255, G: 255, B: 255, A: 255},
	}
}

// Inherit returns the style a child with explicit overrides `over` should
// use, given the parent's resolved style `parent`. Only FamilyList,
// FontSizePt, Color and Weight inherit: each is taken from parent when
// its value in `over` is the zero value. Every other field is taken from
// `over` as is, so a zero value there (Italic false, a transparent
// Background, EdgeNone, ...) is used rather than the parent's value.
func Inherit(parent, over Style) Style {
	out := over
	if len(out.FamilyList) == 0 {
		out.FamilyList = parent.FamilyList
	}
	if out.FontSizePt == 0 {
		out.FontSizePt = parent.FontSizePt
	}
	if (out.Color == Color{}) {
		out.Color = parent.Color
	}
	if out.Weight == 0 {
		out.Weight = parent.Weight
	}
	return out
}
