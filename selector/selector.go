// SPDX-License-Identifier: Unlicense OR MIT

// Package selector implements §4.1's Event Selector: given a document
// and a millisecond timestamp, it picks the active events and resolves
// each one's anchor into a concrete layout box.
package selector

import (
	"fmt"

	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/document"
	"github.com/subrandr/subrandr/inline"
	"github.com/subrandr/subrandr/internal/fixedutil"
)

// Context is the rendering context (§6): DPI and the video frame
// geometry a document's anchors are resolved against. It is kept in
// this package, rather than the root module, so that the root package
// can depend on selector without selector depending back on it.
type Context struct {
	DPI                       uint32
	VideoWidth, VideoHeight   fixed.Int26_6
	PaddingLeft, PaddingRight fixed.Int26_6
	PaddingTop, PaddingBottom fixed.Int26_6
}

// Fingerprint hashes the fields that affect AnchorSpec resolution
// (§4.7 step 1: "F_ctx = hash(dpi, video_size, padding)"). Equal
// Contexts have equal fingerprints; the fields are XOR-folded, so two
// different Contexts can also collide.
func (c Context) Fingerprint() uint64 {
	return uint64(c.DPI)<<32 ^
		uint64(uint32(c.VideoWidth))<<16 ^ uint64(uint32(c.VideoHeight)) ^
		uint64(uint32(c.PaddingLeft))<<48 ^ uint64(uint32(c.PaddingRight))<<32 ^
		uint64(uint32(c.PaddingTop))<<16 ^ uint64(uint32(c.PaddingBottom))
}

// innerWidth and innerHeight are the video area minus padding, the
// rectangle AnchorSpec percentages are resolved against.
func (c Context) innerWidth() fixed.Int26_6 {
	return c.VideoWidth - c.PaddingLeft - c.PaddingRight
}

func (c Context) innerHeight() fixed.Int26_6 {
	return c.VideoHeight - c.PaddingTop - c.PaddingBottom
}

// LayoutInput is one active event resolved against a Context: the
// inline.Box ready for the layout engine, plus the ordering and
// caching metadata the renderer needs (§4.1 step 1, §4.7 step 2).
type LayoutInput struct {
	EventIndex  int
	Box         inline.Box
	Fingerprint uint64
}

// Select materializes the active set of doc's events at t, in
// document order with ties broken by (start, document index) per
// §4.1 step 1, resolving each one's anchor against ctx (§4.1 step 2).
//
// The spec calls for "a lazy sequence... restartable, finite"; a
// plain slice already satisfies all three properties here (bounded by
// document size, recomputed fresh on every call, safely iterated more
// than once), so there's no need for an explicit iterator type.
func Select(doc *document.Document, tMs int64, ctx Context) ([]LayoutInput, error) {
	innerW, innerH := ctx.innerWidth(), ctx.innerHeight()
	if innerW <= 0 || innerH <= 0 {
		return nil, fmt.Errorf("selector: degenerate video area %dx%d after padding", innerW, innerH)
	}

	var out []LayoutInput
	for i := range doc.Events {
		ev := &doc.Events[i]
		if !ev.Active(tMs) {
			continue
		}
		widthPx, ok := resolveWidth(ev.Anchor, innerW)
		if !ok {
			return nil, fmt.Errorf("selector: event %d: anchor width overflowed 26.6 range", i)
		}
		out = append(out, LayoutInput{
			EventIndex: i,
			Box: inline.Box{
				Root:    ev.Root,
				WidthPx: widthPx,
				Anchor:  ev.Anchor,
				Flags:   doc.Flags,
			},
			Fingerprint: document.Fingerprint(ev.Root, widthPx, ev.Anchor),
		})
	}
	return out, nil
}

// resolveWidth computes the inline layout width an anchor's
// width_pct fraction of the inner video area yields, per §3's
// AnchorSpec definition ("percentages are fractions... of the inner
// video area"). A zero WidthPct defaults to the full inner width.
func resolveWidth(a document.AnchorSpec, innerW fixed.Int26_6) (fixed.Int26_6, bool) {
	pct := a.WidthPct
	if pct <= 0 {
		pct = 1
	}
	width, ok := fixedutil.CheckFloat(float32(innerW) / 64 * float32(pct))
	if !ok {
		return 0, false
	}
	return width, true
}

// Origin resolves the pixel-space top-left corner a laid-out box with
// the given width/height should be placed at within ctx's inner video
// area, honoring the anchor's alignment and percentage offsets (§4.1
// step 2). Called by the root package's Renderer (Render, DidChange
// and RenderInstanced) once the box has been laid out and its extents
// are known, since AnchorSpec only fixes the box's width up front.
func Origin(a document.AnchorSpec, ctx Context, boxWidth, boxHeight fixed.Int26_6) (x, y fixed.Int26_6) {
	innerW, innerH := ctx.innerWidth(), ctx.innerHeight()
	x = ctx.PaddingLeft + fixed.Int26_6(float64(innerW)*a.XPct)
	y = ctx.PaddingTop + fixed.Int26_6(float64(innerH)*a.YPct)

	switch a.HAlign {
	case document.HCenter:
		x -= boxWidth / 2
	case document.HEnd:
		x -= boxWidth
	}
	switch a.VAlign {
	case document.VMiddle:
		y -= boxHeight / 2
	case document.VBottom:
		y -= boxHeight
	}
	return x, y
}
