// SPDX-License-Identifier: Unlicense OR MIT

package subrandr

import (
	"sync"

	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/cache"
	"github.com/subrandr/subrandr/fontmatch"
	"github.com/subrandr/subrandr/fontprovider"
	"github.com/subrandr/subrandr/inline"
	"github.com/subrandr/subrandr/internal/subrandrlog"
	"github.com/subrandr/subrandr/paint"
	"github.com/subrandr/subrandr/raster"
	"github.com/subrandr/subrandr/selector"
)

var rendererLog = subrandrlog.New("renderer")

// layoutCacheCapacity bounds the per-box layout cache (§3 Lifecycles:
// "entries evicted on LRU capacity bound or on Document rebind").
const layoutCacheCapacity = 256

// Renderer renders one Subtitles document at a time against a caller-
// owned framebuffer (§6: renderer_create/_set_subtitles/_render/
// _did_change/_destroy). It implements the Unbound/Bound state
// machine of §4.8: SetSubtitles transitions between the two states
// and always drops the per-box layout cache, since a new document
// invalidates every cached layout by definition.
type Renderer struct {
	lib *Library

	mu      sync.Mutex
	subs    *Subtitles
	matcher *fontmatch.Matcher

	layoutCache *cache.LRU[layoutCacheKey, inline.Result]

	lastCtxFingerprint uint64
	lastPaintFP        uint64
	havePaintFP        bool

	pass *Pass
}

type layoutCacheKey struct {
	eventFingerprint uint64
	ctxFingerprint   uint64
}

// NewRenderer creates a Renderer bound to no Subtitles (Unbound).
func (l *Library) NewRenderer() *Renderer {
	return &Renderer{
		lib:         l,
		layoutCache: cache.New[layoutCacheKey, inline.Result](layoutCacheCapacity, nil),
	}
}

// SetSubtitles binds r to s, or unbinds it if s is nil (§4.8
// Renderer↔Subtitles binding). fonts resolves family_list entries for
// s's styles; passing nil falls back to an empty provider. No
// last-resort face is configured, so text whose family_list the
// provider cannot match is not drawn.
func (r *Renderer) SetSubtitles(s *Subtitles, fonts fontprovider.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = s
	if s == nil {
		r.matcher = nil
	} else {
		if fonts == nil {
			fonts = fontprovider.NewMemoryProvider()
		}
		r.matcher = r.lib.newMatcher(fonts, nil)
	}
	r.layoutCache = cache.New[layoutCacheKey, inline.Result](layoutCacheCapacity, nil)
	r.havePaintFP = false
}

// Destroy releases r's per-renderer state (renderer_destroy). The
// Library and Subtitles it referenced are unaffected.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = nil
	r.matcher = nil
	r.layoutCache = nil
	r.pass = nil
}

// Render implements §4.7's render(ctx, t, buffer, w, h, stride):
// selects the active boxes, lays each out (cached by fingerprint),
// and paints them onto buf. stride is in pixels, matching §6's
// "caller-specified stride in pixels."
func (r *Renderer) Render(ctx Context, tMs int64, buf []byte, width, height, stride int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subs == nil {
		return newError(InvalidArgument, nil, "render called on an unbound renderer")
	}

	fctx := ctx.Fingerprint()
	if fctx != r.lastCtxFingerprint {
		// §4.7 step 2: context changed, so every anchor/width resolution
		// the layout cache's entries assumed may no longer hold. The
		// glyph cache is untouched; it keys on font content, not on
		// anchor geometry. Blurred shadow coverage is not cached at all.
		r.layoutCache = cache.New[layoutCacheKey, inline.Result](layoutCacheCapacity, nil)
		r.lastCtxFingerprint = fctx
		rendererLog.Debugf("context fingerprint changed, layout cache invalidated")
	}

	boxes, err := selector.Select(r.subs.doc, tMs, ctx)
	if err != nil {
		rendererLog.Warnf("event selection failed: %v", err)
		return newError(InvalidArgument, err, "selecting active boxes")
	}

	rbuf := &raster.Buffer{Pix: buf, Stride: stride * 4, Width: width, Height: height}
	frameClip := raster.Rect{X0: 0, Y0: 0, X1: width, Y1: height}
	painter := paint.NewPainter(r.lib.glyphs, ctx.DPI)
	engine := inline.NewEngine(r.lib.shaper, r.matcher, ctx.DPI)

	var paintFP uint64
	for _, box := range boxes {
		key := layoutCacheKey{eventFingerprint: box.Fingerprint, ctxFingerprint: fctx}
		result, ok := r.layoutCache.Get(key)
		if !ok {
			result, err = engine.Layout(box.Box)
			if err != nil {
				return newError(Other, err, "laying out event %d", box.EventIndex)
			}
			r.layoutCache.Put(key, result)
		}

		originX, originY := selector.Origin(box.Box.Anchor, ctx, result.Bounds.Width, result.Bounds.Height)
		clearBoxRegion(rbuf, result, originX, originY, frameClip)
		painter.Paint(rbuf, result, originX, originY, box.Box.Flags, frameClip)

		paintFP ^= box.Fingerprint ^ uint64(originX)<<1 ^ uint64(originY)
	}

	r.lastPaintFP = paintFP
	r.havePaintFP = true
	return nil
}

// clearBoxRegion clears a box's bounding rectangle to transparent
// before painting it (§4.7 step 6: "Clear touched regions of the
// output buffer to transparent before the first blit that targets
// them"). Regions the box's bounds never reach are left untouched, so
// a caller's buffer outside the union of every box's bounds keeps
// whatever it held before Render was called.
func clearBoxRegion(buf *raster.Buffer, result inline.Result, originX, originY fixed.Int26_6, clip raster.Rect) {
	r := raster.Rect{
		X0: (originX + result.Bounds.X).Floor(),
		Y0: (originY + result.Bounds.Y).Floor(),
		X1: (originX + result.Bounds.X + result.Bounds.Width).Ceil(),
		Y1: (originY + result.Bounds.Y + result.Bounds.Height).Ceil(),
	}
	raster.Clear(buf, r, clip)
}

// DidChange implements §4.7's did_change(ctx, t): true iff the paint
// list fingerprint at t, or ctx's fingerprint, differs from the one
// last produced by Render. It neither lays out nor paints, so calling
// it does not count as having rendered a frame; its layout-cache
// lookups do refresh the looked-up entries' LRU recency.
func (r *Renderer) DidChange(ctx Context, tMs int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subs == nil {
		return false, newError(InvalidArgument, nil, "did_change called on an unbound renderer")
	}
	if !r.havePaintFP {
		return true, nil
	}

	fctx := ctx.Fingerprint()
	boxes, err := selector.Select(r.subs.doc, tMs, ctx)
	if err != nil {
		return false, newError(InvalidArgument, err, "selecting active boxes")
	}

	var paintFP uint64
	for _, box := range boxes {
		var originX, originY fixed.Int26_6
		key := layoutCacheKey{eventFingerprint: box.Fingerprint, ctxFingerprint: fctx}
		if result, ok := r.layoutCache.Get(key); ok {
			originX, originY = selector.Origin(box.Box.Anchor, ctx, result.Bounds.Width, result.Bounds.Height)
		} else {
			// Not cached: a full Render would reflow this box anyway, so
			// its contribution to the fingerprint is conservatively
			// treated as novel by hashing its identity alone.
			originX, originY = 0, 0
		}
		paintFP ^= box.Fingerprint ^ uint64(originX)<<1 ^ uint64(originY)
	}

	return paintFP != r.lastPaintFP || fctx != r.lastCtxFingerprint, nil
}
