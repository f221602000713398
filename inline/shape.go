// SPDX-License-Identifier: Unlicense OR MIT

package inline

import (
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/document"
	"github.com/subrandr/subrandr/text"
)

// subRun is one (style, direction)-uniform slice of a paragraph's text,
// produced by intersecting bidi run boundaries with item (style)
// boundaries -- §4.3 step 3's "subdivide bidi runs at script/style
// boundaries" (script subdivision happens one level deeper, inside
// Shaper.ShapeRange).
type subRun struct {
	start, end int
	dir        text.Direction
	style      document.Style
}

// joinRunes concatenates a run of text items into one paragraph-wide
// rune slice plus parallel per-item start offsets.
func joinRunes(items []item) (runes []rune, starts []int) {
	starts = make([]int, len(items)+1)
	for i, it := range items {
		starts[i] = len(runes)
		runes = append(runes, it.runes...)
	}
	starts[len(items)] = len(runes)
	return runes, starts
}

// splitAtItemBoundaries intersects bidi runs with item boundaries so
// every subRun has both a single direction and a single style.
func splitAtItemBoundaries(items []item, starts []int, bruns []bidiRun) []subRun {
	var out []subRun
	itemIdx := 0
	for _, br := range bruns {
		pos := br.start
		for pos < br.end {
			for itemIdx < len(items) && starts[itemIdx+1] <= pos {
				itemIdx++
			}
			segEnd := br.end
			if starts[itemIdx+1] < segEnd {
				segEnd = starts[itemIdx+1]
			}
			out = append(out, subRun{start: pos, end: segEnd, dir: br.dir, style: items[itemIdx].style})
			pos = segEnd
		}
	}
	return out
}

// layoutText shapes and wraps one forced-break-free run of text items
// (§4.3 steps 2-7).
func (e *Engine) layoutText(items []item, widthPx fixed.Int26_6) ([]LineFragment, error) {
	runes, starts := joinRunes(items)
	runes = trimEdges(runes)
	if len(runes) == 0 {
		return nil, nil
	}

	baseDir := paragraphDirection(runes)
	bruns := resolveBidi(runes, baseDir)
	subRuns := splitAtItemBoundaries(items, starts, bruns)

	var outs []shaping.Output
	for _, sr := range subRuns {
		face, fallbacks, err := e.resolveFaces(sr.style)
		if err != nil {
			continue // missing font: degrade by skipping the sub-run's glyphs (§7 graceful degradation)
		}
		ppem := ppemFor(sr.style.FontSizePt, e.DPI)
		outs = append(outs, e.Shaper.ShapeRange(face, fallbacks, ppem, sr.dir, runes, sr.start, sr.end)...)
	}

	e.mu.Lock()
	lines, _ := e.wrapper.WrapParagraph(shaping.WrapConfig{}, widthPx.Round(), runes, outs...)
	e.mu.Unlock()

	frags := make([]LineFragment, 0, len(lines))
	for _, ln := range lines {
		frags = append(frags, e.toLineFragment(ln, subRuns))
	}
	return frags, nil
}

// toLineFragment converts one wrapped shaping.Line into a LineFragment,
// computing ascent/descent as the max across its runs and reordering
// runs into visual order, adapted from gotext.go's toLine/
// computeVisualOrder.
func (e *Engine) toLineFragment(ln shaping.Line, subRuns []subRun) LineFragment {
	var frag LineFragment
	runs := make([]GlyphRun, len(ln))
	levels := make([]int, len(ln))
	for i, out := range ln {
		run := e.Shaper.ToRun(out)
		style := styleForOffset(subRuns, out.Runes.Offset)
		level := 0
		if run.Direction == text.RTL {
			level = 1
		}
		runs[i] = GlyphRun{
			Face:          run,
			Color:         style.Color,
			EdgeStyle:     style.EdgeStyle,
			EdgeColor:     style.EdgeColor,
			EdgeBlur:      style.EdgeBlur,
			BidiLevel:     level,
			Underline:     style.Underline,
			Strikethrough: style.Strikethrough,
		}
		levels[i] = level
		if run.Ascent > frag.Ascent {
			frag.Ascent = run.Ascent
		}
		if run.Descent+run.Gap > frag.Descent {
			frag.Descent = run.Descent + run.Gap
		}
		frag.Width += run.Advance
	}
	order := visualOrder(levels, baseLevelOf(levels))
	x := fixed.Int26_6(0)
	positioned := make([]GlyphRun, len(runs))
	for _, logicalIdx := range order {
		r := runs[logicalIdx]
		r.XOffset = x
		x += r.Face.Advance
		positioned[logicalIdx] = r
	}
	frag.Runs = positioned
	return frag
}

func styleForOffset(subRuns []subRun, offset int) document.Style {
	for _, sr := range subRuns {
		if offset >= sr.start && offset < sr.end {
			return sr.style
		}
	}
	if len(subRuns) > 0 {
		return subRuns[0].style
	}
	return document.DefaultStyle()
}

// baseLevelOf returns the line's dominant paragraph level: 0 (LTR)
// unless a majority of runs are RTL, matching the common case where a
// line's overall direction tracks its base paragraph direction.
func baseLevelOf(levels []int) int {
	rtl := 0
	for _, l := range levels {
		if l == 1 {
			rtl++
		}
	}
	if rtl*2 > len(levels) {
		return 1
	}
	return 0
}

// visualOrder reorders logical run indices into visual (left-to-right
// on the page) order given each run's bidi level and the line's base
// level, reversing maximal runs of non-base-level direction -- the
// same algorithm as gotext.go's computeVisualOrder, simplified to
// per-run (not per-glyph) granularity since glyph order within a
// shaped go-text Output is already correct for its own direction.
func visualOrder(levels []int, baseLevel int) []int {
	order := make([]int, len(levels))
	const none = -1
	start := none
	visPos := func(logical int) int {
		if baseLevel == 1 {
			return len(levels) - 1 - logical
		}
		return logical
	}
	resolve := func(from, to int) {
		firstVisual := to - 1
		for i := from; i < to; i++ {
			pos := visPos(firstVisual)
			order[pos] = i
			firstVisual--
		}
	}
	for i, level := range levels {
		if level != baseLevel {
			if start == none {
				start = i
			}
			continue
		}
		if start != none {
			resolve(start, i)
			start = none
		}
		order[visPos(i)] = i
	}
	if start != none {
		resolve(start, len(levels))
	}
	return order
}
