// SPDX-License-Identifier: Unlicense OR MIT

package inline

import (
	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/document"
)

// layoutRubySegment lays out a ruby container's base and annotation as
// independent, unbreakable inline boxes (§4.3 step 8), returning it as
// a single LineFragment whose annotation runs carry a negative YOffset
// rather than as two separate LineFragments, so the painter positions
// them with the same primitive it uses for any other run.
func (e *Engine) layoutRubySegment(ru item, maxWidth fixed.Int26_6) ([]LineFragment, error) {
	baseSpans := flattenRubyNodes(ru.rubyBase, ru.style)
	annSpans := flattenRubyNodes(ru.rubyAnnotation, ru.style)

	baseLine, err := e.shapeUnbreakable(baseSpans)
	if err != nil {
		return nil, err
	}
	annLine, err := e.shapeUnbreakable(annSpans)
	if err != nil {
		return nil, err
	}

	rubyAdvance := distributeRubyClusters(&baseLine, &annLine)

	annSizePx := fixed.Int26_6(0)
	if len(ru.rubyAnnotation) > 0 {
		annSizePx = ppemFor(resolvedStyle(ru.rubyAnnotation, ru.style).FontSizePt, e.DPI)
	}
	// §3 invariant: inter-baseline gap >= annotation_size * 1.1.
	naturalGap := annLine.Descent + baseLine.Ascent
	minGap := fixed.Int26_6(float64(annSizePx) * 1.1)
	extra := fixed.Int26_6(0)
	if naturalGap < minGap {
		extra = minGap - naturalGap
	}
	riseAboveBaseline := naturalGap + extra

	merged := baseLine
	for _, r := range annLine.Runs {
		r.YOffset = -riseAboveBaseline
		merged.Runs = append(merged.Runs, r)
	}
	if merged.Width < rubyAdvance {
		merged.Width = rubyAdvance
	}
	if topAscent := riseAboveBaseline + annLine.Ascent; topAscent > merged.Ascent {
		merged.Ascent = topAscent
	}
	return []LineFragment{merged}, nil
}

// flattenRubyNodes linearizes a ruby base/annotation's children into
// text items, dropping any nested breaks/ruby (unsupported inside a
// ruby base or annotation).
func flattenRubyNodes(nodes []document.InlineNode, parent document.Style) []item {
	var items []item
	for _, n := range nodes {
		items = append(items, linearize(n, parent)...)
	}
	var out []item
	for _, it := range items {
		if it.kind == itemText {
			out = append(out, it)
		}
	}
	return out
}

func resolvedStyle(nodes []document.InlineNode, parent document.Style) document.Style {
	if len(nodes) == 0 {
		return parent
	}
	return document.Inherit(parent, nodes[0].Style)
}

// shapeUnbreakable shapes items as one line with no width-driven
// breaking, by passing a width effectively unbounded relative to any
// realistic ruby annotation.
func (e *Engine) shapeUnbreakable(items []item) (LineFragment, error) {
	const unbounded = fixed.Int26_6(1 << 24)
	lines, err := e.layoutText(items, unbounded)
	if err != nil || len(lines) == 0 {
		return LineFragment{}, err
	}
	return lines[0], nil
}

// rubyCluster is one shaping cluster (a base character or an annotation
// character, generally) within a ruby line, located in that line's own
// natural (pre-redistribution) coordinate space.
type rubyCluster struct {
	runIndex               int
	glyphStart, glyphEnd   int
	naturalX, naturalWidth fixed.Int26_6
}

// clustersOf walks line's runs in visual order and groups each run's
// glyphs into clusters by ClusterIndex, assuming (as shapers normally
// produce) that glyphs sharing a cluster are contiguous.
func clustersOf(line LineFragment) []rubyCluster {
	var clusters []rubyCluster
	for ri, run := range line.Runs {
		glyphs := run.Face.Glyphs
		x := run.XOffset
		for i := 0; i < len(glyphs); {
			j := i
			cluster := glyphs[i].ClusterIndex
			var w fixed.Int26_6
			for j < len(glyphs) && glyphs[j].ClusterIndex == cluster {
				w += glyphs[j].XAdvance
				j++
			}
			clusters = append(clusters, rubyCluster{runIndex: ri, glyphStart: i, glyphEnd: j, naturalX: x, naturalWidth: w})
			x += w
			i = j
		}
	}
	return clusters
}

// sliceGlyphRun carves the glyphs of src.Face in [start, end) into a new
// GlyphRun at xOffset, copying every style field from src.
func sliceGlyphRun(src GlyphRun, start, end int, xOffset fixed.Int26_6) GlyphRun {
	out := src
	out.Face.Glyphs = append(out.Face.Glyphs[:0:0], src.Face.Glyphs[start:end]...)
	var advance fixed.Int26_6
	for _, g := range out.Face.Glyphs {
		advance += g.XAdvance
	}
	out.Face.Advance = advance
	out.XOffset = xOffset
	return out
}

// baseIndexForFraction returns the base cluster whose natural span
// contains fraction*baseWidth, clamping to the last cluster past the end.
func baseIndexForFraction(base []rubyCluster, baseWidth fixed.Int26_6, fraction float64) int {
	target := fixed.Int26_6(fraction * float64(baseWidth))
	for i, bc := range base {
		if i == len(base)-1 || target < bc.naturalX+bc.naturalWidth {
			return i
		}
	}
	return len(base) - 1
}

// distributeRubyClusters implements §4.3 step 8's cluster pairing:
// "pair annotation clusters to base clusters proportionally to
// annotation-cluster widths ... the shorter side is center-distributed
// to expand inter-cluster spacing." Each base cluster becomes a column
// whose width is the larger of its own natural width and the combined
// width of the annotation clusters mapped to it (by matching each
// annotation cluster's proportional position in the annotation's total
// width to the base cluster spanning that same proportional position in
// the base's total width); the base cluster and its matched annotation
// clusters are then each centered within that column. It rewrites
// baseLine.Runs and annLine.Runs to one GlyphRun per cluster and returns
// the combined width of every column (the value previously "rubyAdvance"
// named, now computed from a real pairing instead of a single en-bloc
// shift of each side).
func distributeRubyClusters(baseLine, annLine *LineFragment) fixed.Int26_6 {
	base := clustersOf(*baseLine)
	ann := clustersOf(*annLine)
	if len(base) == 0 {
		return annLine.Width
	}

	groups := make([][]int, len(base))
	for j, ac := range ann {
		center := ac.naturalX + ac.naturalWidth/2
		fraction := 0.0
		if annLine.Width > 0 {
			fraction = float64(center) / float64(annLine.Width)
		}
		i := baseIndexForFraction(base, baseLine.Width, fraction)
		groups[i] = append(groups[i], j)
	}

	columnWidth := make([]fixed.Int26_6, len(base))
	groupWidth := make([]fixed.Int26_6, len(base))
	for i, bc := range base {
		var gw fixed.Int26_6
		for _, j := range groups[i] {
			gw += ann[j].naturalWidth
		}
		groupWidth[i] = gw
		columnWidth[i] = bc.naturalWidth
		if gw > columnWidth[i] {
			columnWidth[i] = gw
		}
	}

	columnStart := make([]fixed.Int26_6, len(base))
	var total fixed.Int26_6
	for i, w := range columnWidth {
		columnStart[i] = total
		total += w
	}

	newBaseRuns := make([]GlyphRun, len(base))
	for i, bc := range base {
		offset := columnStart[i] + (columnWidth[i]-bc.naturalWidth)/2
		newBaseRuns[i] = sliceGlyphRun(baseLine.Runs[bc.runIndex], bc.glyphStart, bc.glyphEnd, offset)
	}

	var newAnnRuns []GlyphRun
	for i := range base {
		group := groups[i]
		if len(group) == 0 {
			continue
		}
		groupStart := ann[group[0]].naturalX
		dest := columnStart[i] + (columnWidth[i]-groupWidth[i])/2
		for _, j := range group {
			ac := ann[j]
			offset := dest + (ac.naturalX - groupStart)
			newAnnRuns = append(newAnnRuns, sliceGlyphRun(annLine.Runs[ac.runIndex], ac.glyphStart, ac.glyphEnd, offset))
		}
	}

	baseLine.Runs = newBaseRuns
	baseLine.Width = total
	annLine.Runs = newAnnRuns
	annLine.Width = total
	return total
}
