// SPDX-License-Identifier: Unlicense OR MIT

package inline

import (
	"sync"

	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/document"
	"github.com/subrandr/subrandr/fontmatch"
	"github.com/subrandr/subrandr/text"
)

const defaultLineGapFactor = 1.2

// Engine owns the shaping scratch state (§4.2's per-library shaper and
// font matcher) used across many Layout calls. The root package builds
// a fresh Engine for each render pass; the Shaper it wraps is the
// Library's, shared by every Renderer of that Library.
type Engine struct {
	Shaper  *text.Shaper
	Matcher *fontmatch.Matcher
	DPI     uint32

	mu      sync.Mutex
	wrapper shaping.LineWrapper
}

// NewEngine builds an Engine bound to shaper/matcher, shared across all
// boxes laid out within one Renderer (§5: layout results are cached per
// box but the shaper/matcher themselves are process-wide).
func NewEngine(shaper *text.Shaper, matcher *fontmatch.Matcher, dpi uint32) *Engine {
	return &Engine{Shaper: shaper, Matcher: matcher, DPI: dpi}
}

// Layout performs the full §4.3 procedure on box and returns its
// fragments and bounding box.
func (e *Engine) Layout(box Box) (Result, error) {
	items := linearize(box.Root, document.DefaultStyle())
	segs := splitIntoSegments(items)

	lineGap := box.LineHeight
	if lineGap == 0 {
		lineGap = defaultLineGapFactor
	}

	var result Result
	var baseline fixed.Int26_6
	var prevDescent fixed.Int26_6
	first := true

	for _, seg := range segs {
		var lines []LineFragment
		var err error
		var dominant document.Style
		switch seg.kind {
		case segText:
			lines, err = e.layoutText(seg.items, box.WidthPx)
			if len(seg.items) > 0 {
				dominant = seg.items[0].style
			}
		case segRuby:
			lines, err = e.layoutRubySegment(seg.ruby, box.WidthPx)
			dominant = seg.ruby.style
		}
		if err != nil {
			return Result{}, err
		}
		for _, line := range lines {
			decorate(&line)
			background(&line, dominant, box.Flags)
			if first {
				baseline = line.Ascent
				first = false
			} else {
				baseline += line.Ascent + fixed.Int26_6(float64(prevDescent)*lineGap)
			}
			line.OriginY = baseline
			line.OriginX = 0
			prevDescent = line.Descent
			if line.Width > result.Bounds.Width {
				result.Bounds.Width = line.Width
			}
			result.Lines = append(result.Lines, line)
		}
	}
	if len(result.Lines) > 0 {
		last := result.Lines[len(result.Lines)-1]
		result.Bounds.Height = last.OriginY + last.Descent
	}
	return result, nil
}

// segmentKind discriminates the coarse grouping splitIntoSegments
// produces: ruby containers are laid out as their own dedicated
// segment (their own line or lines), since go-text's line wrapper has
// no concept of an unbreakable inline-block object to splice into a
// surrounding bidi paragraph. This trades exact CSS ruby-in-flow
// fidelity for a tractable implementation; see DESIGN.md.
type segmentKind uint8

const (
	segText segmentKind = iota
	segRuby
)

type segment struct {
	kind  segmentKind
	items []item // segText: a forced-break-free run of itemText items
	ruby  item   // segRuby
}

// splitIntoSegments groups the linearized items at forced-break and
// ruby boundaries.
func splitIntoSegments(items []item) []segment {
	var segs []segment
	var cur []item
	flush := func() {
		if len(cur) > 0 {
			segs = append(segs, segment{kind: segText, items: cur})
			cur = nil
		}
	}
	for _, it := range items {
		switch it.kind {
		case itemBreak:
			flush()
		case itemRuby:
			flush()
			segs = append(segs, segment{kind: segRuby, ruby: it})
		default:
			cur = append(cur, it)
		}
	}
	flush()
	return segs
}

// resolveFaces matches style's family list against the font provider,
// returning the primary face and remaining families as itemization
// fallbacks (§4.2 Match).
func (e *Engine) resolveFaces(style document.Style) (gofont.Face, []gofont.Face, error) {
	var faces []gofont.Face
	for i := range style.FamilyList {
		req := fontmatch.Request{FamilyList: style.FamilyList[i:], Weight: style.Weight, Italic: style.Italic}
		cand, _, err := e.Matcher.Match(req)
		if err != nil {
			if len(faces) > 0 {
				break
			}
			return nil, nil, err
		}
		faces = append(faces, cand.Face)
	}
	if len(faces) == 0 {
		return nil, nil, fontmatch.ErrFontNotFound
	}
	return faces[0], faces[1:], nil
}

// ppemFor converts a style's point size to 26.6 pixels-per-em, given
// the rendering context's dpi field (§6 Context: "screen-equivalent
// ppi = dpi * 96/72").
func ppemFor(fontSizePt float64, dpi uint32) fixed.Int26_6 {
	ppi := float64(dpi) * 96 / 72
	px := fontSizePt * ppi / 72
	return fixed.Int26_6(px * 64)
}
