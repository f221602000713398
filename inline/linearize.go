// SPDX-License-Identifier: Unlicense OR MIT

package inline

import (
	"unicode"

	"github.com/subrandr/subrandr/document"
)

// itemKind discriminates the flattened sequence linearize produces
// (§4.3 step 1).
type itemKind uint8

const (
	itemText itemKind = iota
	itemBreak
	itemRuby
)

// item is one entry of the linearized, style-resolved sequence. Ruby
// items carry their own sub-trees rather than flattened runes, since
// ruby base/annotation are laid out as independent inline boxes
// (§4.3 step 8).
type item struct {
	kind  itemKind
	runes []rune
	style document.Style

	rubyBase       []document.InlineNode
	rubyAnnotation []document.InlineNode
	rubyMode       document.RubyMode
}

// linearize walks root in logical order, resolving inherited styles and
// collapsing whitespace per the CSS white-space:normal rules described
// in §4.3's edge cases: tabs become spaces and runs of whitespace
// collapse to one space. Collapsing here only merges runs; layoutText
// later trims leading/trailing spaces from each forced-break-free
// segment before wrapping it. Spaces at the ends of lines produced by
// wrapping are not trimmed.
func linearize(root document.InlineNode, parentStyle document.Style) []item {
	style := document.Inherit(parentStyle, root.Style)
	var out []item
	switch root.Kind {
	case document.NodeText:
		out = append(out, item{kind: itemText, runes: collapseWhitespace(root.Chars), style: style})
	case document.NodeLineBreak:
		out = append(out, item{kind: itemBreak, style: style})
	case document.NodeInline:
		for _, c := range root.Children {
			out = append(out, linearize(c, style)...)
		}
	case document.NodeRuby:
		out = append(out, item{
			kind:           itemRuby,
			rubyBase:       root.Children,
			rubyAnnotation: root.Annotation,
			rubyMode:       style.RubyMode,
			style:          style,
		})
	}
	return out
}

// collapseWhitespace implements the interior portion of CSS
// white-space:normal: every tab becomes a space, and every maximal run
// of whitespace becomes a single space.
func collapseWhitespace(in []rune) []rune {
	out := make([]rune, 0, len(in))
	inRun := false
	for _, r := range in {
		if r == '\t' {
			r = ' '
		}
		if unicode.IsSpace(r) {
			if inRun {
				continue
			}
			inRun = true
			out = append(out, ' ')
			continue
		}
		inRun = false
		out = append(out, r)
	}
	return out
}

// trimEdges removes leading/trailing collapsed spaces from a line's
// text, as CSS inline layout does at line boundaries.
func trimEdges(runes []rune) []rune {
	start := 0
	for start < len(runes) && runes[start] == ' ' {
		start++
	}
	end := len(runes)
	for end > start && runes[end-1] == ' ' {
		end--
	}
	return runes[start:end]
}
