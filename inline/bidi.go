// SPDX-License-Identifier: Unlicense OR MIT

package inline

import (
	gobidi "golang.org/x/text/unicode/bidi"

	"github.com/subrandr/subrandr/text"
)

// bidiRun is a maximal-length run of uniform bidi direction within a
// paragraph's full text, in rune offsets.
type bidiRun struct {
	start, end int
	dir        text.Direction
}

// resolveBidi runs the Unicode Bidirectional Algorithm over runes with
// the given paragraph base direction, adapted from gotext.go's
// splitBidi but operating directly on a rune slice (rather than a
// shaping.Input) since the inline engine needs run boundaries before
// it has decided which font faces apply to each sub-range (§4.3 step 2,
// run before step 3's script/style subdivision).
func resolveBidi(runes []rune, base text.Direction) []bidiRun {
	if len(runes) == 0 {
		return nil
	}
	def := gobidi.LeftToRight
	if base == text.RTL {
		def = gobidi.RightToLeft
	}
	var p gobidi.Paragraph
	p.SetString(string(runes), gobidi.DefaultDirection(def))
	ordering, err := p.Order()
	if err != nil {
		return []bidiRun{{start: 0, end: len(runes), dir: base}}
	}
	runs := make([]bidiRun, 0, ordering.NumRuns())
	pos := 0
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		_, endRune := run.Pos()
		dir := text.LTR
		if run.Direction() == gobidi.RightToLeft {
			dir = text.RTL
		}
		runs = append(runs, bidiRun{start: pos, end: endRune + 1, dir: dir})
		pos = endRune + 1
	}
	return runs
}

// paragraphDirection inspects the first strongly-directional rune to
// infer a base direction, per §4.3 step 2 ("paragraph base direction
// inferred from the first strong character").
func paragraphDirection(runes []rune) text.Direction {
	for _, r := range runes {
		props, _ := gobidi.LookupRune(r)
		switch props.Class() {
		case gobidi.L:
			return text.LTR
		case gobidi.R, gobidi.AL:
			return text.RTL
		}
	}
	return text.LTR
}
