// SPDX-License-Identifier: Unlicense OR MIT

package inline

import (
	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/document"
)

// decorate derives underline/strikethrough rectangles from a line's
// runs (§4.4 step 5: "axis-aligned rectangles at positions derived from
// the dominant font's underline metrics"). go-text's font.Face exposes
// no underline-metrics accessor exercised anywhere in the retrieval
// corpus, so positions are derived from run ascent/descent instead of
// font-reported underline position/thickness; see DESIGN.md.
func decorate(line *LineFragment) {
	for _, r := range line.Runs {
		width := r.Face.Advance
		if width <= 0 {
			continue
		}
		thickness := r.Face.Descent / 8
		if thickness < fixed.Int26_6(64) {
			thickness = 64 // floor at one device pixel
		}
		if r.Underline {
			line.Decorations = append(line.Decorations, Decoration{
				Kind:          DecorationUnderline,
				X:             r.XOffset,
				Width:         width,
				Thickness:     thickness,
				OffsetFromTop: line.Ascent + r.Face.Descent/3 + r.YOffset,
				Color:         r.Color,
			})
		}
		if r.Strikethrough {
			line.Decorations = append(line.Decorations, Decoration{
				Kind:          DecorationStrikethrough,
				X:             r.XOffset,
				Width:         width,
				Thickness:     thickness,
				OffsetFromTop: line.Ascent/2 + r.YOffset,
				Color:         r.Color,
			})
		}
	}
}

// background computes a line's background rectangle from style, padded
// per format flags (§4.4 step 1, §9's "format-variant knobs").
func background(line *LineFragment, style document.Style, flags document.Flags) {
	if style.Background.A == 0 {
		return
	}
	pad := line.Descent / 2
	if flags.TightBackgroundBox {
		pad = 0
	}
	line.Background = &Rect{
		X:      -pad,
		Y:      -(line.Ascent + pad),
		Width:  line.Width + 2*pad,
		Height: line.Ascent + line.Descent + 2*pad,
		Color:  style.Background,
	}
}
