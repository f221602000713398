// SPDX-License-Identifier: Unlicense OR MIT

package paint

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/document"
	"github.com/subrandr/subrandr/fontmatch"
	"github.com/subrandr/subrandr/fontprovider"
	"github.com/subrandr/subrandr/inline"
	"github.com/subrandr/subrandr/raster"
	"github.com/subrandr/subrandr/text"
)

func testSetup(t *testing.T) (*inline.Engine, *Painter) {
	t.Helper()
	provider := fontprovider.NewMemoryProvider()
	if err := provider.AddFromMemory(goregular.TTF); err != nil {
		t.Fatalf("loading test font: %v", err)
	}
	matcher := fontmatch.New(provider, nil)
	shaper := text.NewShaper()
	engine := inline.NewEngine(shaper, matcher, 96)
	painter := NewPainter(text.NewGlyphCache(1<<20), 96)
	return engine, painter
}

func plainStyle() document.Style {
	s := document.DefaultStyle()
	s.FamilyList = []string{"Go"}
	s.FontSizePt = 24
	return s
}

func textNode(str string, style document.Style) document.InlineNode {
	return document.InlineNode{Kind: document.NodeText, Chars: []rune(str), Style: style}
}

func countOpaque(buf *raster.Buffer) int {
	n := 0
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			p := buf.Pix[y*buf.Stride+x*4 : y*buf.Stride+x*4+4]
			if p[3] != 0 {
				n++
			}
		}
	}
	return n
}

func TestPaintGlyphBodyTouchesPixels(t *testing.T) {
	engine, painter := testSetup(t)
	res, err := engine.Layout(inline.Box{Root: textNode("Hi", plainStyle()), WidthPx: fixed.I(200)})
	if err != nil {
		t.Fatal(err)
	}
	buf := &raster.Buffer{Pix: make([]byte, 200*100*4), Stride: 200 * 4, Width: 200, Height: 100}
	painter.Paint(buf, res, fixed.I(10), fixed.I(50), document.Flags{}, raster.Rect{X0: 0, Y0: 0, X1: 200, Y1: 100})
	if countOpaque(buf) == 0 {
		t.Fatalf("expected the glyph body pass to touch at least one pixel")
	}
}

func TestPaintBackgroundFillsBehindText(t *testing.T) {
	engine, painter := testSetup(t)
	style := plainStyle()
	style.Background = document.Color{R: 10, G: 20, B: 30, A: 255}
	res, err := engine.Layout(inline.Box{Root: textNode("Hi", style), WidthPx: fixed.I(200)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Lines[0].Background == nil {
		t.Fatalf("expected a background rect to be computed for a styled background color")
	}
	buf := &raster.Buffer{Pix: make([]byte, 200*100*4), Stride: 200 * 4, Width: 200, Height: 100}
	painter.Paint(buf, res, fixed.I(10), fixed.I(50), document.Flags{}, raster.Rect{X0: 0, Y0: 0, X1: 200, Y1: 100})
	// A pixel just left of the text origin, inside the padded background
	// box but outside any glyph, should carry the background color.
	p := buf.Pix[50*buf.Stride+9*4 : 50*buf.Stride+9*4+4]
	if p[3] == 0 {
		t.Fatalf("expected the background fill to reach a pixel outside the glyph shapes")
	}
}

func TestPaintClipRestrictsOutput(t *testing.T) {
	engine, painter := testSetup(t)
	res, err := engine.Layout(inline.Box{Root: textNode("Hi", plainStyle()), WidthPx: fixed.I(200)})
	if err != nil {
		t.Fatal(err)
	}
	buf := &raster.Buffer{Pix: make([]byte, 200*100*4), Stride: 200 * 4, Width: 200, Height: 100}
	// Clip to a small rectangle far from the text; nothing should paint.
	painter.Paint(buf, res, fixed.I(10), fixed.I(50), document.Flags{}, raster.Rect{X0: 190, Y0: 90, X1: 200, Y1: 100})
	if countOpaque(buf) != 0 {
		t.Fatalf("expected painting outside the clip rect to be suppressed")
	}
}
