// SPDX-License-Identifier: Unlicense OR MIT

package inline

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/document"
	"github.com/subrandr/subrandr/fontmatch"
	"github.com/subrandr/subrandr/fontprovider"
	"github.com/subrandr/subrandr/text"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	provider := fontprovider.NewMemoryProvider()
	if err := provider.AddFromMemory(goregular.TTF); err != nil {
		t.Fatalf("loading test font: %v", err)
	}
	matcher := fontmatch.New(provider, nil)
	return NewEngine(text.NewShaper(), matcher, 96)
}

func plainStyle() document.Style {
	s := document.DefaultStyle()
	s.FamilyList = []string{"Go"}
	return s
}

func textNode(s string, style document.Style) document.InlineNode {
	return document.InlineNode{Kind: document.NodeText, Chars: []rune(s), Style: style}
}

func TestLayoutSingleLineProducesRuns(t *testing.T) {
	e := testEngine(t)
	box := Box{
		Root:    textNode("Hello, world", plainStyle()),
		WidthPx: fixed.I(1000),
	}
	res, err := e.Layout(box)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(res.Lines))
	}
	line := res.Lines[0]
	if len(line.Runs) == 0 {
		t.Fatalf("expected at least one glyph run")
	}
	if line.Width <= 0 {
		t.Fatalf("expected positive line width, got %v", line.Width)
	}
	if res.Bounds.Width != line.Width {
		t.Fatalf("bounds width %v does not match only line's width %v", res.Bounds.Width, line.Width)
	}
}

func TestLayoutWrapsAtNarrowWidth(t *testing.T) {
	e := testEngine(t)
	box := Box{
		Root:    textNode("the quick brown fox jumps over the lazy dog", plainStyle()),
		WidthPx: fixed.I(200),
	}
	res, err := e.Layout(box)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Lines) < 2 {
		t.Fatalf("expected the text to wrap across multiple lines at a narrow width, got %d", len(res.Lines))
	}
	for i, line := range res.Lines {
		if line.Width > fixed.I(200) {
			t.Fatalf("line %d width %v exceeds the requested max width", i, line.Width)
		}
	}
}

func TestLayoutForcedLineBreak(t *testing.T) {
	e := testEngine(t)
	style := plainStyle()
	root := document.InlineNode{
		Kind: document.NodeInline,
		Children: []document.InlineNode{
			textNode("first", style),
			{Kind: document.NodeLineBreak, Style: style},
			textNode("second", style),
		},
		Style: style,
	}
	res, err := e.Layout(Box{Root: root, WidthPx: fixed.I(1000)})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Lines) != 2 {
		t.Fatalf("got %d lines, want 2 (forced break)", len(res.Lines))
	}
	if res.Lines[1].OriginY <= res.Lines[0].OriginY {
		t.Fatalf("expected the second line's baseline to sit below the first")
	}
}

func TestLayoutUnderlineProducesDecoration(t *testing.T) {
	e := testEngine(t)
	style := plainStyle()
	style.Underline = true
	res, err := e.Layout(Box{Root: textNode("underlined", style), WidthPx: fixed.I(1000)})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(res.Lines))
	}
	var sawUnderline bool
	for _, d := range res.Lines[0].Decorations {
		if d.Kind == DecorationUnderline {
			sawUnderline = true
		}
	}
	if !sawUnderline {
		t.Fatalf("expected an underline decoration")
	}
}

func TestLayoutRubyPlacesAnnotationAboveBase(t *testing.T) {
	e := testEngine(t)
	style := plainStyle()
	style.RubyMode = document.RubyOver
	root := document.InlineNode{
		Kind:       document.NodeRuby,
		Children:   []document.InlineNode{textNode("base", style)},
		Annotation: []document.InlineNode{textNode("an", style)},
		Style:      style,
	}
	res, err := e.Layout(Box{Root: root, WidthPx: fixed.I(1000)})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Lines) == 0 {
		t.Fatalf("expected at least one line for the ruby segment")
	}
	var sawNegativeOffset bool
	for _, r := range res.Lines[0].Runs {
		if r.YOffset < 0 {
			sawNegativeOffset = true
		}
	}
	if !sawNegativeOffset {
		t.Fatalf("expected an annotation run raised above the baseline via a negative YOffset")
	}
}
