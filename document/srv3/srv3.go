// SPDX-License-Identifier: Unlicense OR MIT

// Package srv3 parses YouTube's SRV3 timed-text XML format into a
// document.Document. It is an out-of-scope collaborator per spec.md
// §1 ("format-specific parsers... We specify only the interfaces the
// core consumes from these"), kept narrow: explicit pen/window
// positioning and styling attributes are honored, but SRV3's
// auto-generated-caption heuristics are not (§9 Open Question a,
// resolved to NOT implement; see DESIGN.md).
package srv3

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/document"
	"github.com/subrandr/subrandr/fontprovider"
)

// Sniff reports whether data looks like an SRV3 document, per §6's
// magic-byte probing contract ("SRV3 magic: leading <timedtext").
func Sniff(data []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(string(trimBOM(data))), "<timedtext")
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

type xmlTimedText struct {
	XMLName xml.Name  `xml:"timedtext"`
	Heads   []xmlPen  `xml:"head>pen"`
	WinPos  []xmlWin  `xml:"head>wp"`
	Body    xmlBody   `xml:"body"`
}

type xmlPen struct {
	ID            string `xml:"id,attr"`
	Bold          int    `xml:"b,attr"`
	Italic        int    `xml:"i,attr"`
	Underline     int    `xml:"u,attr"`
	ForeColor     string `xml:"fc,attr"`
	BackColor     string `xml:"bc,attr"`
	EdgeStyle     int    `xml:"et,attr"`
	EdgeColor     string `xml:"ec,attr"`
	FontSizePct   int    `xml:"sz,attr"`
}

type xmlWin struct {
	ID string  `xml:"id,attr"`
	AP int     `xml:"ap,attr"`
	AH float64 `xml:"ah,attr"`
	AV float64 `xml:"av,attr"`
}

type xmlBody struct {
	Paragraphs []xmlParagraph `xml:"p"`
}

type xmlParagraph struct {
	StartMS  int64      `xml:"t,attr"`
	DurMS    int64      `xml:"d,attr"`
	PenID    string     `xml:"p,attr"`
	WinID    string     `xml:"wp,attr"`
	Spans    []xmlSpan  `xml:"s"`
	CharData string     `xml:",chardata"`
}

type xmlSpan struct {
	PenID    string `xml:"p,attr"`
	CharData string `xml:",chardata"`
}

// Parse decodes an SRV3 document. fonts is stored in the resulting
// Document's Fonts field; srv3 itself never queries it.
func Parse(data []byte, fonts fontprovider.Provider) (*document.Document, error) {
	var tt xmlTimedText
	if err := xml.Unmarshal(trimBOM(data), &tt); err != nil {
		return nil, fmt.Errorf("srv3: %w", err)
	}

	pens := make(map[string]xmlPen, len(tt.Heads))
	for _, p := range tt.Heads {
		pens[p.ID] = p
	}
	wins := make(map[string]xmlWin, len(tt.WinPos))
	for _, w := range tt.WinPos {
		wins[w.ID] = w
	}

	doc := &document.Document{
		Format: document.FormatSRV3,
		Flags: document.Flags{
			DecorationsAfterGlyphs: true,
		},
		Fonts: fonts,
	}

	base := document.DefaultStyle()
	for _, p := range tt.Body.Paragraphs {
		style := base
		if pen, ok := pens[p.PenID]; ok {
			applyPen(&style, pen)
		}

		var children []document.InlineNode
		if len(p.Spans) == 0 {
			children = append(children, document.InlineNode{
				Kind:  document.NodeText,
				Chars: []rune(unescapeBreaks(p.CharData)),
				Style: style,
			})
		} else {
			for _, s := range p.Spans {
				spanStyle := style
				if pen, ok := pens[s.PenID]; ok {
					applyPen(&spanStyle, pen)
				}
				children = append(children, document.InlineNode{
					Kind:  document.NodeText,
					Chars: []rune(unescapeBreaks(s.CharData)),
					Style: spanStyle,
				})
			}
		}

		anchor := document.AnchorSpec{
			HAlign: document.HCenter,
			VAlign: document.VBottom,
			XPct:   0.5,
			YPct:   0.9,
		}
		if win, ok := wins[p.WinID]; ok {
			anchor = anchorFromWindow(win)
		}

		doc.Events = append(doc.Events, document.Event{
			TStartMS: p.StartMS,
			TEndMS:   p.StartMS + p.DurMS,
			Root:     document.InlineNode{Kind: document.NodeInline, Children: children, Style: style},
			Anchor:   anchor,
		})
	}

	return doc, nil
}

func applyPen(style *document.Style, pen xmlPen) {
	style.Italic = pen.Italic != 0
	style.Underline = pen.Underline != 0
	if pen.Bold != 0 {
		style.Weight = 700
	}
	if c, ok := parseSRV3Color(pen.ForeColor); ok {
		style.Color = c
	}
	if c, ok := parseSRV3Color(pen.BackColor); ok {
		style.Background = c
	}
	if pen.EdgeStyle != 0 {
		switch pen.EdgeStyle {
		case 1:
			style.EdgeStyle = document.EdgeDropShadow
		case 2:
			style.EdgeStyle = document.EdgeRaised
		case 3:
			style.EdgeStyle = document.EdgeDepressed
		case 4:
			style.EdgeStyle = document.EdgeOutline
		}
		if c, ok := parseSRV3Color(pen.EdgeColor); ok {
			style.EdgeColor = c
		}
		style.EdgeBlur = fixed.I(1) / 2
	}
	if pen.FontSizePct != 0 {
		style.FontSizePt = base18Pt(pen.FontSizePct)
	}
}

func base18Pt(pct int) float64 {
	return 18 * float64(pct) / 100
}

// parseSRV3Color parses SRV3's "#RRGGBB" or "#RRGGBBAA" pen colors.
func parseSRV3Color(s string) (document.Color, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return document.Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return document.Color{}, false
	}
	if len(s) == 6 {
		return document.Color{
			R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255,
		}, true
	}
	return document.Color{
		R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v),
	}, true
}

// anchorFromWindow maps an SRV3 window-position record's percentage
// anchor-point/horizontal/vertical fields onto AnchorSpec. ap encodes
// a 3x3 grid (0=top-left .. 8=bottom-right), matching SRV3's own
// anchor-point numbering.
func anchorFromWindow(w xmlWin) document.AnchorSpec {
	col := w.AP % 3
	row := w.AP / 3
	a := document.AnchorSpec{XPct: w.AH / 100, YPct: w.AV / 100, WidthPct: 1}
	switch col {
	case 0:
		a.HAlign = document.HStart
	case 1:
		a.HAlign = document.HCenter
	case 2:
		a.HAlign = document.HEnd
	}
	switch row {
	case 0:
		a.VAlign = document.VTop
	case 1:
		a.VAlign = document.VMiddle
	case 2:
		a.VAlign = document.VBottom
	}
	return a
}

// unescapeBreaks turns SRV3's literal "\n" line-break marker (used in
// place of a nested element in some exports) into a real newline. The
// inline linearizer has no "pre" white-space mode: it collapses an
// embedded newline like any other whitespace and never turns it into a
// forced break.
func unescapeBreaks(s string) string {
	return strings.ReplaceAll(s, "\\n", "\n")
}
