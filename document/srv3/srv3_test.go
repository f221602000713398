// SPDX-License-Identifier: Unlicense OR MIT

package srv3

import (
	"testing"

	"github.com/subrandr/subrandr/document"
)

const sampleDoc = `<?xml version="1.0" encoding="utf-8" ?>
<timedtext format="3">
<head>
<pen id="1" b="1" fc="#FF0000"/>
<wp id="1" ap="7" ah="50" av="90"/>
</head>
<body>
<p t="1000" d="2000" p="1" wp="1">hello world</p>
<p t="5000" d="1500">no pen here</p>
</body>
</timedtext>`

func TestSniffRecognizesLeadingTimedtext(t *testing.T) {
	if !Sniff([]byte(sampleDoc)) {
		t.Fatalf("expected Sniff to recognize a <timedtext> document")
	}
	if Sniff([]byte("WEBVTT\n\n")) {
		t.Fatalf("expected Sniff to reject a non-SRV3 document")
	}
}

func TestParseProducesOneEventPerParagraph(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(doc.Events))
	}
}

func TestParseResolvesTimingFromAttributes(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), nil)
	if err != nil {
		t.Fatal(err)
	}
	ev := doc.Events[0]
	if ev.TStartMS != 1000 || ev.TEndMS != 3000 {
		t.Fatalf("expected [1000, 3000), got [%d, %d)", ev.TStartMS, ev.TEndMS)
	}
}

func TestParseAppliesPenStyling(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), nil)
	if err != nil {
		t.Fatal(err)
	}
	style := doc.Events[0].Root.Style
	if style.Weight != 700 {
		t.Fatalf("expected bold pen to set weight 700, got %d", style.Weight)
	}
	if style.Color != (document.Color{R: 0xFF, A: 0xFF}) {
		t.Fatalf("expected pen fc to set the text color, got %+v", style.Color)
	}
}

func TestParseDefaultsStyleWithoutPenReference(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), nil)
	if err != nil {
		t.Fatal(err)
	}
	style := doc.Events[1].Root.Style
	if style.Weight == 700 {
		t.Fatalf("expected the second paragraph's default style to not be bold")
	}
}

func TestParseHonorsWindowAnchor(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), nil)
	if err != nil {
		t.Fatal(err)
	}
	a := doc.Events[0].Anchor
	if a.XPct != 0.5 || a.YPct != 0.9 {
		t.Fatalf("expected the wp anchor percentages to carry through, got %+v", a)
	}
}

func TestParseRejectsMalformedXML(t *testing.T) {
	if _, err := Parse([]byte("<timedtext><body><p>unterminated"), nil); err == nil {
		t.Fatalf("expected an error for malformed XML")
	}
}

func TestParseSetsFormatAndFlags(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), nil)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != document.FormatSRV3 {
		t.Fatalf("expected FormatSRV3")
	}
	if !doc.Flags.DecorationsAfterGlyphs {
		t.Fatalf("expected SRV3's decorations-after-glyphs flag to be set")
	}
}
