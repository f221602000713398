// SPDX-License-Identifier: Unlicense OR MIT

package webvtt

import (
	"testing"

	"github.com/subrandr/subrandr/document"
)

const sampleVTT = `WEBVTT

00:00:01.000 --> 00:00:02.500
Hello <b>world</b>

00:00:05.000 --> 00:00:07.000 position:30% line:10% align:start
Second cue
with a line break
`

func TestSniffRequiresWebVTTSignature(t *testing.T) {
	if !Sniff([]byte(sampleVTT)) {
		t.Fatalf("expected Sniff to recognize the WEBVTT signature")
	}
	if Sniff([]byte("<timedtext>")) {
		t.Fatalf("expected Sniff to reject a non-WebVTT document")
	}
}

func TestParseProducesOneEventPerCue(t *testing.T) {
	doc, err := Parse([]byte(sampleVTT), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Events) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(doc.Events))
	}
}

func TestParseResolvesCueTiming(t *testing.T) {
	doc, err := Parse([]byte(sampleVTT), nil)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Events[0].TStartMS != 1000 || doc.Events[0].TEndMS != 2500 {
		t.Fatalf("got [%d, %d)", doc.Events[0].TStartMS, doc.Events[0].TEndMS)
	}
}

func TestParseHonorsBoldMarkup(t *testing.T) {
	doc, err := Parse([]byte(sampleVTT), nil)
	if err != nil {
		t.Fatal(err)
	}
	children := doc.Events[0].Root.Children
	if len(children) != 2 {
		t.Fatalf("expected 2 text runs (plain + bold), got %d", len(children))
	}
	if string(children[0].Chars) != "Hello " {
		t.Fatalf("got %q", string(children[0].Chars))
	}
	if string(children[1].Chars) != "world" || children[1].Style.Weight == 0 {
		t.Fatalf("expected the second run to be the bold 'world' span, got %q weight=%d",
			string(children[1].Chars), children[1].Style.Weight)
	}
}

func TestParseHonorsCueSettings(t *testing.T) {
	doc, err := Parse([]byte(sampleVTT), nil)
	if err != nil {
		t.Fatal(err)
	}
	a := doc.Events[1].Anchor
	if a.XPct != 0.3 || a.YPct != 0.1 || a.HAlign != document.HStart {
		t.Fatalf("got %+v", a)
	}
}

func TestParseSplitsLineBreaks(t *testing.T) {
	doc, err := Parse([]byte(sampleVTT), nil)
	if err != nil {
		t.Fatal(err)
	}
	children := doc.Events[1].Root.Children
	foundBreak := false
	for _, c := range children {
		if c.Kind == document.NodeLineBreak {
			foundBreak = true
		}
	}
	if !foundBreak {
		t.Fatalf("expected a forced line break node between cue lines")
	}
}

func TestParseRejectsMissingSignature(t *testing.T) {
	if _, err := Parse([]byte("not a vtt file"), nil); err == nil {
		t.Fatalf("expected an error without the WEBVTT signature")
	}
}

func TestParseSetsFormatAndFlags(t *testing.T) {
	doc, err := Parse([]byte(sampleVTT), nil)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != document.FormatWebVTT {
		t.Fatalf("expected FormatWebVTT")
	}
	if !doc.Flags.TightBackgroundBox {
		t.Fatalf("expected WebVTT's tight-background-box flag to be set")
	}
}
