// SPDX-License-Identifier: Unlicense OR MIT

package text

import (
	"bytes"
	"testing"

	gofont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

func regularFace(t *testing.T) gofont.Face {
	t.Helper()
	face, err := gofont.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		t.Fatalf("parsing test font: %v", err)
	}
	return face
}

func TestShapeProducesGlyphsInClusterOrder(t *testing.T) {
	face := regularFace(t)
	s := NewShaper()
	runs := s.Shape(face, nil, fixed.I(16), LTR, []rune("Hello"))
	if len(runs) == 0 {
		t.Fatalf("expected at least one run")
	}
	var total int
	for _, r := range runs {
		total += len(r.Glyphs)
		if r.Advance <= 0 {
			t.Fatalf("expected positive advance, got %v", r.Advance)
		}
	}
	if total == 0 {
		t.Fatalf("expected at least one glyph")
	}
	// LTR clusters must be non-decreasing across the run.
	last := -1
	for _, r := range runs {
		for _, g := range r.Glyphs {
			if g.ClusterIndex < last {
				t.Fatalf("cluster index went backwards: %d after %d", g.ClusterIndex, last)
			}
			last = g.ClusterIndex
		}
	}
}

func TestShapeCachesIdenticalRequests(t *testing.T) {
	face := regularFace(t)
	s := NewShaper()
	a := s.Shape(face, nil, fixed.I(16), LTR, []rune("cached"))
	b := s.Shape(face, nil, fixed.I(16), LTR, []rune("cached"))
	if len(a) != len(b) {
		t.Fatalf("expected identical cached result, got differing run counts %d vs %d", len(a), len(b))
	}
}

func TestShapeEmptyStringYieldsNoGlyphs(t *testing.T) {
	face := regularFace(t)
	s := NewShaper()
	runs := s.Shape(face, nil, fixed.I(16), LTR, nil)
	for _, r := range runs {
		if len(r.Glyphs) != 0 {
			t.Fatalf("expected no glyphs for empty input")
		}
	}
}
