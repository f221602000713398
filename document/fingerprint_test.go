// SPDX-License-Identifier: Unlicense OR MIT

package document

import (
	"testing"

	"golang.org/x/image/math/fixed"
)

func TestFingerprintStableAcrossCalls(t *testing.T) {
	root := InlineNode{Kind: NodeText, Chars: []rune("hello"), Style: DefaultStyle()}
	a := Fingerprint(root, fixed.I(200), AnchorSpec{})
	b := Fingerprint(root, fixed.I(200), AnchorSpec{})
	if a != b {
		t.Fatalf("expected identical inputs to hash identically")
	}
}

func TestFingerprintIgnoresDocumentPosition(t *testing.T) {
	// Two distinct events with identical text/style/width/anchor should
	// share a cache entry, per SPEC_FULL.md §12.
	root1 := InlineNode{Kind: NodeText, Chars: []rune("same"), Style: DefaultStyle()}
	root2 := InlineNode{Kind: NodeText, Chars: []rune("same"), Style: DefaultStyle()}
	if Fingerprint(root1, fixed.I(100), AnchorSpec{}) != Fingerprint(root2, fixed.I(100), AnchorSpec{}) {
		t.Fatalf("expected structurally identical events to fingerprint identically")
	}
}

func TestFingerprintChangesWithText(t *testing.T) {
	a := Fingerprint(InlineNode{Kind: NodeText, Chars: []rune("abc")}, fixed.I(100), AnchorSpec{})
	b := Fingerprint(InlineNode{Kind: NodeText, Chars: []rune("abd")}, fixed.I(100), AnchorSpec{})
	if a == b {
		t.Fatalf("expected differing text to change the fingerprint")
	}
}

func TestFingerprintChangesWithWidth(t *testing.T) {
	root := InlineNode{Kind: NodeText, Chars: []rune("abc")}
	a := Fingerprint(root, fixed.I(100), AnchorSpec{})
	b := Fingerprint(root, fixed.I(200), AnchorSpec{})
	if a == b {
		t.Fatalf("expected differing width to change the fingerprint")
	}
}

func TestFingerprintChangesWithStyle(t *testing.T) {
	plain := InlineNode{Kind: NodeText, Chars: []rune("abc"), Style: DefaultStyle()}
	bold := plain
	bold.Style.Underline = true
	if Fingerprint(plain, fixed.I(100), AnchorSpec{}) == Fingerprint(bold, fixed.I(100), AnchorSpec{}) {
		t.Fatalf("expected a style change to change the fingerprint")
	}
}

func TestFingerprintRecursesIntoChildren(t *testing.T) {
	withChild := InlineNode{Kind: NodeInline, Children: []InlineNode{
		{Kind: NodeText, Chars: []rune("x")},
	}}
	withoutChild := InlineNode{Kind: NodeInline}
	if Fingerprint(withChild, fixed.I(100), AnchorSpec{}) == Fingerprint(withoutChild, fixed.I(100), AnchorSpec{}) {
		t.Fatalf("expected child content to affect the fingerprint")
	}
}
