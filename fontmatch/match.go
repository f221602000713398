// SPDX-License-Identifier: Unlicense OR MIT

// Package fontmatch implements §4.2's Match(style) -> FontFaceId: scoring
// a provider's candidate faces against a requested (family list, weight,
// italic) and falling back to a process-wide last-resort face.
//
// The scoring rules mirror gio's text.closestFont/weightDistance
// (gotext.go), generalized from "closest weight within an exact
// typeface" to the full italic-then-weight cascade described in §4.2.
package fontmatch

import (
	"errors"
	"fmt"

	"github.com/subrandr/subrandr/fontprovider"
)

// ErrFontNotFound is returned when no family in the request matches any
// candidate and no last-resort face has been registered.
var ErrFontNotFound = errors.New("fontmatch: no matching font and no last-resort face available")

// Request describes the face a layout run needs.
type Request struct {
	FamilyList []string
	Weight     fontprovider.Weight
	Italic     bool
}

// Matcher resolves Requests to concrete faces using a Provider, with
// caching disabled here (the shaping layer caches by face identity, per
// §4.2's cache key which already includes face_id).
type Matcher struct {
	provider   fontprovider.Provider
	lastResort *fontprovider.Candidate
}

// New builds a Matcher over provider. lastResort, if non-nil, is returned
// when no family in a request's FamilyList has any candidates.
func New(provider fontprovider.Provider, lastResort *fontprovider.Candidate) *Matcher {
	return &Matcher{provider: provider, lastResort: lastResort}
}

// Match implements the §4.2 selection cascade: try each family in order;
// within a family's candidates, prefer an italic match when italic was
// requested (falling back to non-italic with a FellBackFromItalic flag),
// then minimize weight distance.
func (m *Matcher) Match(req Request) (fontprovider.Candidate, bool, error) {
	for _, family := range req.FamilyList {
		candidates := m.provider.Query(family)
		if len(candidates) == 0 {
			continue
		}
		best, fellBack, ok := bestOf(candidates, req)
		if ok {
			return best, fellBack, nil
		}
	}
	if m.lastResort != nil {
		return *m.lastResort, req.Italic, nil
	}
	return fontprovider.Candidate{}, false, fmt.Errorf("fontmatch: family list %v: %w", req.FamilyList, ErrFontNotFound)
}

// bestOf scores the candidates of a single matched family.
func bestOf(candidates []fontprovider.Candidate, req Request) (best fontprovider.Candidate, fellBackFromItalic bool, ok bool) {
	wantItalic := req.Italic

	var haveItalicMatch bool
	for _, c := range candidates {
		italicMatch := (c.Style == fontprovider.Italic) == wantItalic
		if !ok {
			best, ok = c, true
			haveItalicMatch = italicMatch
			continue
		}
		switch {
		case italicMatch && !haveItalicMatch:
			// Upgrade: this candidate satisfies the italic request and
			// the current best does not.
			best, haveItalicMatch = c, true
		case italicMatch == haveItalicMatch:
			if weightDistance(req.Weight, c.Weight) < weightDistance(req.Weight, best.Weight) {
				best = c
			}
		}
	}
	fellBackFromItalic = wantItalic && !haveItalicMatch
	return best, fellBackFromItalic, ok
}

// weightDistance mirrors gio's text.weightDistance: absolute distance in
// CSS weight units. The +400 added to both weights cancels out in the
// difference and does not change the result.
func weightDistance(a, b fontprovider.Weight) int {
	da, db := int(a)+400, int(b)+400
	d := da - db
	if d < 0 {
		return -d
	}
	return d
}
