// SPDX-License-Identifier: Unlicense OR MIT

package text

import (
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/shaping"
)

// RunDirection reports whether a go-text output run flows RTL, for
// converting shaping.Output.Direction back to our Direction type.
func RunDirection(out shaping.Output) Direction {
	if out.Direction == di.DirectionRTL {
		return RTL
	}
	return LTR
}

// ToRun converts a single shaping.Output into our Run/Glyph
// representation, assigning it a face index through the owning Shaper so
// GlyphIDs remain stable across calls.
func (s *Shaper) ToRun(out shaping.Output) Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toRun(out, s.indexOf(out.Face), RunDirection(out))
}
