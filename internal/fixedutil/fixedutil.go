// SPDX-License-Identifier: Unlicense OR MIT

// Package fixedutil provides overflow checking for 26.6 fixed-point
// values derived from caller-supplied sizes (document coordinates,
// anchor rectangles, buffer dimensions). The document model's own
// invariant (§3: magnitudes must stay within ±2²⁵ units so sums of a
// handful of them don't overflow an Int26_6) is enforced here rather
// than at every call site.
package fixedutil

import "golang.org/x/image/math/fixed"

// Limit is the largest magnitude, in 26.6 units, that a single
// caller-supplied coordinate may have.
const Limit = 1 << 25

// InRange reports whether v is within [-Limit, Limit].
func InRange(v fixed.Int26_6) bool {
	return v >= -Limit && v <= Limit
}

// CheckFloat converts a float32 pixel value to fixed.Int26_6, reporting
// ok=false instead of silently wrapping if the result would fall
// outside InRange.
func CheckFloat(px float32) (fixed.Int26_6, bool) {
	v := fixed.Int26_6(px * 64)
	if float32(v)/64 != px {
		// Rounding already lost precision at this magnitude; still
		// usable as long as it's in range.
	}
	return v, InRange(v)
}

// Add adds a and b, reporting ok=false if the result leaves InRange.
func Add(a, b fixed.Int26_6) (fixed.Int26_6, bool) {
	sum := a + b
	return sum, InRange(sum)
}

// CheckRect reports whether every corner of r is within InRange.
func CheckRect(r fixed.Rectangle26_6) bool {
	return InRange(r.Min.X) && InRange(r.Min.Y) && InRange(r.Max.X) && InRange(r.Max.Y)
}
