// SPDX-License-Identifier: Unlicense OR MIT

package document

import (
	"encoding/binary"
	"hash/maphash"

	"golang.org/x/image/math/fixed"
)

// fingerprintSeed is process-wide: two fingerprints are only ever
// compared within one process's cache, so a per-process random seed
// is sufficient and avoids making the hash stable (and therefore
// possibly depended on) across runs, matching how the teacher's own
// glyph-path cache seeds its maphash.Hash in text/lru.go.
var fingerprintSeed = maphash.MakeSeed()

// Fingerprint computes a structural hash of an event's node tree,
// target width, and anchor (§4.7 step 2, SPEC_FULL.md §12: "per-box
// layout cache fingerprinting... a structural hash over the box's
// InlineNode subtree, target width, and anchor, not just an
// identity/pointer key"). Two events with identical text and style
// but different indices in the document hash identically, so the
// layout cache can share entries between them.
func Fingerprint(root InlineNode, widthPx fixed.Int26_6, anchor AnchorSpec) uint64 {
	var h maphash.Hash
	h.SetSeed(fingerprintSeed)
	var b [8]byte
	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		h.Write(b[:])
	}
	putInt(int64(widthPx))
	putInt(int64(anchor.HAlign))
	putInt(int64(anchor.VAlign))
	h.Write([]byte(fmtFloat(anchor.XPct)))
	h.Write([]byte(fmtFloat(anchor.YPct)))
	h.Write([]byte(fmtFloat(anchor.WidthPct)))
	fingerprintNode(&h, root)
	return h.Sum64()
}

func fingerprintNode(h *maphash.Hash, n InlineNode) {
	var b [8]byte
	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		h.Write(b[:])
	}
	putInt(int64(n.Kind))
	h.WriteString(string(n.Chars))
	fingerprintStyle(h, n.Style)
	for _, c := range n.Children {
		fingerprintNode(h, c)
	}
	for _, a := range n.Annotation {
		fingerprintNode(h, a)
	}
}

func fingerprintStyle(h *maphash.Hash, s Style) {
	var b [8]byte
	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		h.Write(b[:])
	}
	for _, f := range s.FamilyList {
		h.WriteString(f)
	}
	putInt(int64(s.Weight))
	if s.Italic {
		putInt(1)
	}
	h.WriteString(fmtFloat(s.FontSizePt))
	putInt(int64(colorBits(s.Color)))
	putInt(int64(colorBits(s.Background)))
	putInt(int64(s.EdgeStyle))
	putInt(int64(colorBits(s.EdgeColor)))
	putInt(int64(s.EdgeBlur))
	if s.Underline {
		putInt(1)
	}
	if s.Strikethrough {
		putInt(1)
	}
	putInt(int64(s.LetterSpacing))
	putInt(int64(s.RubyMode))
}

func colorBits(c Color) uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// fmtFloat packs f into a fixed-point byte string for hashing. A
// structural hash only needs a stable representation, not a
// human-readable one, so this avoids strconv's formatting cost.
func fmtFloat(f float64) string {
	bits := int64(f * (1 << 20))
	buf := [8]byte{
		byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24),
		byte(bits >> 32), byte(bits >> 40), byte(bits >> 48), byte(bits >> 56),
	}
	return string(buf[:])
}
