package text

import (
	"sync"

	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/exp/slices"
	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/cache"
)

// Shaper shapes itemized text runs into glyphs, memoizing results by the
// §4.2 cache key: (face_id, size, variation, text, script, direction,
// features). variation/features are folded into the key implicitly
// because the caller selects which Face to pass in; subrandr does not
// expose variable-font axis selection, so the cache key omits a
// dedicated variation field.
type Shaper struct {
	mu     sync.Mutex
	hb     shaping.HarfbuzzShaper
	cache  *cache.LRU[shapeKey, []Run]
	faces  []gofont.Face
	index  map[gofont.Face]int

	splitScratch1, splitScratch2 []shaping.Input
}

type shapeKey struct {
	faceIdx   int
	ppem      fixed.Int26_6
	text      string
	direction Direction
}

// NewShaper constructs an empty shaper. Faces are registered lazily on
// first use via indexOf.
func NewShaper() *Shaper {
	s := &Shaper{
		cache: cache.New[shapeKey, []Run](4096, nil),
		index: make(map[gofont.Face]int),
	}
	s.hb.SetFontCacheSize(32)
	return s
}

func (s *Shaper) indexOf(f gofont.Face) int {
	if idx, ok := s.index[f]; ok {
		return idx
	}
	idx := len(s.faces)
	s.faces = append(s.faces, f)
	s.index[f] = idx
	return idx
}

// Shape shapes a single-direction run of text against face, itemizing
// internally by script and font coverage (§4.2's itemization fallback:
// "the run is split around a tofu glyph placeholder and the uncovered
// span is re-matched against the next family"). fallbacks lists
// additional faces to retry uncovered spans against, in priority order.
func (s *Shaper) Shape(face gofont.Face, fallbacks []gofont.Face, ppem fixed.Int26_6, dir Direction, runes []rune) []Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	faceIdx := s.indexOf(face)
	key := shapeKey{faceIdx: faceIdx, ppem: ppem, text: string(runes), direction: dir}
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	outs := s.shapeRawLocked(face, fallbacks, ppem, dir, runes, 0, len(runes))
	runs := make([]Run, 0, len(outs))
	for _, out := range outs {
		runs = append(runs, toRun(out, s.indexOf(out.Face), dir))
	}

	s.cache.Put(key, runs)
	return runs
}

// ShapeRaw is like Shape but returns the unconverted go-text outputs,
// for callers (the inline layout engine) that need to hand them
// straight to shaping.LineWrapper.WrapParagraph before converting to
// our Run type.
func (s *Shaper) ShapeRaw(face gofont.Face, fallbacks []gofont.Face, ppem fixed.Int26_6, dir Direction, runes []rune) []shaping.Output {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shapeRawLocked(face, fallbacks, ppem, dir, runes, 0, len(runes))
}

// ShapeRange is ShapeRaw for a [start, end) sub-range of a larger
// paragraph's rune slice, keeping the returned outputs' cluster indices
// relative to the same paragraph-wide text so multiple ShapeRange calls
// over disjoint ranges of the same paragraph (one per bidi/style
// sub-run) can be concatenated and handed to
// shaping.LineWrapper.WrapParagraph together.
func (s *Shaper) ShapeRange(face gofont.Face, fallbacks []gofont.Face, ppem fixed.Int26_6, dir Direction, paragraph []rune, start, end int) []shaping.Output {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shapeRawLocked(face, fallbacks, ppem, dir, paragraph, start, end)
}

func (s *Shaper) shapeRawLocked(face gofont.Face, fallbacks []gofont.Face, ppem fixed.Int26_6, dir Direction, text []rune, start, end int) []shaping.Output {
	hbDir := di.DirectionLTR
	if dir == RTL {
		hbDir = di.DirectionRTL
	}
	faces := append([]gofont.Face{face}, fallbacks...)

	input := shaping.Input{
		Text:      text,
		RunStart:  start,
		RunEnd:    end,
		Direction: hbDir,
		Face:      face,
		Size:      ppem,
	}
	inputs := s.splitByFaces([]shaping.Input{input}, faces)
	inputs = s.splitByScript(inputs)

	outs := make([]shaping.Output, 0, len(inputs))
	for _, in := range inputs {
		outs = append(outs, s.hb.Shape(in))
	}
	return outs
}

// splitByFaces divides inputs at font-coverage boundaries, falling back
// through faces[1:] for spans the first face can't render.
func (s *Shaper) splitByFaces(inputs []shaping.Input, faces []gofont.Face) []shaping.Input {
	split := s.splitScratch1[:0]
	for _, in := range inputs {
		split = append(split, shaping.SplitByFontGlyphs(in, faces)...)
	}
	s.splitScratch1 = split
	return split
}

// splitByScript further divides inputs at Unicode script boundaries so
// each shaped chunk uses a single script, matching gio's
// gotext.go:splitByScript.
func (s *Shaper) splitByScript(inputs []shaping.Input) []shaping.Input {
	out := s.splitScratch2[:0]
	for _, input := range inputs {
		if input.RunStart == input.RunEnd {
			out = append(out, input)
			continue
		}
		current := input
		start := input.RunStart
		current.Script = language.LookupScript(input.Text[start])
		for i := start + 1; i < input.RunEnd; i++ {
			sc := language.LookupScript(input.Text[i])
			if sc == language.Common || sc == current.Script {
				continue
			}
			current.RunEnd = i
			out = append(out, current)
			current = input
			current.RunStart = i
			current.Script = sc
		}
		current.RunEnd = input.RunEnd
		out = append(out, current)
	}
	s.splitScratch2 = out
	return slices.Clone(out)
}

func toRun(out shaping.Output, faceIdx int, dir Direction) Run {
	glyphs := make([]Glyph, len(out.Glyphs))
	for i, g := range out.Glyphs {
		var bounds fixed.Rectangle26_6
		bounds.Min.X = g.XBearing
		bounds.Min.Y = -g.YBearing
		bounds.Max = bounds.Min.Add(fixed.Point26_6{X: g.Width, Y: -g.Height})
		glyphs[i] = Glyph{
			ID:           NewGlyphID(faceIdx, out.Size, g.GlyphID),
			ClusterIndex: g.ClusterIndex,
			RuneCount:    g.RuneCount,
			GlyphCount:   g.GlyphCount,
			XAdvance:     g.XAdvance,
			YAdvance:     g.YAdvance,
			XOffset:      g.XOffset,
			YOffset:      g.YOffset,
			Bounds:       bounds,
		}
	}
	return Run{
		FaceIndex: faceIdx,
		Face:      out.Face,
		Glyphs:    glyphs,
		Advance:   out.Advance,
		PPEM:      out.Size,
		Direction: dir,
		Ascent:    out.LineBounds.Ascent,
		Descent:   -out.LineBounds.Descent,
		Gap:       out.LineBounds.Gap,
	}
}

// FaceAt returns the registered face for idx, as packed into a GlyphID
// by NewGlyphID.
func (s *Shaper) FaceAt(idx int) gofont.Face {
	return s.faces[idx]
}
