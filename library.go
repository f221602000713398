// SPDX-License-Identifier: Unlicense OR MIT

package subrandr

import (
	"sync"

	"github.com/subrandr/subrandr/fontmatch"
	"github.com/subrandr/subrandr/fontprovider"
	"github.com/subrandr/subrandr/text"
)

// defaultGlyphCacheBytes is §4.2's default soft byte cap for the
// glyph bitmap cache (32 MiB).
const defaultGlyphCacheBytes = 32 << 20

// Library is the top-level handle every Subtitles and Renderer is
// created from (§6: library_init/library_fini). It owns the
// resources §5 says are "per-library and may be shared by multiple
// renderers": the glyph cache and the shaper's shaping cache. Both
// are internally mutex-guarded, so concurrent Renderers on distinct
// goroutines may safely share one Library, per §5's "guarded by a
// mutex so concurrent renderers on distinct threads are safe but
// contend on cache reads."
type Library struct {
	mu     sync.Mutex
	glyphs *text.GlyphCache
	shaper *text.Shaper

	closed bool
}

// NewLibrary creates a Library (library_init). Callers must call
// Close once every Subtitles and Renderer created from it has been
// released.
func NewLibrary() *Library {
	glyphs := text.NewGlyphCache(defaultGlyphCacheBytes)
	return &Library{
		glyphs: glyphs,
		shaper: text.NewShaper(),
	}
}

// Close releases the Library's shared caches (library_fini). Using
// any Subtitles or Renderer created from a closed Library is a
// programmer error.
func (l *Library) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.glyphs = nil
	l.shaper = nil
}

// NewMemoryFontProvider returns a fresh in-memory font provider
// (§6: custom_font_provider_create). Additions to it via AddFromMemory
// are immediate and synchronous, per §6.
func (l *Library) NewMemoryFontProvider() *fontprovider.MemoryProvider {
	return fontprovider.NewMemoryProvider()
}

// newMatcher builds a Matcher over provider, falling back to
// lastResort when no family in a style's family_list has a candidate
// (§4.2: "a process-wide last-resort face is returned; if that also
// fails, the operation fails with FontNotFound").
func (l *Library) newMatcher(provider fontprovider.Provider, lastResort *fontprovider.Candidate) *fontmatch.Matcher {
	return fontmatch.New(provider, lastResort)
}
