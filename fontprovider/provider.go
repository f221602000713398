// SPDX-License-Identifier: Unlicense OR MIT

// Package fontprovider defines the narrow contract the rendering core
// consumes from font discovery backends (§1: "font discovery backends...
// are out of scope; we specify only the interfaces the core consumes from
// these"). System font providers for Linux/Windows/Android live outside
// this module; MemoryProvider is the one concrete implementation the core
// carries, for embedding fonts directly in a document or test.
package fontprovider

import (
	"bytes"
	"fmt"
	"sync"

	gofont "github.com/go-text/typesetting/font"
)

// Style is a font slant.
type Style uint8

const (
	Regular Style = iota
	Italic
)

// Weight is a font weight in CSS units, 100-900. Zero means "unspecified",
// resolved to Normal by callers.
type Weight int

const (
	Thin       Weight = 100
	ExtraLight Weight = 200
	Light      Weight = 300
	Normal     Weight = 400
	Medium     Weight = 500
	SemiBold   Weight = 600
	Bold       Weight = 700
	ExtraBold  Weight = 800
	Black      Weight = 900
)

// Candidate is one concrete face a Provider offers for a requested family.
type Candidate struct {
	Family string
	Weight Weight
	Style  Style
	Face   gofont.Face
}

// Provider resolves family names to concrete font faces. Implementations
// are shared read-only after construction (§5) and may be queried
// concurrently by multiple renderers.
type Provider interface {
	// Query returns every candidate face registered under family,
	// matched case-insensitively. An empty result means the family is
	// unknown to this provider; the matcher then tries the next family
	// in the style's family list.
	Query(family string) []Candidate
}

// MemoryProvider is an in-memory Provider backed by fonts added directly
// from byte slices, the out-of-scope collaborator's in-memory variant
// from §6 (custom_font_provider_create / _add_from_memory).
type MemoryProvider struct {
	mu    sync.RWMutex
	byFam map[string][]Candidate
}

// NewMemoryProvider returns an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{byFam: make(map[string][]Candidate)}
}

// AddFromMemory parses an OpenType/TrueType font from data and registers
// it under the family name(s) declared in its name table. Addition is
// immediate and synchronous, per §6.
func (p *MemoryProvider) AddFromMemory(data []byte) error {
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("fontprovider: parsing font: %w", err)
	}
	desc := face.Describe()
	weight := Weight(desc.Aspect.Weight)
	if weight == 0 {
		weight = Normal
	}
	style := Regular
	if desc.Aspect.Style == gofont.StyleItalic || desc.Aspect.Style == gofont.StyleOblique {
		style = Italic
	}
	cand := Candidate{
		Family: desc.Family,
		Weight: weight,
		Style:  style,
		Face:   face,
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	key := normalizeFamily(desc.Family)
	p.byFam[key] = append(p.byFam[key], cand)
	return nil
}

// Query implements Provider.
func (p *MemoryProvider) Query(family string) []Candidate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Candidate(nil), p.byFam[normalizeFamily(family)]...)
}

func normalizeFamily(f string) string {
	b := make([]byte, 0, len(f))
	for i := 0; i < len(f); i++ {
		c := f[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b = append(b, c)
	}
	return string(b)
}
