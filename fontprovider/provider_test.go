// SPDX-License-Identifier: Unlicense OR MIT

package fontprovider

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestMemoryProviderAddAndQuery(t *testing.T) {
	p := NewMemoryProvider()
	if err := p.AddFromMemory(goregular.TTF); err != nil {
		t.Fatal(err)
	}
	cands := p.Query("Go")
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	if cands[0].Weight != Normal {
		t.Fatalf("got weight %d, want Normal", cands[0].Weight)
	}
	if cands[0].Face == nil {
		t.Fatalf("expected a parsed face")
	}
}

func TestMemoryProviderQueryIsCaseInsensitive(t *testing.T) {
	p := NewMemoryProvider()
	if err := p.AddFromMemory(goregular.TTF); err != nil {
		t.Fatal(err)
	}
	if len(p.Query("GO")) == 0 || len(p.Query("go")) == 0 {
		t.Fatalf("expected case-insensitive family lookup to succeed")
	}
}

func TestMemoryProviderUnknownFamily(t *testing.T) {
	p := NewMemoryProvider()
	if cands := p.Query("nonexistent"); len(cands) != 0 {
		t.Fatalf("got %d candidates for an unregistered family, want 0", len(cands))
	}
}
