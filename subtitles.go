// SPDX-License-Identifier: Unlicense OR MIT

package subrandr

import (
	"fmt"

	"github.com/subrandr/subrandr/document"
	"github.com/subrandr/subrandr/document/srv3"
	"github.com/subrandr/subrandr/document/webvtt"
	"github.com/subrandr/subrandr/fontprovider"
)

// Format selects which parser LoadText uses, or requests magic-byte
// probing (§6: "format_tag ∈ {Unknown=0, SRV3=1, WebVTT=2}").
type Format int

const (
	FormatUnknown Format = iota
	FormatSRV3
	FormatWebVTT
)

// Subtitles is a loaded, immutable document (§6: Subtitles*). It may
// be bound to any number of Renderers simultaneously and outlives any
// one of them; it must itself outlive every Renderer still bound to
// it (§3 Lifecycles, §5: "destroying it before its renderer is a
// programmer error" — left to the caller, since Go's GC keeps the
// document alive for as long as a Renderer holds a reference to this
// Subtitles).
type Subtitles struct {
	doc *document.Document
}

// LoadText parses bytes as a subtitle document (§6: load_text).
// languageHint is accepted for API symmetry with §6 but is not
// currently consulted by either parser; both formats carry their own
// language information inline where they have any. fonts is stored in
// the resulting document's Fonts field, which rendering does not read
// (Renderer.SetSubtitles takes the provider used for matching); it may
// be nil.
func (l *Library) LoadText(data []byte, format Format, languageHint string, fonts fontprovider.Provider) (*Subtitles, error) {
	_ = languageHint

	switch format {
	case FormatSRV3:
		doc, err := srv3.Parse(data, fonts)
		if err != nil {
			return nil, newError(Other, err, "parsing SRV3 document")
		}
		return &Subtitles{doc: doc}, nil
	case FormatWebVTT:
		doc, err := webvtt.Parse(data, fonts)
		if err != nil {
			return nil, newError(Other, err, "parsing WebVTT document")
		}
		return &Subtitles{doc: doc}, nil
	case FormatUnknown:
		return probeAndParse(data, fonts)
	default:
		return nil, newError(InvalidArgument, nil, "unrecognized format tag %d", format)
	}
}

// probeAndParse implements §6's Unknown-format magic-byte probing.
func probeAndParse(data []byte, fonts fontprovider.Provider) (*Subtitles, error) {
	switch {
	case srv3.Sniff(data):
		doc, err := srv3.Parse(data, fonts)
		if err != nil {
			return nil, newError(Other, err, "parsing probed SRV3 document")
		}
		return &Subtitles{doc: doc}, nil
	case webvtt.Sniff(data):
		doc, err := webvtt.Parse(data, fonts)
		if err != nil {
			return nil, newError(Other, err, "parsing probed WebVTT document")
		}
		return &Subtitles{doc: doc}, nil
	default:
		return nil, newError(UnrecognizedFormat, nil, "%s", fmt.Sprintf("no parser recognized the input's first %d bytes", min(len(data), 16)))
	}
}
