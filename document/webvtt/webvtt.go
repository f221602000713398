// SPDX-License-Identifier: Unlicense OR MIT

// Package webvtt parses a narrow subset of WebVTT cues into a
// document.Document. It is an out-of-scope collaborator per spec.md
// §1; WebVTT regions and CSS ::cue STYLE blocks are explicit
// Non-goals (SPEC_FULL.md §13) and are not parsed. A cue's inline
// <b>/<i>/<u>/<c> tags and a small set of cue settings (position,
// align, line) are honored since they are reachable from a plain text
// file with no external stylesheet.
package webvtt

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/subrandr/subrandr/document"
	"github.com/subrandr/subrandr/fontprovider"
)

// Sniff reports whether data looks like a WebVTT file, per §6's
// magic-byte probing contract ("WebVTT: leading WEBVTT optionally
// after BOM").
func Sniff(data []byte) bool {
	data = trimBOM(data)
	return bytes.HasPrefix(data, []byte("WEBVTT"))
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

// Parse decodes the cue blocks of a WebVTT file. NOTE blocks, STYLE
// blocks, and REGION blocks are skipped: STYLE/REGION are explicit
// Non-goals, and NOTE carries no renderable content.
func Parse(data []byte, fonts fontprovider.Provider) (*document.Document, error) {
	data = trimBOM(data)
	if !bytes.HasPrefix(data, []byte("WEBVTT")) {
		return nil, fmt.Errorf("webvtt: missing WEBVTT signature")
	}

	doc := &document.Document{
		Format: document.FormatWebVTT,
		Flags: document.Flags{
			TightBackgroundBox: true,
		},
		Fonts: fonts,
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var block []string
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		defer func() { block = block[:0] }()
		return parseBlock(doc, block)
	}

	lineNo := 0
	for sc.Scan() {
		line := sc.Text()
		lineNo++
		if lineNo == 1 {
			continue // the WEBVTT signature line itself
		}
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, line)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("webvtt: %w", err)
	}
	return doc, nil
}

// parseBlock parses one blank-line-delimited block. A cue block's
// first or second line contains "-->"; anything else (NOTE, STYLE,
// REGION, a bare cue identifier with no timing line following) is
// skipped.
func parseBlock(doc *document.Document, lines []string) error {
	timingIdx := -1
	for i, l := range lines {
		if i > 1 {
			break // timing line is always the first or second line
		}
		if strings.Contains(l, "-->") {
			timingIdx = i
			break
		}
	}
	if timingIdx == -1 {
		return nil
	}

	start, end, settings, err := parseTiming(lines[timingIdx])
	if err != nil {
		return err
	}

	var textLines []string
	textLines = append(textLines, lines[timingIdx+1:]...)
	text := strings.Join(textLines, "\n")

	root := parseCueText(text)
	anchor := anchorFromSettings(settings)

	doc.Events = append(doc.Events, document.Event{
		TStartMS: start,
		TEndMS:   end,
		Root:     root,
		Anchor:   anchor,
	})
	return nil
}

// parseTiming parses a "00:00:01.000 --> 00:00:02.500 <settings>" line.
func parseTiming(line string) (startMS, endMS int64, settings map[string]string, err error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, nil, fmt.Errorf("webvtt: malformed timing line %q", line)
	}
	startMS, err = parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, nil, err
	}
	rest := strings.Fields(parts[1])
	if len(rest) == 0 {
		return 0, 0, nil, fmt.Errorf("webvtt: malformed timing line %q", line)
	}
	endMS, err = parseTimestamp(rest[0])
	if err != nil {
		return 0, 0, nil, err
	}
	settings = map[string]string{}
	for _, tok := range rest[1:] {
		kv := strings.SplitN(tok, ":", 2)
		if len(kv) == 2 {
			settings[kv[0]] = kv[1]
		}
	}
	return startMS, endMS, settings, nil
}

// parseTimestamp parses "[hh:]mm:ss.mmm".
func parseTimestamp(s string) (int64, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 2 && len(fields) != 3 {
		return 0, fmt.Errorf("webvtt: malformed timestamp %q", s)
	}
	secFields := strings.SplitN(fields[len(fields)-1], ".", 2)
	if len(secFields) != 2 {
		return 0, fmt.Errorf("webvtt: malformed timestamp %q", s)
	}

	var hh, mm int64
	var err error
	if len(fields) == 3 {
		if hh, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
			return 0, fmt.Errorf("webvtt: malformed timestamp %q: %w", s, err)
		}
		fields = fields[1:]
	}
	if mm, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
		return 0, fmt.Errorf("webvtt: malformed timestamp %q: %w", s, err)
	}
	ss, err := strconv.ParseInt(secFields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("webvtt: malformed timestamp %q: %w", s, err)
	}
	ms, err := strconv.ParseInt(secFields[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("webvtt: malformed timestamp %q: %w", s, err)
	}

	return ((hh*60+mm)*60+ss)*1000 + ms, nil
}

// anchorFromSettings maps the "position", "line", and "align" cue
// settings onto an AnchorSpec. Missing settings fall back to WebVTT's
// own default (bottom-centered, full width), matching the common-case
// layout browsers use absent any cue settings.
func anchorFromSettings(settings map[string]string) document.AnchorSpec {
	a := document.AnchorSpec{
		HAlign:   document.HCenter,
		VAlign:   document.VBottom,
		XPct:     0.5,
		YPct:     0.95,
		WidthPct: 1,
	}
	if pos, ok := settings["position"]; ok {
		if pct, ok := parsePercent(pos); ok {
			a.XPct = pct
		}
	}
	if line, ok := settings["line"]; ok {
		if pct, ok := parsePercent(line); ok {
			a.YPct = pct
		}
	}
	switch settings["align"] {
	case "start":
		a.HAlign = document.HStart
	case "end":
		a.HAlign = document.HEnd
	case "center", "":
		a.HAlign = document.HCenter
	}
	if sz, ok := settings["size"]; ok {
		if pct, ok := parsePercent(sz); ok {
			a.WidthPct = pct
		}
	}
	return a
}

func parsePercent(s string) (float64, bool) {
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v / 100, true
}

// parseCueText turns a cue payload's inline <b>/<i>/<u>/<c> markup and
// literal newlines into an InlineNode tree. Unrecognized tags are
// skipped (their text content is kept, the tag itself dropped), since
// full HTML-like cue markup is out of this parser's narrow contract.
func parseCueText(text string) document.InlineNode {
	base := document.DefaultStyle()
	base.Color = document.Color{R: 255, G: 255, B: 255, A: 255}

	var children []document.InlineNode
	style := base
	var styleStack []document.Style

	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		children = append(children, document.InlineNode{
			Kind:  document.NodeText,
			Chars: []rune(buf.String()),
			Style: style,
		})
		buf.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch {
		case runes[i] == '\n':
			flush()
			children = append(children, document.InlineNode{Kind: document.NodeLineBreak})
		case runes[i] == '<':
			end := indexRune(runes[i:], '>')
			if end < 0 {
				buf.WriteRune(runes[i])
				continue
			}
			tag := string(runes[i+1 : i+end])
			i += end
			closing := strings.HasPrefix(tag, "/")
			name := strings.TrimPrefix(tag, "/")
			if sp := strings.IndexAny(name, " ."); sp >= 0 {
				name = name[:sp]
			}
			switch {
			case closing:
				flush()
				if len(styleStack) > 0 {
					style = styleStack[len(styleStack)-1]
					styleStack = styleStack[:len(styleStack)-1]
				}
			case name == "b" || name == "i" || name == "u":
				flush()
				styleStack = append(styleStack, style)
				switch name {
				case "b":
					style.Weight = fontprovider.Bold
				case "i":
					style.Italic = true
				case "u":
					style.Underline = true
				}
			default:
				// <c>, <v>, <lang>, timestamps, or anything else: no
				// styling effect in this narrow parser.
			}
		default:
			buf.WriteRune(runes[i])
		}
	}
	flush()

	return document.InlineNode{Kind: document.NodeInline, Children: children, Style: base}
}

func indexRune(rs []rune, target rune) int {
	for i, r := range rs {
		if r == target {
			return i
		}
	}
	return -1
}
