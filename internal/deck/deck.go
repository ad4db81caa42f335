// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package deck loads and renders markdown slide decks.
//
// A deck is a single markdown file; slides are separated by `---` rules
// at the top level (rules inside fenced code blocks do not split).
// Speaker notes live in `<!-- notes: ... -->` comments and render only
// in the presenter view.
package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// DECK MODEL
// =============================================================================

// Slide is one slide's markdown source plus its speaker notes.
type Slide struct {
	Body  string
	Notes string
}

// Deck is a parsed slide deck.
type Deck struct {
	// Title is the first heading of the first slide, or the file name.
	Title string
	// Path is the source file, empty for decks parsed from memory.
	Path string
	// Slides holds at least one slide; an empty file yields one empty
	// slide rather than an unpresentable zero-slide deck.
	Slides []Slide
}

// Load reads and parses a deck file.
func Load(path string) (*Deck, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	d := Parse(string(src))
	d.Path = path
	if d.Title == "" {
		d.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// Parse splits markdown source into slides.
func Parse(src string) *Deck {
	d := &Deck{}

	var body, notes strings.Builder
	inFence := false
	fenceMarker := ""

	flush := func() {
		d.Slides = append(d.Slides, Slide{
			Body:  strings.TrimSpace(body.String()),
			Notes: strings.TrimSpace(notes.String()),
		})
		body.Reset()
		notes.Reset()
	}

	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)

		if inFence {
			body.WriteString(line)
			body.WriteByte('\n')
			if strings.HasPrefix(trimmed, fenceMarker) {
				inFence = false
			}
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "```"), strings.HasPrefix(trimmed, "~~~"):
			inFence = true
			fenceMarker = trimmed[:3]
			body.WriteString(line)
			body.WriteByte('\n')

		case isSlideRule(trimmed):
			flush()

		case strings.HasPrefix(trimmed, "<!-- notes:") && strings.HasSuffix(trimmed, "-->"):
			n := strings.TrimSuffix(strings.TrimPrefix(trimmed, "<!-- notes:"), "-->")
			if notes.Len() > 0 {
				notes.WriteByte('\n')
			}
			notes.WriteString(strings.TrimSpace(n))

		default:
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}
	flush()

	// Drop a leading/trailing empty slide produced by decks that open or
	// close with a rule, but never drop down to zero slides.
	d.Slides = trimEmptySlides(d.Slides)

	for _, s := range d.Slides {
		if t := firstHeading(s.Body); t != "" {
			d.Title = t
			break
		}
	}
	return d
}

// Count returns the number of slides.
func (d *Deck) Count() int {
	return len(d.Slides)
}

// isSlideRule reports whether a line is a top-level slide separator.
func isSlideRule(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	for _, r := range trimmed {
		if r != '-' {
			return false
		}
	}
	return true
}

func trimEmptySlides(slides []Slide) []Slide {
	for len(slides) > 1 && slides[0].Body == "" && slides[0].Notes == "" {
		slides = slides[1:]
	}
	for len(slides) > 1 && slides[len(slides)-1].Body == "" && slides[len(slides)-1].Notes == "" {
		slides = slides[:len(slides)-1]
	}
	return slides
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "# "))
		}
	}
	return ""
}
