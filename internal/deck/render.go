// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package deck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// ASSET RESOLUTION
// =============================================================================

// AssetResolver resolves an opaque storage handle to a displayable
// location. Resolve returns ok=false while the asset is not yet
// available; the renderer shows a placeholder and the caller re-renders
// once the asset arrives.
type AssetResolver interface {
	Resolve(handle string) (string, bool)
}

// assetRef matches image references using the asset scheme,
// e.g. ![diagram](asset://abc123).
var assetRef = regexp.MustCompile(`!\[([^\]]*)\]\(asset://([^)]+)\)`)

// resolveAssets rewrites asset:// image references through the resolver.
// Unresolved assets render as a loading placeholder, never an error: the
// asset may arrive later.
func resolveAssets(body string, r AssetResolver) string {
	if r == nil {
		return body
	}
	return assetRef.ReplaceAllStringFunc(body, func(m string) string {
		groups := assetRef.FindStringSubmatch(m)
		alt, handle := groups[1], groups[2]
		if loc, ok := r.Resolve(handle); ok {
			return fmt.Sprintf("![%s](%s)", alt, loc)
		}
		if alt == "" {
			alt = handle
		}
		return fmt.Sprintf("*[loading %s…]*", alt)
	})
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer renders slides to styled terminal output at a given width.
type Renderer struct {
	width  int
	assets AssetResolver
	gr     *glamour.TermRenderer
}

// NewRenderer creates a slide renderer. assets may be nil when the deck
// references no stored images.
func NewRenderer(width int, assets AssetResolver) (*Renderer, error) {
	if width < 20 {
		width = 20
	}
	gr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	return &Renderer{width: width, assets: assets, gr: gr}, nil
}

// Width returns the wrap width this renderer was built for.
func (r *Renderer) Width() int {
	return r.width
}

// Unresolved reports whether the slide still references assets the
// resolver cannot yet supply. Such a render contains loading
// placeholders and must not be cached; the caller re-renders until the
// assets arrive.
func (r *Renderer) Unresolved(s Slide) bool {
	if r.assets == nil {
		return false
	}
	for _, m := range assetRef.FindAllStringSubmatch(s.Body, -1) {
		if _, ok := r.assets.Resolve(m[2]); !ok {
			return true
		}
	}
	return false
}

// Render renders one slide. Slides that are a single fenced code block
// skip markdown layout and go straight through syntax highlighting, so
// code fills the slide edge to edge.
func (r *Renderer) Render(s Slide) (string, error) {
	body := resolveAssets(s.Body, r.assets)

	if lang, code, ok := soleCodeBlock(body); ok {
		var sb strings.Builder
		if err := quick.Highlight(&sb, code, lang, "terminal256", "monokai"); err == nil {
			return sb.String(), nil
		}
		// Fall through to markdown rendering on unknown languages.
	}

	out, err := r.gr.Render(body)
	if err != nil {
		return "", fmt.Errorf("render slide: %w", err)
	}
	return out, nil
}

// soleCodeBlock reports whether the slide body is exactly one fenced
// code block, returning its language and contents.
func soleCodeBlock(body string) (lang, code string, ok bool) {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) < 2 {
		return "", "", false
	}
	first, last := strings.TrimSpace(lines[0]), strings.TrimSpace(lines[len(lines)-1])
	if !strings.HasPrefix(first, "```") || last != "```" {
		return "", "", false
	}
	lang = strings.TrimPrefix(first, "```")
	if lang == "" {
		return "", "", false
	}
	for _, l := range lines[1 : len(lines)-1] {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			return "", "", false
		}
	}
	return lang, strings.Join(lines[1:len(lines)-1], "\n") + "\n", true
}
