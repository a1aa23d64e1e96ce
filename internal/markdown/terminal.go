// Package markdown holds the Markdown front ends used to display answers:
// glamour for terminals, goldmark for HTML, and a small lipgloss renderer
// for terminals where glamour's styles are unwanted.
package markdown

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const (
	StyleAuto  = "auto"
	StylePlain = "plain"

	DefaultWordWrap = 80
	minWordWrap     = 20
)

// Terminal renders Markdown to ANSI text with glamour. It can be re-created
// for a new wrap width while in use.
type Terminal struct {
	mu    sync.Mutex
	r     *glamour.TermRenderer
	style string
	width int
}

func NewTerminal(style string, width int) (*Terminal, error) {
	t := &Terminal{style: style}
	if err := t.Resize(width); err != nil {
		return nil, err
	}
	return t, nil
}

// Resize rebuilds the renderer for a new wrap width. Zero means
// DefaultWordWrap.
func (t *Terminal) Resize(width int) error {
	if width <= 0 {
		width = DefaultWordWrap
	}
	if width < minWordWrap {
		width = minWordWrap
	}

	styleOpt := glamour.WithStandardStyle(t.style)
	if t.style == "" || t.style == StyleAuto {
		styleOpt = glamour.WithAutoStyle()
	}

	r, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return fmt.Errorf("failed to create %q renderer: %w", t.style, err)
	}

	t.mu.Lock()
	t.r = r
	t.width = width
	t.mu.Unlock()
	return nil
}

func (t *Terminal) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

func (t *Terminal) Render(src string) (string, error) {
	if src == "" {
		return "", nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	out, err := t.r.Render(src)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
