package stream

import (
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// LiveSurface redraws the latest render in place on a terminal by clearing
// the rows it printed before.
type LiveSurface struct {
	mu      sync.Mutex
	out     *termenv.Output
	width   int
	pending string
	shown   int
	dirty   bool
}

// NewLiveSurface draws on w, a terminal width columns wide. Lines wider than
// that wrap and are counted once per row; width <= 0 counts one row per line.
func NewLiveSurface(w io.Writer, width int) *LiveSurface {
	return &LiveSurface{out: termenv.NewOutput(w), width: width}
}

func (s *LiveSurface) Replace(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = content
	s.dirty = true
}

// ScrollToLatest draws the pending content. The cursor ends below it, which
// keeps the newest line on screen.
func (s *LiveSurface) ScrollToLatest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	s.dirty = false

	if s.shown > 0 {
		s.out.ClearLines(s.shown)
	}
	if s.pending == "" {
		s.shown = 0
		return
	}
	text := strings.TrimRight(s.pending, "\n") + "\n"
	_, _ = io.WriteString(s.out, text)
	s.shown = rows(text, s.width)
}

// rows is how many terminal rows text takes, ignoring escape sequences.
func rows(text string, width int) int {
	n := 0
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		w := ansi.StringWidth(line)
		if width <= 0 || w <= width {
			n++
			continue
		}
		n += (w + width - 1) / width
	}
	return n
}

// Lines is the number of terminal rows currently drawn.
func (s *LiveSurface) Lines() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

// BufferSurface keeps only the latest render, for output that cannot be
// redrawn such as a pipe.
type BufferSurface struct {
	mu      sync.Mutex
	content string
	renders int
}

func (s *BufferSurface) Replace(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = content
	s.renders++
}

func (s *BufferSurface) ScrollToLatest() {}

func (s *BufferSurface) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

func (s *BufferSurface) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}
