package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Surface is where a rendered document is shown. Replace swaps the whole
// rendered content; ScrollToLatest brings the newest content into view.
type Surface interface {
	Replace(rendered string)
	ScrollToLatest()
}

// Markdown converts a complete Markdown document into display markup.
type Markdown interface {
	Render(src string) (string, error)
}

// Highlighter post-processes rendered output, typically colouring code
// blocks.
type Highlighter interface {
	Highlight(rendered string) string
}

type State int

const (
	Idle State = iota
	Streaming
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

const defaultChunkSize = 4096

var ErrRendererUsed = errors.New("renderer has already run")

// StreamError reports a read failure after Streaming was entered.
type StreamError struct {
	Received int // bytes read before the failure
	Err      error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream failed after %d bytes: %v", e.Received, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHighlighters registers highlighters run in order after every render.
func WithHighlighters(h ...Highlighter) Option {
	return func(r *Renderer) {
		r.highlighters = append(r.highlighters, h...)
	}
}

// WithChunkSize sets the read buffer size. Each Read is one chunk.
func WithChunkSize(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

// Renderer keeps a Surface in sync with a Markdown document that arrives in
// chunks. Every chunk re-renders the whole accumulated text. A Renderer
// serves exactly one stream.
type Renderer struct {
	md           Markdown
	surface      Surface
	highlighters []Highlighter
	chunkSize    int

	mu    sync.Mutex
	state State
}

func NewRenderer(md Markdown, surface Surface, opts ...Option) *Renderer {
	r := &Renderer{
		md:        md,
		surface:   surface,
		chunkSize: defaultChunkSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Renderer) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Run consumes body until EOF and returns the full decoded text. On a read
// error the partial text is returned together with a *StreamError; whatever
// the surface shows at that point is the caller's to discard.
func (r *Renderer) Run(ctx context.Context, body io.Reader) (string, error) {
	r.mu.Lock()
	if r.state != Idle {
		r.mu.Unlock()
		return "", ErrRendererUsed
	}
	r.state = Streaming
	r.mu.Unlock()

	dec := NewDecoder()
	var buf strings.Builder
	received := 0

	r.update("")

	chunk := make([]byte, r.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			r.setState(Failed)
			return buf.String(), &StreamError{Received: received, Err: err}
		}

		n, err := body.Read(chunk)
		if n > 0 {
			received += n
			if text := dec.Decode(chunk[:n]); text != "" {
				buf.WriteString(text)
				r.update(buf.String())
			}
		}

		if errors.Is(err, io.EOF) {
			if rest := dec.Flush(); rest != "" {
				buf.WriteString(rest)
				r.update(buf.String())
			}
			r.setState(Completed)
			return buf.String(), nil
		}
		if err != nil {
			r.setState(Failed)
			return buf.String(), &StreamError{Received: received, Err: err}
		}
	}
}

func (r *Renderer) update(text string) {
	r.surface.Replace(Render(r.md, text, r.highlighters...))
	r.surface.ScrollToLatest()
}

// Render renders src once through md and the highlighters. If md fails the
// source is shown as-is, which keeps a half-written document visible rather
// than blanking the surface.
func Render(md Markdown, src string, highlighters ...Highlighter) string {
	out, err := md.Render(src)
	if err != nil {
		out = src
	}
	for _, h := range highlighters {
		out = h.Highlight(out)
	}
	return out
}
