package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Rorical/RoriKB/internal/api"
	"github.com/Rorical/RoriKB/internal/config"
	"github.com/Rorical/RoriKB/internal/core"
	"github.com/Rorical/RoriKB/internal/markdown"
	"github.com/Rorical/RoriKB/internal/stream"
)

const (
	formatTerminal = "terminal"
	formatHTML     = "html"
	formatRaw      = "raw"
)

var askFormat string

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask one question and stream the answer",
	Long: `Ask one question and stream the rendered answer to stdout.

Formats:
  terminal  Markdown rendered for the terminal, redrawn as it streams (default)
  html      Markdown rendered to HTML with highlighted code blocks
  raw       the answer text exactly as the server sends it`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		cfg, backend, err := loadBackend()
		if err != nil {
			return err
		}
		return runAsk(ctx, backend, cfg.Current(), strings.Join(args, " "), askFormat, cmd.OutOrStdout())
	},
}

func runAsk(ctx context.Context, backend api.Backend, profile config.Profile, question, format string, out io.Writer) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return core.ErrEmptyMessage
	}

	md, surface, flush, highlighters, err := askOutput(profile, format, out)
	if err != nil {
		return err
	}

	body, err := backend.Ask(ctx, question)
	if err != nil {
		return askFailed(err, md, surface, flush, highlighters)
	}
	defer body.Close()

	if format == formatRaw {
		if _, err := io.Copy(out, body); err != nil {
			logger.Error("answer failed", zap.String("action", "ask"), zap.Error(err))
			return err
		}
		_, err := fmt.Fprintln(out)
		return err
	}

	renderer := stream.NewRenderer(md, surface, stream.WithHighlighters(highlighters...))
	if _, err := renderer.Run(ctx, body); err != nil {
		return askFailed(err, md, surface, flush, highlighters)
	}
	return flush()
}

// askOutput picks the renderer and the surface for format. flush writes
// whatever the surface held back.
func askOutput(profile config.Profile, format string, out io.Writer) (stream.Markdown, stream.Surface, func() error, []stream.Highlighter, error) {
	buffered := &stream.BufferSurface{}
	flushBuffered := func() error {
		_, err := fmt.Fprintln(out, strings.TrimRight(buffered.Content(), "\n"))
		return err
	}

	switch format {
	case formatRaw:
		return nil, buffered, flushBuffered, nil, nil

	case formatHTML:
		theme := profile.CodeTheme
		if theme == "" {
			theme = markdown.DefaultCodeTheme
		}
		hl := []stream.Highlighter{markdown.NewCodeHighlighter(theme)}
		return markdown.NewHTML(), buffered, flushBuffered, hl, nil

	case formatTerminal:
		live := isTerminal(out)
		cols := 0
		if live {
			cols = terminalWidth(out)
		}
		md, err := markdown.ForTerminal(profile.Style, wrapWidth(profile.WordWrap, cols))
		if err != nil {
			logger.Warn("falling back to plain Markdown rendering", zap.Error(err))
		}
		if live {
			return md, stream.NewLiveSurface(out, cols), func() error { return nil }, nil, nil
		}
		return md, buffered, flushBuffered, nil, nil
	}
	return nil, nil, nil, nil, fmt.Errorf("unknown format %q (want %s, %s or %s)", format, formatTerminal, formatHTML, formatRaw)
}

// askFailed replaces whatever was shown with the fallback answer.
func askFailed(err error, md stream.Markdown, surface stream.Surface, flush func() error, highlighters []stream.Highlighter) error {
	var status int
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}
	logger.Error("answer failed", zap.String("action", "ask"), zap.Int("status", status), zap.Error(err))

	fallback := core.FallbackAnswer
	if md != nil {
		fallback = stream.Render(md, core.FallbackAnswer, highlighters...)
	}
	surface.Replace(fallback)
	surface.ScrollToLatest()
	if flushErr := flush(); flushErr != nil {
		return flushErr
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// terminalWidth is the column count of the terminal behind w, or 0 when it
// cannot be read.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		logger.Debug("cannot read terminal size", zap.Error(err))
		return 0
	}
	return cols
}

// wrapWidth keeps the profile's word wrap unless the terminal is narrower.
func wrapWidth(wrap, cols int) int {
	if cols > 0 && (wrap <= 0 || wrap > cols) {
		return cols
	}
	return wrap
}

func init() {
	askCmd.Flags().StringVarP(&askFormat, "format", "f", formatTerminal, "Output format: terminal, html or raw")
	rootCmd.AddCommand(askCmd)
}
