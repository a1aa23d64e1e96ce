package stream_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriKB/internal/stream"
)

type identity struct{}

func (identity) Render(src string) (string, error) { return src, nil }

func TestLiveSurfaceRedrawsInPlace(t *testing.T) {
	var buf bytes.Buffer
	s := stream.NewLiveSurface(&buf, 80)

	s.Replace("one\ntwo")
	s.ScrollToLatest()
	assert.Equal(t, 2, s.Lines())
	assert.Equal(t, "one\ntwo\n", buf.String())

	buf.Reset()
	s.Replace("one\ntwo\nthree")
	s.ScrollToLatest()
	assert.Equal(t, 3, s.Lines())
	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "one\ntwo\nthree\n"))
	assert.Contains(t, out, "\x1b[", "previous lines are cleared with escape sequences")

	// nothing new, nothing written
	buf.Reset()
	s.ScrollToLatest()
	assert.Empty(t, buf.String())
}

func TestLiveSurfaceCountsWrappedRows(t *testing.T) {
	var buf bytes.Buffer
	s := stream.NewLiveSurface(&buf, 80)

	s.Replace(strings.Repeat("x", 200))
	s.ScrollToLatest()
	assert.Equal(t, 3, s.Lines())

	s.Replace("\x1b[1m" + strings.Repeat("y", 80) + "\x1b[0m\n\nshort")
	s.ScrollToLatest()
	assert.Equal(t, 3, s.Lines(), "escape sequences take no columns")

	s.Replace(strings.Repeat("界", 50))
	s.ScrollToLatest()
	assert.Equal(t, 2, s.Lines(), "wide runes take two columns")

	buf.Reset()
	s.Replace("done")
	s.ScrollToLatest()
	assert.Equal(t, 1, s.Lines())
	assert.Equal(t, 2, strings.Count(buf.String(), "\x1b[1A"), "every row of the previous render is cleared")
}

func TestLiveSurfaceWithoutWidth(t *testing.T) {
	var buf bytes.Buffer
	s := stream.NewLiveSurface(&buf, 0)

	s.Replace(strings.Repeat("x", 200) + "\nsecond")
	s.ScrollToLatest()
	assert.Equal(t, 2, s.Lines())
}

func TestLiveSurfaceEmptyContent(t *testing.T) {
	var buf bytes.Buffer
	s := stream.NewLiveSurface(&buf, 80)

	s.Replace("")
	s.ScrollToLatest()
	assert.Zero(t, s.Lines())
	assert.Empty(t, buf.String())
}

func TestBufferSurfaceKeepsLatest(t *testing.T) {
	surface := &stream.BufferSurface{}
	r := stream.NewRenderer(identity{}, surface, stream.WithChunkSize(2))

	text, err := r.Run(context.Background(), strings.NewReader("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, "abcdef", text)
	assert.Equal(t, "abcdef", surface.Content())
	// initial empty render plus one per chunk
	assert.Equal(t, 4, surface.Renders())
}
