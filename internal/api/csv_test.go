package api

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCSV(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "faq.csv")
	require.NoError(t, os.WriteFile(good, []byte("question,answer\nq,a\n"), 0o600))

	f, err := OpenCSV(good)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "question,answer\nq,a\n", string(data))

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("title\nx\n"), 0o600))
	_, err = OpenCSV(bad)
	assert.ErrorIs(t, err, ErrNotCSV)

	_, err = OpenCSV(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrNotCSV)

	_, err = OpenCSV(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
