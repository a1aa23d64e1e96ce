package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// RequiredColumns are the header columns the backend builds FAQ entries from.
var RequiredColumns = []string{"question", "answer"}

// IsCSV reports whether filename looks like a CSV file, by extension or by
// the MIME type registered for its extension.
func IsCSV(filename string) bool {
	ext := filepath.Ext(filename)
	if strings.EqualFold(ext, ".csv") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	return err == nil && mediaType == "text/csv"
}

// CheckCSVHeader reads the header row of r and reports the first required
// column that is missing. It does not consume more than the first record.
func CheckCSVHeader(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: file is empty", ErrNotCSV)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotCSV, err)
	}

	seen := make(map[string]bool, len(header))
	for _, col := range header {
		seen[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = true
	}
	for _, col := range RequiredColumns {
		if !seen[col] {
			return fmt.Errorf("%w: missing %q column", ErrNotCSV, col)
		}
	}
	return nil
}

// OpenCSV opens path for upload after checking its name and header. The
// returned file is positioned at the start.
func OpenCSV(path string) (*os.File, error) {
	if !IsCSV(path) {
		return nil, ErrNotCSV
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if err := CheckCSVHeader(file); err != nil {
		file.Close()
		return nil, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, err
	}
	return file, nil
}
