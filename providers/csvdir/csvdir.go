// Package csvdir reads and writes per-document token counts stored as one
// CSV file per document: <dir>/<id>.csv with a "Word,Count" header.
package csvdir

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/botirk38/podcastsim/types"
)

const (
	extension   = ".csv"
	wordColumn  = "Word"
	countColumn = "Count"
)

// ErrInvalidID indicates an id that cannot be used as a file name
var ErrInvalidID = errors.New("document id cannot be used as a file name")

// CSVDirProvider implements TokenSource over a directory of CSV files
type CSVDirProvider struct {
	dir string
}

// NewCSVDirProvider creates a provider rooted at dir. The directory must exist.
func NewCSVDirProvider(dir string) (*CSVDirProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open token directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("token directory %q is not a directory", dir)
	}
	return &CSVDirProvider{dir: dir}, nil
}

// Dir returns the root directory
func (p *CSVDirProvider) Dir() string {
	return p.dir
}

func (p *CSVDirProvider) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(p.dir, id+extension), nil
}

// TokenCounts reads <dir>/<id>.csv. A missing file means the document is unknown.
func (p *CSVDirProvider) TokenCounts(ctx context.Context, id string) (types.TokenCounts, bool, error) {
	path, err := p.path(id)
	if err != nil {
		return nil, false, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open token file: %w", err)
	}
	defer f.Close()

	counts, err := ReadCounts(f)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return counts, true, nil
}

// ReadCounts parses a Word,Count table. Repeated words are summed.
func ReadCounts(r io.Reader) (types.TokenCounts, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return types.TokenCounts{}, nil
	}
	if err != nil {
		return nil, err
	}

	wordIdx, countIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case wordColumn:
			wordIdx = i
		case countColumn:
			countIdx = i
		}
	}
	if wordIdx < 0 || countIdx < 0 {
		return nil, fmt.Errorf("header must contain %q and %q columns", wordColumn, countColumn)
	}

	counts := make(types.TokenCounts)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) <= wordIdx || len(record) <= countIdx {
			return nil, fmt.Errorf("line %d: expected at least %d fields", line, max(wordIdx, countIdx)+1)
		}

		count, err := strconv.Atoi(strings.TrimSpace(record[countIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid count: %w", line, err)
		}
		counts[record[wordIdx]] += count
	}

	return counts, nil
}

// Write stores counts for id, sorted by count descending then word.
// The file is replaced atomically.
func (p *CSVDirProvider) Write(id string, counts types.TokenCounts) error {
	path, err := p.path(id)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(p.dir, "."+id+"-*")
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCounts(tmp, counts); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}

// WriteCounts renders counts as a Word,Count table.
func WriteCounts(w io.Writer, counts types.TokenCounts) error {
	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{wordColumn, countColumn}); err != nil {
		return err
	}
	for _, word := range words {
		if err := writer.Write([]string{word, strconv.Itoa(counts[word])}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// IDs lists every document id in the directory, sorted
func (p *CSVDirProvider) IDs() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list token directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != extension {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, extension))
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op for the directory provider
func (p *CSVDirProvider) Close() error {
	return nil
}
