package fpcache

import (
	"context"
	"encoding/csv"
	"os"
	"sort"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

// DefaultFilename is the conventional fingerprint table file name.
const DefaultFilename = "cache.csv"

// FileStore persists the fingerprint table as CSV rows of "stem,digest".
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the table. A missing file yields an empty table; a present but
// malformed file is an error, since silently dropping digests would skip the
// cheap-path verification for every entry.
func (s *FileStore) Load(ctx context.Context) (map[string]string, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheError, err, "open fingerprint cache %s", s.path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheError, err, "parse fingerprint cache %s", s.path)
	}

	table := make(map[string]string, len(records))
	for _, record := range records {
		table[record[0]] = record[1]
	}
	return table, nil
}

// Save rewrites the table. Rows are written in sorted stem order so the file
// diffs cleanly under version control.
func (s *FileStore) Save(ctx context.Context, table map[string]string) error {
	stems := make([]string, 0, len(table))
	for stem := range table {
		stems = append(stems, stem)
	}
	sort.Strings(stems)

	f, err := os.Create(s.path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCacheError, err, "create fingerprint cache %s", s.path)
	}

	writer := csv.NewWriter(f)
	for _, stem := range stems {
		if err := writer.Write([]string{stem, table[stem]}); err != nil {
			f.Close()
			return errors.Wrap(errors.ErrCodeCacheError, err, "write fingerprint cache %s", s.path)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeCacheError, err, "flush fingerprint cache %s", s.path)
	}

	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeCacheError, err, "close fingerprint cache %s", s.path)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
