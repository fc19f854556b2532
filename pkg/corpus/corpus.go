// Package corpus lists and orders the test input documents under regression
// testing.
//
// A corpus is a directory of vector documents (SVG by default). Entries are
// processed as an ordered sequence, sorted lexicographically by filename.
// The order is load-bearing: the progress cursor stores a position inside
// this sequence, so two runs over the same directory must see the same order.
package corpus

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

// DefaultExt is the file extension entries are filtered by.
const DefaultExt = ".svg"

// Entry is one input document of the corpus.
type Entry struct {
	Path string // absolute or dir-relative path to the input file
	Stem string // filename without extension, the entry's stable identity
}

// List returns the corpus entries of dir, filtered by extension and sorted
// lexicographically by filename. ext must include the leading dot; an empty
// ext means DefaultExt. Subdirectories are not descended into.
//
// An empty result is an error: a regression run over zero entries is almost
// always a misconfigured corpus directory.
func List(dir, ext string) ([]Entry, error) {
	if ext == "" {
		ext = DefaultExt
	}

	infos, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read corpus directory %s", dir)
	}

	var entries []Entry
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		name := info.Name()
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if err := errors.ValidateStem(stem); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Path: filepath.Join(dir, name),
			Stem: stem,
		})
	}

	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeCorpusEmpty, "no %s files in %s", ext, dir)
	}

	sort.Slice(entries, func(i, j int) bool {
		return filepath.Base(entries[i].Path) < filepath.Base(entries[j].Path)
	})

	return entries, nil
}
