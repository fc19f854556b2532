// Package cursor persists the resume position of a regression run.
//
// The cursor is a single non-negative integer: the index, within the sorted
// corpus, of the first entry the next run must (re)examine. Zero means the
// previous run passed cleanly and the next run starts from the beginning.
//
// The file is read once at run start and overwritten exactly once at run
// end. The worst case of a torn write is one redone comparison, not data
// loss.
package cursor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

// Filename is the cursor file name inside the working directory.
const Filename = "pos.txt"

// File stores the cursor in a one-line text file.
type File struct {
	path string
}

// NewFile returns a cursor store backed by Filename inside workDir.
func NewFile(workDir string) *File {
	return &File{path: filepath.Join(workDir, Filename)}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Load returns the persisted cursor, or 0 when the file does not exist
// (fresh run). A file that exists but does not parse is an error: silently
// starting over would re-validate entries an operator believes are done.
func (f *File) Load() (int, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeCursorError, err, "read cursor %s", f.path)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
	pos, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, errors.New(errors.ErrCodeCursorError, "cursor %s: %q is not an integer", f.path, line)
	}
	if pos < 0 {
		return 0, errors.New(errors.ErrCodeCursorError, "cursor %s: negative position %d", f.path, pos)
	}
	return pos, nil
}

// Save overwrites the cursor file with pos.
func (f *File) Save(pos int) error {
	if pos < 0 {
		return errors.New(errors.ErrCodeCursorError, "refusing to save negative cursor %d", pos)
	}
	data := strconv.Itoa(pos) + "\n"
	if err := os.WriteFile(f.path, []byte(data), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeCursorError, err, "write cursor %s", f.path)
	}
	return nil
}
