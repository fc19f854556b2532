// Package tolerance holds the per-input acceptance policy for a regression
// run.
//
// Two operator-maintained tables feed the policy:
//   - an allow list of (stem, max pixel difference) pairs for entries with a
//     known, reviewed visual difference
//   - a crash-allowed list of stems for which a non-zero renderer exit is
//     expected (intentionally malformed inputs) and must be skipped silently
//
// Both tables are loaded once at startup and are read-only afterwards.
// Unknown stems default to zero tolerance and to crash-not-allowed.
package tolerance

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

// defaultCrashAllowed is the built-in set of inputs that legitimately make
// the renderer fail: non-UTF8 encodings and invalid declared sizes.
var defaultCrashAllowed = []string{
	"e-svg-007", // non-UTF8 encoding
	"e-svg-034", // invalid size
	"e-svg-035", // invalid size
	"e-svg-036", // invalid size
}

// Registry answers per-stem tolerance lookups.
type Registry struct {
	allowed      map[string]int
	crashAllowed map[string]struct{}
}

// New returns an empty registry: zero tolerance everywhere, with only the
// built-in crash-allowed set.
func New() *Registry {
	r := &Registry{
		allowed:      make(map[string]int),
		crashAllowed: make(map[string]struct{}),
	}
	for _, stem := range defaultCrashAllowed {
		r.crashAllowed[stem] = struct{}{}
	}
	return r
}

// AllowedDifference returns the maximum accepted pixel difference for stem.
// Stems without an allow-list entry get zero: any difference above the global
// noise floor is a regression.
func (r *Registry) AllowedDifference(stem string) int {
	return r.allowed[stem]
}

// CrashAllowed reports whether a renderer failure on stem is expected.
func (r *Registry) CrashAllowed(stem string) bool {
	_, ok := r.crashAllowed[stem]
	return ok
}

// LoadAllowances reads an allow-list file of CSV rows "stem,maxAE" into the
// registry. Malformed rows are a startup error, not a runtime surprise: the
// returned error names the offending record.
func (r *Registry) LoadAllowances(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAllowList, err, "open allow list %s", path)
	}
	defer f.Close()
	return r.ReadAllowances(f)
}

// ReadAllowances parses allow-list rows from rd. Exposed separately so tests
// and alternative sources can feed the registry without a file.
func (r *Registry) ReadAllowances(rd io.Reader) error {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = 2

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidAllowList, err, "allow list line %d", line)
		}

		stem := strings.TrimSpace(record[0])
		if err := errors.ValidateStem(stem); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidAllowList, err, "allow list line %d", line)
		}

		ae, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return errors.New(errors.ErrCodeInvalidAllowList,
				"allow list line %d: %q is not an integer", line, record[1])
		}
		if ae < 0 {
			return errors.New(errors.ErrCodeInvalidAllowList,
				"allow list line %d: negative allowance %d", line, ae)
		}

		r.allowed[stem] = ae
	}
}

// LoadCrashAllowed reads a crash-allowed file of one stem per line into the
// registry, extending the built-in set. Blank lines and '#' comments are
// skipped.
func (r *Registry) LoadCrashAllowed(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAllowList, err, "open crash-allowed list %s", path)
	}
	defer f.Close()
	return r.ReadCrashAllowed(f)
}

// ReadCrashAllowed parses crash-allowed stems from rd.
func (r *Registry) ReadCrashAllowed(rd io.Reader) error {
	scanner := bufio.NewScanner(rd)
	line := 0
	for scanner.Scan() {
		line++
		stem := strings.TrimSpace(scanner.Text())
		if stem == "" || strings.HasPrefix(stem, "#") {
			continue
		}
		if err := errors.ValidateStem(stem); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidAllowList, err, "crash-allowed list line %d", line)
		}
		r.crashAllowed[stem] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAllowList, err, "read crash-allowed list")
	}
	return nil
}
