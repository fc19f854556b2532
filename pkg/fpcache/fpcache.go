// Package fpcache persists the fingerprint table of last known-good
// candidate outputs.
//
// The table maps a corpus entry stem to the short digest of the candidate
// renderer's normalized output from the last run in which that entry was
// accepted. It is loaded whole at run start and saved whole at run end; the
// comparator only mutates the digests of entries it accepted, so a save
// merges rather than replaces.
//
// Backends:
//   - file: a record-per-line CSV table, the default for local runs
//   - redis: a Redis hash, for shared CI runners
//   - mem: in-memory, for tests and cache-disabled runs
package fpcache

import "context"

// Store loads and saves the fingerprint table.
type Store interface {
	// Load returns the persisted table. A missing backing table is not an
	// error: it returns an empty map (every entry will be re-verified).
	Load(ctx context.Context) (map[string]string, error)

	// Save persists the table, replacing the previous contents with the
	// caller's (already merged) map.
	Save(ctx context.Context, table map[string]string) error

	// Close releases backend resources.
	Close() error
}

// MemStore is an in-memory Store for tests and cache-disabled runs.
type MemStore struct {
	table map[string]string
}

// NewMemStore creates a MemStore, optionally pre-seeded with initial.
func NewMemStore(initial map[string]string) *MemStore {
	table := make(map[string]string, len(initial))
	for k, v := range initial {
		table[k] = v
	}
	return &MemStore{table: table}
}

// Load returns a copy of the stored table.
func (s *MemStore) Load(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(s.table))
	for k, v := range s.table {
		out[k] = v
	}
	return out, nil
}

// Save replaces the stored table with a copy of table.
func (s *MemStore) Save(ctx context.Context, table map[string]string) error {
	s.table = make(map[string]string, len(table))
	for k, v := range table {
		s.table[k] = v
	}
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemStore) Close() error {
	return nil
}

// Ensure MemStore implements Store.
var _ Store = (*MemStore)(nil)
