package fpcache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(map[string]string{"a-fill-001": "deadbeef"})
	defer s.Close()

	table, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if table["a-fill-001"] != "deadbeef" {
		t.Errorf("seeded digest missing: %v", table)
	}

	// Mutating the loaded map must not leak back into the store.
	table["a-fill-001"] = "mutated"
	again, _ := s.Load(ctx)
	if again["a-fill-001"] != "deadbeef" {
		t.Error("Load should return a copy")
	}

	if err := s.Save(ctx, map[string]string{"b-path-002": "cafe0123"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	saved, _ := s.Load(ctx)
	if _, ok := saved["a-fill-001"]; ok {
		t.Error("Save should replace, merging is the caller's job")
	}
	if saved["b-path-002"] != "cafe0123" {
		t.Errorf("saved table = %v", saved)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), DefaultFilename))
	table, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(table) != 0 {
		t.Errorf("missing file should load empty, got %v", table)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFilename)
	s := NewFileStore(path)
	defer s.Close()

	in := map[string]string{
		"a-fill-001": "deadbeef",
		"e-svg-010":  "0badcafe",
	}
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	out, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d entries, want %d", len(out), len(in))
	}
	for stem, digest := range in {
		if out[stem] != digest {
			t.Errorf("out[%s] = %s, want %s", stem, out[stem], digest)
		}
	}
}

func TestFileStoreSortedOutput(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFilename)
	s := NewFileStore(path)

	if err := s.Save(ctx, map[string]string{
		"zebra": "11111111",
		"alpha": "22222222",
		"mango": "33333333",
	}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{"alpha,22222222", "mango,33333333", "zebra,11111111"}
	for i, line := range want {
		if lines[i] != line {
			t.Errorf("line %d = %q, want %q", i, lines[i], line)
		}
	}
}

func TestFileStoreMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	if err := os.WriteFile(path, []byte("one-column-only\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	_, err := s.Load(context.Background())
	if !errors.Is(err, errors.ErrCodeCacheError) {
		t.Errorf("want CACHE_ERROR, got %v", err)
	}
}
