package fingerprint

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDigest(t *testing.T) {
	// Determinism
	d1 := Digest([]byte("<svg width=\"100\"/>"))
	d2 := Digest([]byte("<svg width=\"100\"/>"))
	if d1 != d2 {
		t.Error("Digest should be deterministic")
	}

	// Different inputs produce different digests
	d3 := Digest([]byte("<svg width=\"200\"/>"))
	if d1 == d3 {
		t.Error("Different inputs should produce different digests")
	}

	// Truncated length
	if len(d1) != DigestLen {
		t.Errorf("Digest length = %d, want %d", len(d1), DigestLen)
	}

	// Hex only
	for _, r := range d1 {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			t.Errorf("unexpected digest character %q in %s", r, d1)
		}
	}
}

func TestDigestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	if err := os.WriteFile(path, []byte("<svg/>"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := DigestFile(path)
	if err != nil {
		t.Fatalf("DigestFile error: %v", err)
	}
	if want := Digest([]byte("<svg/>")); got != want {
		t.Errorf("DigestFile = %s, want %s", got, want)
	}
}

func TestDigestFileMissing(t *testing.T) {
	if _, err := DigestFile(filepath.Join(t.TempDir(), "missing.svg")); err == nil {
		t.Error("expected error for missing file")
	}
}
