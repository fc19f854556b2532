package cursor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

func TestLoadAbsentFile(t *testing.T) {
	c := NewFile(t.TempDir())

	pos, err := c.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if pos != 0 {
		t.Errorf("Load() = %d, want 0 for absent file", pos)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := NewFile(t.TempDir())

	for _, pos := range []int{0, 1, 17, 40123} {
		if err := c.Save(pos); err != nil {
			t.Fatalf("Save(%d) error: %v", pos, err)
		}
		got, err := c.Load()
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if got != pos {
			t.Errorf("Load() = %d, want %d", got, pos)
		}
	}
}

func TestSaveOverwrites(t *testing.T) {
	c := NewFile(t.TempDir())

	if err := c.Save(42); err != nil {
		t.Fatal(err)
	}
	if err := c.Save(0); err != nil {
		t.Fatal(err)
	}

	got, err := c.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("Load() = %d, want 0 after overwrite", got)
	}
}

func TestLoadFileFormat(t *testing.T) {
	dir := t.TempDir()
	c := NewFile(dir)

	// Trailing newline and surrounding whitespace are tolerated.
	if err := os.WriteFile(filepath.Join(dir, Filename), []byte(" 7 \n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := c.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != 7 {
		t.Errorf("Load() = %d, want 7", got)
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"garbage", "not-a-number\n"},
		{"negative", "-3\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			c := NewFile(dir)
			if err := os.WriteFile(filepath.Join(dir, Filename), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := c.Load()
			if !errors.Is(err, errors.ErrCodeCursorError) {
				t.Errorf("want CURSOR_ERROR, got %v", err)
			}
		})
	}
}

func TestSaveNegative(t *testing.T) {
	c := NewFile(t.TempDir())
	if err := c.Save(-1); !errors.Is(err, errors.ErrCodeCursorError) {
		t.Errorf("want CURSOR_ERROR, got %v", err)
	}
}
