package imagediff

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

// writeTestPNG writes a w x h image, painting the first n pixels (row-major)
// black and the rest white.
func writeTestPNG(t *testing.T, path string, w, h, n int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if y*w+x < n {
				c = color.RGBA{A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestNativeIdentical(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	diff := filepath.Join(dir, "diff.png")
	writeTestPNG(t, a, 10, 10, 0)
	writeTestPNG(t, b, 10, 10, 0)

	ae, err := NewNative().AbsoluteError(context.Background(), a, b, diff)
	if err != nil {
		t.Fatalf("AbsoluteError error: %v", err)
	}
	if ae != 0 {
		t.Errorf("AE = %d, want 0", ae)
	}
	if _, err := os.Stat(diff); !os.IsNotExist(err) {
		t.Error("diff image written for identical images")
	}
}

func TestNativeDifferent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	diff := filepath.Join(dir, "diff.png")
	writeTestPNG(t, a, 10, 10, 0)
	writeTestPNG(t, b, 10, 10, 7)

	ae, err := NewNative().AbsoluteError(context.Background(), a, b, diff)
	if err != nil {
		t.Fatalf("AbsoluteError error: %v", err)
	}
	if ae != 7 {
		t.Errorf("AE = %d, want 7", ae)
	}

	// Diff image exists and marks exactly the differing pixels red.
	f, err := os.Open(diff)
	if err != nil {
		t.Fatalf("diff image missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, g, bb, _ := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 0 || bb>>8 != 0 {
		t.Errorf("diff pixel (0,0) = %d,%d,%d, want red", r>>8, g>>8, bb>>8)
	}
	r, g, bb, _ = img.At(9, 9).RGBA()
	if r>>8 != 255 || g>>8 != 255 || bb>>8 != 255 {
		t.Errorf("diff pixel (9,9) = %d,%d,%d, want white", r>>8, g>>8, bb>>8)
	}
}

func TestNativeSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeTestPNG(t, a, 10, 10, 0)
	writeTestPNG(t, b, 8, 10, 0)

	_, err := NewNative().AbsoluteError(context.Background(), a, b, "")
	if !errors.Is(err, errors.ErrCodeSizeMismatch) {
		t.Errorf("want SIZE_MISMATCH, got %v", err)
	}
}

func TestNativeMissingFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	writeTestPNG(t, a, 4, 4, 0)

	_, err := NewNative().AbsoluteError(context.Background(), a, filepath.Join(dir, "missing.png"), "")
	if !errors.Is(err, errors.ErrCodeDiffFailed) {
		t.Errorf("want DIFF_FAILED, got %v", err)
	}
}

func TestParseAE(t *testing.T) {
	tests := []struct {
		out     string
		want    int
		wantErr bool
	}{
		{"147", 147, false},
		{"0", 0, false},
		{"147 (0.00224)", 147, false},
		{"1.21e+03", 1210, false},
		{"", 0, true},
		{"compare: image widths or heights differ", 0, true},
	}

	for _, tt := range tests {
		got, err := parseAE(tt.out)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAE(%q) error = %v, wantErr %v", tt.out, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseAE(%q) = %d, want %d", tt.out, got, tt.want)
		}
	}
}

func TestMagickStubBinary(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "compare")
	script := "#!/bin/sh\necho 42 >&2\nexit 1\n"
	if err := os.WriteFile(stub, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	m := &Magick{Binary: stub}
	ae, err := m.AbsoluteError(context.Background(), "a.png", "b.png", filepath.Join(dir, "d.png"))
	if err != nil {
		t.Fatalf("AbsoluteError error: %v", err)
	}
	if ae != 42 {
		t.Errorf("AE = %d, want 42", ae)
	}
}

func TestMagickStubFatal(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "compare")
	script := "#!/bin/sh\necho 'compare: images too dissimilar' >&2\nexit 2\n"
	if err := os.WriteFile(stub, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	m := &Magick{Binary: stub}
	_, err := m.AbsoluteError(context.Background(), "a.png", "b.png", "")
	if !errors.Is(err, errors.ErrCodeDiffFailed) {
		t.Errorf("want DIFF_FAILED, got %v", err)
	}
}
