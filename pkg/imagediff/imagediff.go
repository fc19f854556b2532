// Package imagediff measures the visual difference between two raster
// images.
//
// The metric is absolute error (AE): the count of pixels that differ
// between the two images. Two implementations are provided:
//
//   - Native decodes both PNGs in-process and compares pixels exactly,
//     writing a red-on-white diff image for inspection when they differ.
//   - Magick shells out to ImageMagick's compare tool with a small fuzz
//     factor, matching established CI setups.
//
// Images of different dimensions cannot be meaningfully compared; both
// implementations report that as a fatal typed error.
package imagediff

import (
	"context"
	"fmt"
)

// Differ computes the absolute-error pixel count between two images.
type Differ interface {
	// AbsoluteError compares the images at pathA and pathB and returns the
	// number of differing pixels. When the count is non-zero and diffPath is
	// not empty, a visual diff image is written there.
	AbsoluteError(ctx context.Context, pathA, pathB, diffPath string) (int, error)
}

// SizeMismatchError reports images whose dimensions differ.
type SizeMismatchError struct {
	WidthA, HeightA int
	WidthB, HeightB int
}

// Error implements the error interface.
func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("image size mismatch: %dx%d vs %dx%d",
		e.WidthA, e.HeightA, e.WidthB, e.HeightB)
}
