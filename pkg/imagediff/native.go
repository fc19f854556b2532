package imagediff

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

// Native is an in-process Differ over PNG files.
type Native struct{}

// NewNative creates the in-process differ.
func NewNative() *Native {
	return &Native{}
}

// AbsoluteError decodes both images and counts pixels whose colors are not
// exactly equal. Differing pixels are marked red on a white background in
// the diff image.
func (n *Native) AbsoluteError(ctx context.Context, pathA, pathB, diffPath string) (int, error) {
	imgA, err := decodePNG(pathA)
	if err != nil {
		return 0, err
	}
	imgB, err := decodePNG(pathB)
	if err != nil {
		return 0, err
	}

	boundsA := imgA.Bounds()
	boundsB := imgB.Bounds()
	if boundsA.Dx() != boundsB.Dx() || boundsA.Dy() != boundsB.Dy() {
		return 0, errors.Wrap(errors.ErrCodeSizeMismatch, &SizeMismatchError{
			WidthA: boundsA.Dx(), HeightA: boundsA.Dy(),
			WidthB: boundsB.Dx(), HeightB: boundsB.Dy(),
		}, "compare %s with %s", pathA, pathB)
	}

	var (
		red   = color.RGBA{R: 255, A: 255}
		white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	)

	diff := image.NewRGBA(image.Rect(0, 0, boundsA.Dx(), boundsA.Dy()))
	count := 0
	for y := 0; y < boundsA.Dy(); y++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		for x := 0; x < boundsA.Dx(); x++ {
			ra, ga, ba, aa := imgA.At(boundsA.Min.X+x, boundsA.Min.Y+y).RGBA()
			rb, gb, bb, ab := imgB.At(boundsB.Min.X+x, boundsB.Min.Y+y).RGBA()
			if ra != rb || ga != gb || ba != bb || aa != ab {
				diff.SetRGBA(x, y, red)
				count++
			} else {
				diff.SetRGBA(x, y, white)
			}
		}
	}

	if count > 0 && diffPath != "" {
		if err := writePNG(diffPath, diff); err != nil {
			return 0, err
		}
	}

	return count, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDiffFailed, err, "open image %s", path)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDiffFailed, err, "decode image %s", path)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDiffFailed, err, "create diff image %s", path)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeDiffFailed, err, "encode diff image %s", path)
	}
	return f.Close()
}

// Ensure Native implements Differ.
var _ Differ = (*Native)(nil)
