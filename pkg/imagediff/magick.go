package imagediff

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

// Magick runs ImageMagick's compare tool with the AE metric.
//
// compare exits 0 for identical images and 1 for differing ones; both are
// valid measurements, with the pixel count printed to stderr. Any other
// exit status, or unparsable output, means the images could not be
// compared and is fatal.
type Magick struct {
	// Binary is the compare executable, default "compare".
	Binary string

	// Fuzz is the color-distance tolerance passed as -fuzz, e.g. "1%".
	// Empty disables fuzzing.
	Fuzz string
}

// NewMagick creates a Differ using ImageMagick compare with 1% fuzz, the
// tolerance that absorbs sub-pixel anti-aliasing noise between renderers.
func NewMagick() *Magick {
	return &Magick{Binary: "compare", Fuzz: "1%"}
}

// AbsoluteError invokes compare -metric AE on the two images.
func (m *Magick) AbsoluteError(ctx context.Context, pathA, pathB, diffPath string) (int, error) {
	binary := m.Binary
	if binary == "" {
		binary = "compare"
	}

	argv := []string{"-metric", "AE"}
	if m.Fuzz != "" {
		argv = append(argv, "-fuzz", m.Fuzz)
	}
	if diffPath == "" {
		diffPath = "/dev/null"
	}
	argv = append(argv, pathA, pathB, diffPath)

	cmd := exec.CommandContext(ctx, binary, argv...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok || exitErr.ExitCode() != 1 {
			return 0, errors.Wrap(errors.ErrCodeDiffFailed, err,
				"compare %s with %s: %s", pathA, pathB, strings.TrimSpace(output.String()))
		}
		// Exit status 1 means the images differ; the AE count follows.
	}

	ae, perr := parseAE(output.String())
	if perr != nil {
		return 0, errors.Wrap(errors.ErrCodeDiffFailed, perr,
			"compare %s with %s produced no AE value", pathA, pathB)
	}
	return ae, nil
}

// parseAE extracts the integer pixel count from compare's output. The tool
// prints the metric bare ("147") or in scientific notation with a parenthetical
// for normalized metrics; AE is always a bare count.
func parseAE(out string) (int, error) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) == 0 {
		return 0, errors.New(errors.ErrCodeDiffFailed, "empty compare output")
	}
	// Some versions print "147 (0.00224)"; the count is the first field.
	value := fields[0]
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f), nil
	}
	return 0, errors.New(errors.ErrCodeDiffFailed, "unparsable compare output %q", out)
}

// Ensure Magick implements Differ.
var _ Differ = (*Magick)(nil)
