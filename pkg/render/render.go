// Package render defines the renderer capability the comparison engine is
// written against.
//
// The engine never inspects process exit codes directly: renderer failures
// surface as a typed *Error carrying the operation, the input, and whether
// the invocation timed out. This keeps the comparator's state machine
// expressed against an interface and lets tests substitute an in-memory
// double for the external binaries.
package render

import (
	"context"
	"fmt"
)

// Op names a renderer operation.
type Op string

const (
	// OpSimplify produces the normalized intermediate output for an input.
	OpSimplify Op = "simplify"

	// OpRasterize renders a document to a raster image at the fixed
	// comparison resolution.
	OpRasterize Op = "rasterize"
)

// Rasterizer renders a document to a raster image.
type Rasterizer interface {
	Rasterize(ctx context.Context, inputPath, outputPath string) error
}

// Renderer is the candidate renderer capability: producing normalized
// intermediate output plus rasterization. The reference side only needs
// Rasterizer.
type Renderer interface {
	Rasterizer
	Simplify(ctx context.Context, inputPath, outputPath string) error
}

// Error is a structured renderer failure.
type Error struct {
	Op       Op     // which operation failed
	Input    string // the input document
	ExitCode int    // process exit code, -1 when the process did not exit normally
	Timeout  bool   // the invocation exceeded its deadline
	Stderr   string // trailing stderr output, for diagnostics
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s %s: timed out", e.Op, e.Input)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s %s: exit status %d: %s", e.Op, e.Input, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s %s: exit status %d", e.Op, e.Input, e.ExitCode)
}
