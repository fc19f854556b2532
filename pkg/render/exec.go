package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

// stderrTail caps how much renderer stderr is kept in an Error.
const stderrTail = 512

// Command is an argv template for one renderer operation. The placeholders
// {input} and {output} are substituted per invocation.
//
// Examples:
//
//	Command{Argv: []string{"usvg", "{input}", "{output}", "--dpi", "96"}}
//	Command{Argv: []string{"node", "svgrender.js", "{input}", "{output}", "200"}, Dir: "chrome-svgrender"}
type Command struct {
	Argv []string // command and arguments, with placeholders
	Dir  string   // working directory; empty means the process default
}

// expand substitutes the placeholders into a fresh argv slice.
func (c Command) expand(input, output string) []string {
	argv := make([]string, len(c.Argv))
	for i, arg := range c.Argv {
		arg = strings.ReplaceAll(arg, "{input}", input)
		arg = strings.ReplaceAll(arg, "{output}", output)
		argv[i] = arg
	}
	return argv
}

// Exec invokes external renderer binaries. Each operation is a blocking
// subprocess call bounded by Timeout; an expired deadline is reported as a
// timed-out *Error so the engine treats a hung renderer like a failed one.
type Exec struct {
	simplify  Command
	rasterize Command
	timeout   time.Duration
}

// NewExec creates an exec-backed renderer. A zero timeout disables the
// per-invocation deadline. The simplify command may be empty for renderers
// that only rasterize (the reference build).
func NewExec(simplify, rasterize Command, timeout time.Duration) *Exec {
	return &Exec{simplify: simplify, rasterize: rasterize, timeout: timeout}
}

// Simplify produces the normalized intermediate output for inputPath.
func (e *Exec) Simplify(ctx context.Context, inputPath, outputPath string) error {
	if len(e.simplify.Argv) == 0 {
		return errors.New(errors.ErrCodeInternal, "renderer has no simplify command configured")
	}
	return e.run(ctx, OpSimplify, e.simplify, inputPath, outputPath)
}

// Rasterize renders inputPath to a raster image at outputPath.
func (e *Exec) Rasterize(ctx context.Context, inputPath, outputPath string) error {
	if len(e.rasterize.Argv) == 0 {
		return errors.New(errors.ErrCodeInternal, "renderer has no rasterize command configured")
	}
	return e.run(ctx, OpRasterize, e.rasterize, inputPath, outputPath)
}

func (e *Exec) run(ctx context.Context, op Op, command Command, inputPath, outputPath string) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	argv := command.expand(inputPath, outputPath)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = command.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	rerr := &Error{
		Op:       op,
		Input:    inputPath,
		ExitCode: -1,
		Stderr:   tail(stderr.String()),
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		rerr.ExitCode = exitErr.ExitCode()
	}
	if ctx.Err() == context.DeadlineExceeded {
		rerr.Timeout = true
	}
	return rerr
}

// tail returns the last stderrTail bytes of s, trimmed.
func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		s = s[len(s)-stderrTail:]
	}
	return s
}

// Ensure Exec implements Renderer.
var _ Renderer = (*Exec)(nil)
