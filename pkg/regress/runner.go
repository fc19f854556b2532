// Package regress implements the comparison engine: it drives the corpus in
// a deterministic order, renders each entry with the candidate and reference
// renderers, and decides whether the visual difference is acceptable.
//
// The engine halts on the first unresolved failure and durably records the
// resume position, so a multi-thousand-entry corpus can be worked through
// across repeated invocations. See Runner.Run for the per-entry state
// machine.
package regress

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pixeldrift/pixeldrift/pkg/corpus"
	"github.com/pixeldrift/pixeldrift/pkg/errors"
	"github.com/pixeldrift/pixeldrift/pkg/fingerprint"
	"github.com/pixeldrift/pixeldrift/pkg/fpcache"
	"github.com/pixeldrift/pixeldrift/pkg/imagediff"
	"github.com/pixeldrift/pixeldrift/pkg/observability"
	"github.com/pixeldrift/pixeldrift/pkg/render"
	"github.com/pixeldrift/pixeldrift/pkg/tolerance"
)

// CursorStore persists the resume position between runs.
type CursorStore interface {
	Load() (int, error)
	Save(pos int) error
}

// Config holds the engine's run parameters. Everything is explicit; the
// engine reads no ambient process state.
type Config struct {
	CorpusDir string
	CorpusExt string // file extension filter, default ".svg"
	WorkDir   string // scratch directory for render artifacts

	// NoiseFloor is the AE value absorbed as anti-aliasing and rounding
	// jitter. A difference is accepted when it is at or below the floor,
	// or exactly equals the entry's registered allowance.
	NoiseFloor int

	// CIMode makes a fingerprint mismatch fatal: on CI the cache is
	// authoritative and any drift needs a human decision.
	CIMode bool
}

// Runner orchestrates a regression run. Collaborators left nil are replaced
// with safe defaults by New.
type Runner struct {
	Config    Config
	Candidate render.Renderer   // produces intermediate output and rasters
	Reference render.Rasterizer // the known-good build
	Differ    imagediff.Differ
	Tolerance *tolerance.Registry
	Cache     fpcache.Store
	Cursor    CursorStore
	Logger    *log.Logger
	Events    Events
}

// New creates a Runner with defaults filled in: an empty tolerance registry,
// an in-memory fingerprint store, the native differ, and no-op events.
// Candidate and Reference have no defaults; Run fails without them.
func New(cfg Config) *Runner {
	if cfg.CorpusExt == "" {
		cfg.CorpusExt = corpus.DefaultExt
	}
	return &Runner{
		Config:    cfg,
		Differ:    imagediff.NewNative(),
		Tolerance: tolerance.New(),
		Cache:     fpcache.NewMemStore(nil),
		Cursor:    noCursor{},
		Logger:    log.New(io.Discard),
		Events:    NoopEvents{},
	}
}

// noCursor is the default CursorStore: always start from the beginning and
// forget the position. Real runs plug in a cursor.File.
type noCursor struct{}

func (noCursor) Load() (int, error) { return 0, nil }
func (noCursor) Save(int) error     { return nil }

// artifacts names the scratch files of one entry inside the work dir.
//
// The simplified output keeps the input's basename: inputs that reference
// sibling files by relative path must keep resolving them from the work dir.
type artifacts struct {
	simplified string // candidate's normalized intermediate output
	inputCopy  string // preserved copy of the input, written on regression
	refPNG     string // reference raster
	candPNG    string // candidate raster
	diffPNG    string // differ's visual diff
}

func (r *Runner) artifactsFor(e corpus.Entry) artifacts {
	base := filepath.Base(e.Path)
	return artifacts{
		simplified: filepath.Join(r.Config.WorkDir, base),
		inputCopy:  filepath.Join(r.Config.WorkDir, e.Stem+"_orig"+filepath.Ext(base)),
		refPNG:     filepath.Join(r.Config.WorkDir, e.Stem+"_orig.png"),
		candPNG:    filepath.Join(r.Config.WorkDir, e.Stem+"_cand.png"),
		diffPNG:    filepath.Join(r.Config.WorkDir, e.Stem+"_diff.png"),
	}
}

// remove deletes every artifact. Missing files are fine: this doubles as
// the cleanup of leftovers from a previously interrupted run.
func (a artifacts) remove() {
	for _, path := range []string{a.simplified, a.inputCopy, a.refPNG, a.candPNG, a.diffPNG} {
		_ = os.Remove(path)
	}
}

// Run processes the whole corpus and returns the run summary. The returned
// error is non-nil both for infrastructure failures and for a halted run;
// in the latter case the Result's Halt field carries the details and the
// cursor has been persisted at the halting index.
//
// Durable state (cursor, fingerprint table) is written only at the end of
// the run. Cancellation mid-corpus returns before any write, leaving both
// stores at their last committed state.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.Candidate == nil || r.Reference == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "runner needs a candidate and a reference renderer")
	}

	result := &Result{
		RunID:  uuid.NewString(),
		Counts: make(map[Status]int),
	}
	started := time.Now()

	entries, err := corpus.List(r.Config.CorpusDir, r.Config.CorpusExt)
	if err != nil {
		return nil, err
	}
	result.Total = len(entries)

	if err := os.MkdirAll(r.Config.WorkDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "create work dir %s", r.Config.WorkDir)
	}

	table, err := r.Cache.Load(ctx)
	if err != nil {
		return nil, err
	}

	start, err := r.Cursor.Load()
	if err != nil {
		return nil, err
	}
	if start > 0 {
		r.Logger.Info("resuming after previous halt", "run_id", result.RunID, "cursor", start)
	}

	r.Logger.Info("starting regression run",
		"run_id", result.RunID,
		"entries", len(entries),
		"cached_digests", len(table))

	var halt *Halt
	for idx, entry := range entries {
		if err := ctx.Err(); err != nil {
			// Leave the cursor and fingerprint table untouched: both hold
			// their last committed state.
			return result, err
		}

		status, ae, perr := r.processEntry(ctx, idx, start, len(entries), entry, table)
		result.Counts[status]++
		r.Events.OnStatus(idx, entry.Stem, status, ae)

		if status.Halts() || perr != nil {
			halt = &Halt{Index: idx, Stem: entry.Stem, Status: status, AE: ae, Err: perr}
			r.Logger.Error("run halted",
				"stem", entry.Stem,
				"index", idx,
				"status", status.String(),
				"err", perr)
			break
		}
	}

	lastIdx := 0
	if halt != nil {
		lastIdx = halt.Index
		result.Halt = halt
	}

	// Safe point: persist resume position and the merged fingerprint table.
	// Accepted entries keep their new digests even when a later entry
	// halted the run.
	if err := r.Cursor.Save(lastIdx); err != nil {
		return result, err
	}
	if err := r.Cache.Save(ctx, table); err != nil {
		return result, err
	}

	result.Duration = time.Since(started)
	r.Events.OnDone(result)

	if halt != nil {
		return result, r.haltError(halt)
	}

	r.Logger.Info("corpus passed",
		"run_id", result.RunID,
		"accepted", result.Counts[StatusAccepted],
		"unchanged", result.Counts[StatusSkippedUnchanged],
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// processEntry runs the per-entry state machine and returns the terminal
// status. A non-nil error means the run must halt even though the entry
// never reached a halting status (differ failure, unreadable output).
func (r *Runner) processEntry(ctx context.Context, idx, start, total int, entry corpus.Entry, table map[string]string) (Status, int, error) {
	a := r.artifactsFor(entry)

	// Always clean first: leftovers of an interrupted attempt at this entry
	// must not survive into the comparison below.
	a.remove()

	if idx < start {
		return StatusSkippedBeforeCursor, 0, nil
	}

	r.Events.OnEntry(idx, total, entry.Stem)
	r.Logger.Debug("processing entry", "index", idx, "stem", entry.Stem)

	if r.Tolerance.CrashAllowed(entry.Stem) {
		return StatusSkippedAllowedCrash, 0, nil
	}

	// Produce the candidate's normalized intermediate output.
	if err := timeRender(ctx, render.OpSimplify, entry.Stem, func() error {
		return r.Candidate.Simplify(ctx, entry.Path, a.simplified)
	}); err != nil {
		return StatusRenderFailed, 0, errors.Wrap(r.renderCode(err), err,
			"candidate renderer failed on %s", entry.Stem)
	}

	digest, err := fingerprint.DigestFile(a.simplified)
	if err != nil {
		return StatusPending, 0, errors.Wrap(errors.ErrCodeInternal, err,
			"read candidate output for %s", entry.Stem)
	}

	if cached, ok := table[entry.Stem]; ok && cached == digest {
		// Identical intermediate output guarantees an identical raster;
		// skip the expensive path entirely.
		observability.Cache().OnCacheHit(ctx, entry.Stem)
		a.remove()
		return StatusSkippedUnchanged, 0, nil
	}
	observability.Cache().OnCacheMiss(ctx, entry.Stem)

	if r.Config.CIMode {
		// In CI the fingerprint table ships with the change under test, so
		// a mismatch means an unreviewed output drift. Log the simplified
		// content for the build log and halt.
		r.logSimplified(a.simplified)
		return StatusPending, 0, errors.New(errors.ErrCodeCacheError,
			"fingerprint mismatch for %s: %s != %s", entry.Stem, digest, table[entry.Stem])
	}

	// The intermediate changed (or was never cached): compare rasters.
	if err := timeRender(ctx, render.OpRasterize, entry.Stem, func() error {
		return r.Reference.Rasterize(ctx, entry.Path, a.refPNG)
	}); err != nil {
		return StatusRenderFailed, 0, errors.Wrap(r.renderCode(err), err,
			"reference renderer failed on %s", entry.Stem)
	}
	if err := timeRender(ctx, render.OpRasterize, entry.Stem, func() error {
		return r.Candidate.Rasterize(ctx, a.simplified, a.candPNG)
	}); err != nil {
		return StatusRenderFailed, 0, errors.Wrap(r.renderCode(err), err,
			"candidate rasterizer failed on %s", entry.Stem)
	}

	observability.Compare().OnCompareStart(ctx, entry.Stem)
	compareStarted := time.Now()
	ae, err := r.Differ.AbsoluteError(ctx, a.refPNG, a.candPNG, a.diffPNG)
	observability.Compare().OnCompareComplete(ctx, entry.Stem, ae, time.Since(compareStarted), err)
	if err != nil {
		return StatusPending, 0, err
	}

	if ae <= r.Config.NoiseFloor || ae == r.Tolerance.AllowedDifference(entry.Stem) {
		// Update the digest only on acceptance: a regressed entry must be
		// re-verified by pixel diff after its fix, never served from cache.
		table[entry.Stem] = digest
		observability.Cache().OnCacheSet(ctx, entry.Stem)
		a.remove()
		r.Logger.Debug("entry accepted", "stem", entry.Stem, "ae", ae)
		return StatusAccepted, ae, nil
	}

	// Regression: keep every artifact and add a copy of the input, so the
	// work dir holds the full evidence for inspection.
	if err := copyFile(entry.Path, a.inputCopy); err != nil {
		r.Logger.Warn("could not preserve input", "stem", entry.Stem, "err", err)
	}
	return StatusRegressed, ae, nil
}

// timeRender runs one renderer invocation inside its observability hooks.
func timeRender(ctx context.Context, op render.Op, stem string, fn func() error) error {
	started := time.Now()
	observability.Render().OnRenderStart(ctx, string(op), stem)
	err := fn()
	observability.Render().OnRenderComplete(ctx, string(op), stem, time.Since(started), err)
	return err
}

// renderCode maps a renderer error to its error code.
func (r *Runner) renderCode(err error) errors.Code {
	var rerr *render.Error
	if stderrors.As(err, &rerr) && rerr.Timeout {
		return errors.ErrCodeRenderTimeout
	}
	return errors.ErrCodeRenderFailed
}

// haltError converts a halt record into the error reported to the caller.
func (r *Runner) haltError(h *Halt) error {
	if h.Err != nil {
		return h.Err
	}
	if h.Status == StatusRegressed {
		return errors.New(errors.ErrCodeRegression,
			"%s: images differ by %d pixels", h.Stem, h.AE)
	}
	return errors.New(errors.ErrCodeInternal, "%s: run halted with status %s", h.Stem, h.Status)
}

// logSimplified dumps the simplified output into the log for CI debugging.
func (r *Runner) logSimplified(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	r.Logger.Error("simplified output", "content", string(data))
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
