// Package pkg provides the core libraries for pixeldrift visual regression testing.
//
// # Overview
//
// Pixeldrift renders a corpus of vector documents with two renderer builds
// (candidate and reference), compares the rasters pixel by pixel, and halts
// on the first entry whose difference exceeds tolerance. The pkg directory
// is organized around that loop:
//
//  1. [corpus] - Deterministic corpus enumeration
//  2. [render] - External renderer invocation
//  3. [imagediff] - Pixel comparison backends
//  4. [regress] - The comparison engine driving everything
//  5. [fpcache] / [cursor] - Durable run state
//
// # Architecture
//
// The typical data flow through pixeldrift:
//
//	corpus entry (SVG)
//	         ↓
//	    [render] candidate simplify (normalized intermediate output)
//	         ↓
//	    [fingerprint] digest → [fpcache] lookup (skip when unchanged)
//	         ↓
//	    [render] candidate + reference rasterize
//	         ↓
//	    [imagediff] absolute error → [tolerance] accept or halt
//
// # Quick Start
//
// Run a corpus comparison programmatically:
//
//	import (
//	    "context"
//	    "github.com/pixeldrift/pixeldrift/pkg/regress"
//	    "github.com/pixeldrift/pixeldrift/pkg/render"
//	)
//
//	runner := regress.New(regress.Config{
//	    CorpusDir:  "corpus",
//	    WorkDir:    "workdir",
//	    NoiseFloor: 20,
//	})
//	runner.Candidate = render.NewExec(simplifyCmd, rasterizeCmd, time.Minute)
//	runner.Reference = render.NewExec(render.Command{}, refRasterizeCmd, time.Minute)
//	result, err := runner.Run(context.Background())
//
// # Main Packages
//
// ## Engine
//
// [regress] - The comparison engine: per-entry state machine, halt-on-first
// regression, resumable runs. The CLI is a thin wrapper around it.
//
// [corpus] - Lists corpus entries in a stable byte-wise filename order so
// the resume cursor stays meaningful across runs.
//
// [tolerance] - Per-entry pixel allowances and the crash-allowed set.
//
// ## Renderers and Comparison
//
// [render] - Invokes external renderer binaries from argv templates with
// per-invocation timeouts. Both renderer builds go through this package.
//
// [imagediff] - Absolute-error pixel comparison. The native backend decodes
// PNGs in process; the magick backend shells out to ImageMagick's compare.
//
// ## Run State
//
// [fingerprint] - Short content digests of the normalized intermediate
// output, the key for skip decisions.
//
// [fpcache] - Fingerprint persistence with file (CSV), Redis, and in-memory
// backends behind one Store interface.
//
// [cursor] - The resume position of a halted run, a single small file in
// the work directory.
//
// ## Supporting
//
// [config] - TOML configuration with CLI flag overrides.
//
// [errors] - Structured errors with machine-readable codes.
//
// [observability] - Optional hooks for metrics backends; no-op by default.
//
// [buildinfo] - Version information injected at build time.
package pkg
