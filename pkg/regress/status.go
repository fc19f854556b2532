package regress

// Status is the terminal classification of one corpus entry within a run.
//
// Entries start as Pending. The Skipped* statuses and Accepted let the loop
// continue; RenderFailed and Regressed halt the entire run. An entry that
// hits a fatal infrastructure error (differ broke, cache unreadable) stays
// Pending in the halt record: it never reached a classification.
type Status int

const (
	// StatusPending means the entry has not reached a terminal state.
	StatusPending Status = iota

	// StatusSkippedBeforeCursor means the entry was validated by an earlier
	// pass and sits before the resume position.
	StatusSkippedBeforeCursor

	// StatusSkippedAllowedCrash means the entry is expected to crash the
	// renderer and is skipped without invoking anything.
	StatusSkippedAllowedCrash

	// StatusSkippedUnchanged means the candidate's normalized output is
	// byte-identical to the last accepted run, so the raster comparison is
	// provably unnecessary.
	StatusSkippedUnchanged

	// StatusRenderFailed means a renderer exited non-zero (or timed out) on
	// an entry not in the crash-allowed set. Halts the run.
	StatusRenderFailed

	// StatusAccepted means the visual difference is within tolerance.
	StatusAccepted

	// StatusRegressed means the visual difference exceeds tolerance.
	// Halts the run; artifacts are preserved for inspection.
	StatusRegressed
)

// String returns the status name for logs and summaries.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSkippedBeforeCursor:
		return "skipped (before cursor)"
	case StatusSkippedAllowedCrash:
		return "skipped (allowed crash)"
	case StatusSkippedUnchanged:
		return "skipped (unchanged)"
	case StatusRenderFailed:
		return "render failed"
	case StatusAccepted:
		return "accepted"
	case StatusRegressed:
		return "regressed"
	default:
		return "unknown"
	}
}

// Halts reports whether the status stops the run.
func (s Status) Halts() bool {
	return s == StatusRenderFailed || s == StatusRegressed
}
