package regress

import "time"

// Result summarizes a completed run.
type Result struct {
	RunID    string         // unique identifier for log correlation
	Total    int            // corpus size
	Counts   map[Status]int // entries per terminal status
	Halt     *Halt          // nil when the run passed cleanly
	Duration time.Duration
}

// Clean reports whether the whole corpus passed.
func (r *Result) Clean() bool {
	return r.Halt == nil
}

// Halt describes where and why a run stopped.
type Halt struct {
	Index  int    // 0-based corpus index, the next run's resume position
	Stem   string // the offending entry
	Status Status // RenderFailed, Regressed, or Pending for infrastructure errors
	AE     int    // measured pixel difference, meaningful for Regressed
	Err    error  // the underlying typed error
}
