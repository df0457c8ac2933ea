// Package reliability tracks whether a single editing context's
// self-reported text snapshots can be trusted for destructive rewrites.
// Each context carries its own tracker; contexts never share one.
package reliability

// Thresholds for demotion and recovery. One bad snapshot can be a
// timing hiccup, so demotion takes two consecutive failures. Recovery
// demands a longer streak because the cost of a wrong rewrite is
// corrupted user text.
const (
	FailureThreshold  = 2
	RecoveryThreshold = 3
)

// State labels the trust level of a context's snapshots.
type State int

const (
	Reliable State = iota
	Unreliable
)

func (s State) String() string {
	if s == Unreliable {
		return "unreliable"
	}
	return "reliable"
}

// Tracker is the per-context reliability state machine. The zero value
// is a Reliable tracker with clean counters.
type Tracker struct {
	state     State
	failures  int
	successes int
}

// State returns the current trust level.
func (t *Tracker) State() State { return t.state }

// Unreliable reports whether destructive snapshot-based rewrites are
// currently forbidden.
func (t *Tracker) Unreliable() bool { return t.state == Unreliable }

// RecordSuccess notes a snapshot that was usable for a rewrite. It
// breaks any failure streak and, while Unreliable, counts toward
// recovery. Returns true when this success flips the state back to
// Reliable.
func (t *Tracker) RecordSuccess() bool {
	t.successes++
	t.failures = 0
	if t.state == Unreliable && t.successes >= RecoveryThreshold {
		t.state = Reliable
		t.successes = 0
		return true
	}
	return false
}

// RecordFailure notes a stale or unusable snapshot. It breaks any
// success streak and, once the failure streak reaches the threshold,
// demotes the context. Returns true when this failure causes the
// demotion.
func (t *Tracker) RecordFailure() bool {
	t.failures++
	t.successes = 0
	if t.state == Reliable && t.failures >= FailureThreshold {
		t.state = Unreliable
		return true
	}
	return false
}

// RecordProbe notes the outcome of a read-only probe taken while
// Unreliable. A structurally valid probe counts like a success; an
// invalid one resets the recovery streak without deepening the failure
// count. Returns true when the probe completes recovery.
func (t *Tracker) RecordProbe(ok bool) bool {
	if t.state != Unreliable {
		return false
	}
	if !ok {
		t.successes = 0
		return false
	}
	t.successes++
	t.failures = 0
	if t.successes >= RecoveryThreshold {
		t.state = Reliable
		t.successes = 0
		return true
	}
	return false
}

// Reset returns the tracker to a fresh Reliable state. Called on focus
// change: a new context deserves a clean slate.
func (t *Tracker) Reset() {
	t.state = Reliable
	t.failures = 0
	t.successes = 0
}
