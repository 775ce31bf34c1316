package auth

import (
	"sync"
	"time"
)

type lockoutState struct {
	failures    int
	lockedUntil time.Time
}

// LockoutTracker counts failed login attempts per identity and enforces a
// temporary lock once the threshold is reached. State lives for the process
// lifetime only; this is advisory brute-force mitigation, not a standalone
// security boundary.
type LockoutTracker struct {
	mu        sync.Mutex
	threshold int
	duration  time.Duration
	states    map[string]*lockoutState

	now func() time.Time
}

func NewLockoutTracker(threshold int, duration time.Duration) *LockoutTracker {
	return &LockoutTracker{
		threshold: threshold,
		duration:  duration,
		states:    map[string]*lockoutState{},
		now:       time.Now,
	}
}

// RecordFailure increments the failure counter for the identity. Reaching
// the threshold sets the lock and resets the counter; the lock, not a stale
// count, is what gates access from then on.
func (t *LockoutTracker) RecordFailure(identity string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.states[identity]
	if !ok {
		state = &lockoutState{}
		t.states[identity] = state
	}

	state.failures++
	if state.failures >= t.threshold {
		state.lockedUntil = t.now().Add(t.duration)
		state.failures = 0
	}
}

// RecordSuccess unconditionally clears the counter and any lock.
func (t *LockoutTracker) RecordSuccess(identity string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.states, identity)
}

// IsLocked reports whether the identity is currently locked out. Locks whose
// expiry has passed are treated as absent and dropped lazily.
func (t *LockoutTracker) IsLocked(identity string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.states[identity]
	if !ok || state.lockedUntil.IsZero() {
		return false
	}

	if !t.now().Before(state.lockedUntil) {
		state.lockedUntil = time.Time{}
		return false
	}

	return true
}
