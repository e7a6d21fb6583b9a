package engine

import "sync"

// sessionLocks is a set of busy flags, one per session key. A flag only exists while a
// turn is in flight, so idle sessions cost nothing.
type sessionLocks struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{busy: make(map[string]struct{})}
}

// tryAcquire marks key busy. It never blocks and reports false when key is already busy.
func (l *sessionLocks) tryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.busy[key]; ok {
		return false
	}

	l.busy[key] = struct{}{}

	return true
}

func (l *sessionLocks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.busy, key)
}

func (l *sessionLocks) inFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.busy)
}
