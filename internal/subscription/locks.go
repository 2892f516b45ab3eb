package subscription

import "sync"

// UserLocks serializes mutations of a single user row. The reconciler, the
// expiry sweep and the manual verify-payment handler can all touch the same
// row concurrently; field-scoped updates narrow the race, this closes it.
type UserLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *UserLocks) lock(userID int64) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()
	return m
}

func (l *UserLocks) Lock(userID int64) {
	l.lock(userID).Lock()
}

func (l *UserLocks) Unlock(userID int64) {
	l.lock(userID).Unlock()
}
