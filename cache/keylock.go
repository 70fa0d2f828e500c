package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// KeyMutex provides per-key mutual exclusion with bounded waits so that
// callers working on different keys never block each other. Locks are
// created lazily and discarded once uncontended.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  *semaphore.Weighted
	refs int
}

// NewKeyMutex creates an empty KeyMutex
func NewKeyMutex() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*keyLock)}
}

// Acquire takes the lock for key, waiting at most timeout. On success it
// returns a release function; on timeout it returns a lock timeout error.
func (km *KeyMutex) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	km.mu.Lock()
	l, ok := km.locks[key]
	if !ok {
		l = &keyLock{sem: semaphore.NewWeighted(1)}
		km.locks[key] = l
	}
	l.refs++
	km.mu.Unlock()

	acqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := l.sem.Acquire(acqCtx, 1); err != nil {
		km.put(key, l)
		return nil, NewLockTimeoutError("key lock "+key, timeout)
	}

	return func() {
		l.sem.Release(1)
		km.put(key, l)
	}, nil
}

// put drops a reference and removes the lock entry once nobody holds or
// waits on it, keeping the map proportional to contended keys only.
func (km *KeyMutex) put(key string, l *keyLock) {
	km.mu.Lock()
	l.refs--
	if l.refs <= 0 {
		delete(km.locks, key)
	}
	km.mu.Unlock()
}

// size returns the number of live lock entries
func (km *KeyMutex) size() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}

// timedMutex is a mutual-exclusion lock whose acquisition is bounded by a
// timeout. Used as the store's coarse lock so that map and size-counter
// mutations stay consistent without risking an indefinite block.
type timedMutex struct {
	sem *semaphore.Weighted
}

func newTimedMutex() *timedMutex {
	return &timedMutex{sem: semaphore.NewWeighted(1)}
}

// lock acquires the mutex, failing with a lock timeout error if the wait
// exceeds timeout.
func (tm *timedMutex) lock(ctx context.Context, op string, timeout time.Duration) (func(), error) {
	acqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := tm.sem.Acquire(acqCtx, 1); err != nil {
		return nil, NewLockTimeoutError(op, timeout)
	}
	return func() { tm.sem.Release(1) }, nil
}
