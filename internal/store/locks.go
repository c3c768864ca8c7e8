package store

import (
	"context"
	"sync"
)

// zoneLocks serializes structural changes per zone within this process.
// Transactions use BEGIN IMMEDIATE and zones carry a version, so the
// database rejects writers that slip past it.
var zoneLocks = newKeyedLock()

type keyedLock struct {
	mu    sync.Mutex
	slots map[int64]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{slots: make(map[int64]*lockSlot)}
}

// Lock blocks until the key is free or ctx is done. The returned function
// releases the lock.
func (l *keyedLock) Lock(ctx context.Context, key int64) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		return func() {
			<-slot.ch
			l.release(key, slot)
		}, nil
	case <-ctx.Done():
		l.release(key, slot)
		return nil, ctx.Err()
	}
}

func (l *keyedLock) release(key int64, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}
