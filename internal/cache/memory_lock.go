package cache

import (
	"context"
	"sync"
	"time"
)

type memoryLock struct {
	mu      sync.Mutex
	slots   map[string]*lockSlot
	maxWait time.Duration
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

// NewMemorySessionLock serializes writers inside one process
func NewMemorySessionLock(maxWait time.Duration) SessionLock {
	return &memoryLock{
		slots:   make(map[string]*lockSlot),
		maxWait: maxWait,
	}
}

func (l *memoryLock) Acquire(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[sessionID]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[sessionID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	waitCtx, cancel := waitContext(ctx, l.maxWait)
	defer cancel()

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.unref(sessionID, slot)
			})
		}, nil
	case <-waitCtx.Done():
		l.unref(sessionID, slot)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrLocked
	}
}

func (l *memoryLock) unref(sessionID string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, sessionID)
	}
}
