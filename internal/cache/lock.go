package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLocked is returned when a session stays locked past the wait budget
var ErrLocked = errors.New("session is locked by another request")

// SessionLock gives one writer at a time per session id
type SessionLock interface {
	// Acquire blocks until the lock is held, ctx ends or the wait budget runs out
	Acquire(ctx context.Context, sessionID string) (release func(), err error)
}

const lockPollInterval = 25 * time.Millisecond

func lockKey(sessionID string) string {
	return fmt.Sprintf("lock:session:%s", sessionID)
}

// waitContext bounds ctx by maxWait when maxWait is positive
func waitContext(ctx context.Context, maxWait time.Duration) (context.Context, context.CancelFunc) {
	if maxWait <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, maxWait)
}
