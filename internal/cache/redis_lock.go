package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLock struct {
	client  *redis.Client
	ttl     time.Duration
	maxWait time.Duration
}

// NewRedisSessionLock shares session locks across server instances. ttl
// caps how long a crashed holder can keep a session blocked.
func NewRedisSessionLock(client *redis.Client, ttl, maxWait time.Duration) SessionLock {
	return &redisLock{
		client:  client,
		ttl:     ttl,
		maxWait: maxWait,
	}
}

func (l *redisLock) Acquire(ctx context.Context, sessionID string) (func(), error) {
	key := lockKey(sessionID)
	token := uuid.NewString()

	waitCtx, cancel := waitContext(ctx, l.maxWait)
	defer cancel()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, err
		}
		if ok {
			release := func() {
				// detached so a cancelled request still frees the lock
				rctx, rcancel := context.WithTimeout(context.Background(), time.Second)
				defer rcancel()
				releaseScript.Run(rctx, l.client, []string{key}, token)
			}
			return release, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrLocked
		case <-ticker.C:
		}
	}
}
