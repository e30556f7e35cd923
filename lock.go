package attrs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPollInterval = 10 * time.Millisecond

// releaseScript deletes the lock key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a mutual-exclusion section keyed per owner instance.
type Lock struct {
	collection
	expiration time.Duration
	timeout    time.Duration
}

func newLock(c collection) *Lock {
	return &Lock{
		collection: c,
		expiration: c.attr.expiration,
		timeout:    c.attr.lockTimeout,
	}
}

// Do runs fn while holding the lock. It waits up to the attribute lock
// timeout and fails with ErrLockTimeout if the lock stays taken. The lock is
// released when fn returns, panics or fails; a release failure is returned
// only when fn succeeded.
func (l *Lock) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if fn == nil {
		return fmt.Errorf("attrs: lock %s: nil function", l.key)
	}
	token := uuid.NewString()
	if err := l.acquire(ctx, token); err != nil {
		return err
	}
	defer func() {
		releaseErr := l.release(context.WithoutCancel(ctx), token)
		if err == nil {
			err = releaseErr
		}
	}()
	return fn(ctx)
}

// Locked reports whether someone currently holds the lock.
func (l *Lock) Locked(ctx context.Context) (bool, error) {
	return l.Exists(ctx)
}

func (l *Lock) acquire(ctx context.Context, token string) error {
	deadline := time.Now().Add(l.timeout)
	for {
		ok, err := l.conn.SetNX(ctx, l.key, token, l.expiration).Result()
		if err != nil {
			return l.wrap("acquire", err)
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s after %s", ErrLockTimeout, l.key, l.timeout)
		}
		timer := time.NewTimer(lockPollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return l.wrap("acquire", ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *Lock) release(ctx context.Context, token string) error {
	if err := releaseScript.Run(ctx, l.conn, []string{l.key}, token).Err(); err != nil {
		return l.wrap("release", err)
	}
	return nil
}
