package attrs

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Counter proxies an integer string key. An absent key reads as the start
// value (the attribute default, zero otherwise).
type Counter struct {
	collection
	start int64
}

func newCounter(c collection) *Counter {
	counter := &Counter{collection: c}
	if def, ok := c.attr.Default(); ok {
		if n, ok := def.(int64); ok {
			counter.start = n
		}
	}
	return counter
}

// Start returns the value an absent counter reads as.
func (c *Counter) Start() int64 { return c.start }

// Value returns the current count.
func (c *Counter) Value(ctx context.Context) (int64, error) {
	raw, err := c.conn.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return c.start, nil
	}
	if err != nil {
		return 0, c.wrap("get", err)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, coercionFailure(TypeCounter, raw, err)
	}
	return n, nil
}

// Increment adds by and returns the new count.
func (c *Counter) Increment(ctx context.Context, by int64) (int64, error) {
	if c.start == 0 {
		n, err := c.conn.IncrBy(ctx, c.key, by).Result()
		if err != nil {
			return 0, c.wrap("increment", err)
		}
		return n, nil
	}
	var incr *redis.IntCmd
	_, err := c.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, c.key, c.start, 0)
		incr = pipe.IncrBy(ctx, c.key, by)
		return nil
	})
	if err != nil {
		return 0, c.wrap("increment", err)
	}
	return incr.Val(), nil
}

// Decrement subtracts by and returns the new count.
func (c *Counter) Decrement(ctx context.Context, by int64) (int64, error) {
	return c.Increment(ctx, -by)
}

// Reset sets the count to to.
func (c *Counter) Reset(ctx context.Context, to int64) error {
	if err := c.conn.Set(ctx, c.key, to, 0).Err(); err != nil {
		return c.wrap("reset", err)
	}
	return nil
}

// Delete removes the key so the counter reads as its start value again.
func (c *Counter) Delete(ctx context.Context) error {
	return c.Clear(ctx)
}
