package attrs

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// List proxies a Redis list.
type List struct {
	collection
}

// Push appends values (RPUSH) and returns the new length.
func (l *List) Push(ctx context.Context, values ...string) (int64, error) {
	if len(values) == 0 {
		return l.Len(ctx)
	}
	filtered, err := l.members.applyAll(values)
	if err != nil {
		return 0, err
	}
	n, err := l.conn.RPush(ctx, l.key, toAnySlice(filtered)...).Result()
	if err != nil {
		return 0, l.wrap("push", err)
	}
	return n, nil
}

// Unshift prepends values (LPUSH) and returns the new length. Values end up
// in reverse argument order, as with LPUSH.
func (l *List) Unshift(ctx context.Context, values ...string) (int64, error) {
	if len(values) == 0 {
		return l.Len(ctx)
	}
	filtered, err := l.members.applyAll(values)
	if err != nil {
		return 0, err
	}
	n, err := l.conn.LPush(ctx, l.key, toAnySlice(filtered)...).Result()
	if err != nil {
		return 0, l.wrap("unshift", err)
	}
	return n, nil
}

// Insert adds value before (or after) the first occurrence of pivot. It
// returns -1 when pivot is missing.
func (l *List) Insert(ctx context.Context, before bool, pivot, value string) (int64, error) {
	pivot, err := l.members.apply(pivot)
	if err != nil {
		return 0, err
	}
	value, err = l.members.apply(value)
	if err != nil {
		return 0, err
	}
	var cmd *redis.IntCmd
	if before {
		cmd = l.conn.LInsertBefore(ctx, l.key, pivot, value)
	} else {
		cmd = l.conn.LInsertAfter(ctx, l.key, pivot, value)
	}
	n, err := cmd.Result()
	if err != nil {
		return 0, l.wrap("insert", err)
	}
	return n, nil
}

// Delete removes occurrences of value (LREM). count 0 removes all, positive
// counts remove from the head and negative ones from the tail.
func (l *List) Delete(ctx context.Context, value string, count int64) (int64, error) {
	value, err := l.members.apply(value)
	if err != nil {
		return 0, err
	}
	n, err := l.conn.LRem(ctx, l.key, count, value).Result()
	if err != nil {
		return 0, l.wrap("delete", err)
	}
	return n, nil
}

// Values returns every element as stored.
func (l *List) Values(ctx context.Context) ([]string, error) {
	return l.Range(ctx, 0, -1)
}

// Range returns elements start..stop inclusive; negative indexes count from
// the tail.
func (l *List) Range(ctx context.Context, start, stop int64) ([]string, error) {
	values, err := l.conn.LRange(ctx, l.key, start, stop).Result()
	if err != nil {
		return nil, l.wrap("range", err)
	}
	return values, nil
}

// Index returns the element at index and whether it exists.
func (l *List) Index(ctx context.Context, index int64) (string, bool, error) {
	value, err := l.conn.LIndex(ctx, l.key, index).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, l.wrap("index", err)
	}
	return value, true, nil
}

// Len returns the list length.
func (l *List) Len(ctx context.Context) (int64, error) {
	n, err := l.conn.LLen(ctx, l.key).Result()
	if err != nil {
		return 0, l.wrap("len", err)
	}
	return n, nil
}

// Pop removes and returns the last element.
func (l *List) Pop(ctx context.Context) (string, bool, error) {
	return l.take(ctx, "pop", l.conn.RPop(ctx, l.key))
}

// Shift removes and returns the first element.
func (l *List) Shift(ctx context.Context) (string, bool, error) {
	return l.take(ctx, "shift", l.conn.LPop(ctx, l.key))
}

func (l *List) take(_ context.Context, op string, cmd *redis.StringCmd) (string, bool, error) {
	value, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, l.wrap(op, err)
	}
	return value, true, nil
}

// Contains reports whether the filtered value is an element.
func (l *List) Contains(ctx context.Context, value string) (bool, error) {
	value, err := l.members.apply(value)
	if err != nil {
		return false, err
	}
	values, err := l.Values(ctx)
	if err != nil {
		return false, err
	}
	for _, candidate := range values {
		if candidate == value {
			return true, nil
		}
	}
	return false, nil
}

// Replace swaps the content for values, in order, in one transaction.
func (l *List) Replace(ctx context.Context, values []string) error {
	filtered, err := l.members.applyAll(values)
	if err != nil {
		return err
	}
	_, err = l.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, l.key)
		if len(filtered) > 0 {
			pipe.RPush(ctx, l.key, toAnySlice(filtered)...)
		}
		return nil
	})
	if err != nil {
		return l.wrap("replace", err)
	}
	return nil
}
