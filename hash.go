package attrs

import (
	"context"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Hash proxies a Redis hash of string fields and values.
type Hash struct {
	collection
}

// Get returns the value of field and whether it is present.
func (h *Hash) Get(ctx context.Context, field string) (string, bool, error) {
	value, err := h.conn.HGet(ctx, h.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, h.wrap("get", err)
	}
	return value, true, nil
}

// Put sets field to value.
func (h *Hash) Put(ctx context.Context, field, value string) error {
	if err := h.conn.HSet(ctx, h.key, field, value).Err(); err != nil {
		return h.wrap("put", err)
	}
	return nil
}

// Merge sets every field in values.
func (h *Hash) Merge(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	if err := h.conn.HSet(ctx, h.key, values).Err(); err != nil {
		return h.wrap("merge", err)
	}
	return nil
}

// Delete removes fields and returns how many were present.
func (h *Hash) Delete(ctx context.Context, fields ...string) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	n, err := h.conn.HDel(ctx, h.key, fields...).Result()
	if err != nil {
		return 0, h.wrap("delete", err)
	}
	return n, nil
}

// Has reports whether field is present.
func (h *Hash) Has(ctx context.Context, field string) (bool, error) {
	ok, err := h.conn.HExists(ctx, h.key, field).Result()
	if err != nil {
		return false, h.wrap("has", err)
	}
	return ok, nil
}

// Keys returns the field names sorted.
func (h *Hash) Keys(ctx context.Context) ([]string, error) {
	keys, err := h.conn.HKeys(ctx, h.key).Result()
	if err != nil {
		return nil, h.wrap("keys", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Values returns the values ordered by field name.
func (h *Hash) Values(ctx context.Context) ([]string, error) {
	all, err := h.All(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, key := range keys {
		values[i] = all[key]
	}
	return values, nil
}

// All returns every field and value.
func (h *Hash) All(ctx context.Context) (map[string]string, error) {
	all, err := h.conn.HGetAll(ctx, h.key).Result()
	if err != nil {
		return nil, h.wrap("all", err)
	}
	return all, nil
}

// Len returns the number of fields.
func (h *Hash) Len(ctx context.Context) (int64, error) {
	n, err := h.conn.HLen(ctx, h.key).Result()
	if err != nil {
		return 0, h.wrap("len", err)
	}
	return n, nil
}

// Increment adds by to the integer value of field and returns the result.
func (h *Hash) Increment(ctx context.Context, field string, by int64) (int64, error) {
	n, err := h.conn.HIncrBy(ctx, h.key, field, by).Result()
	if err != nil {
		return 0, h.wrap("increment", err)
	}
	return n, nil
}

// Replace swaps the content for values in one transaction.
func (h *Hash) Replace(ctx context.Context, values map[string]string) error {
	_, err := h.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, h.key)
		if len(values) > 0 {
			pipe.HSet(ctx, h.key, values)
		}
		return nil
	})
	if err != nil {
		return h.wrap("replace", err)
	}
	return nil
}
