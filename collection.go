package attrs

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// collection is the state shared by every proxy: the connection, the key
// and the attribute it was built for. Proxies keep no copy of the content.
type collection struct {
	conn    redis.UniversalClient
	key     string
	attr    *Attribute
	members memberFilter
}

func newCollection(conn redis.UniversalClient, key string, attr *Attribute) collection {
	return collection{
		conn:    conn,
		key:     key,
		attr:    attr,
		members: attr.members(),
	}
}

// Key returns the Redis key backing the collection.
func (c collection) Key() string { return c.key }

// Attribute returns the attribute the collection belongs to.
func (c collection) Attribute() *Attribute { return c.attr }

// Exists reports whether the key is present.
func (c collection) Exists(ctx context.Context) (bool, error) {
	n, err := c.conn.Exists(ctx, c.key).Result()
	if err != nil {
		return false, c.wrap("exists", err)
	}
	return n > 0, nil
}

// Clear deletes the whole collection.
func (c collection) Clear(ctx context.Context) error {
	if err := c.conn.Del(ctx, c.key).Err(); err != nil {
		return c.wrap("clear", err)
	}
	return nil
}

func (c collection) wrap(op string, err error) error {
	return fmt.Errorf("attrs: %s %s %s: %w", c.attr.kind, op, c.key, err)
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}
	return out
}
