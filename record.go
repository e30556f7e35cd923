package attrs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-redis-attrs/pkg/activity"
	"github.com/redis/go-redis/v9"
)

// Record is the accessor table of one owner instance. Every read goes to
// Redis; only the proxy objects are cached.
type Record struct {
	model *Model
	owner Identifier

	mu      sync.Mutex
	proxies map[string]cachedProxy
}

type cachedProxy struct {
	conn  redis.UniversalClient
	proxy any
}

// Model returns the owner type of the record.
func (r *Record) Model() *Model { return r.model }

// Identity returns the owner identity or ErrMissingIdentity.
func (r *Record) Identity() (string, error) {
	if r.owner == nil {
		return "", fmt.Errorf("%w: %s record has no owner", ErrMissingIdentity, r.model.name)
	}
	id := r.owner.ID()
	if id == "" {
		return "", fmt.Errorf("%w: %s owner returned an empty id", ErrMissingIdentity, r.model.name)
	}
	return id, nil
}

// Key returns the storage key of attribute name for this owner.
func (r *Record) Key(name string) (string, error) {
	attr, err := r.model.lookup(name)
	if err != nil {
		return "", err
	}
	identity, err := r.Identity()
	if err != nil {
		return "", err
	}
	return attr.Key(identity)
}

// Get reads a scalar attribute. An absent key yields the default, or nil
// without one. Counters read as their current count.
func (r *Record) Get(ctx context.Context, name string) (value any, err error) {
	start := time.Now()
	attr, identity, conn, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	defer func() { r.log("get", identity, attr.name, 1, start, err) }()

	switch attr.kind {
	case KindScalar:
	case KindCounter:
		counter, err := r.Counter(name)
		if err != nil {
			return nil, err
		}
		return counter.Value(ctx)
	default:
		return nil, fmt.Errorf("%w: %s attribute %q is not a scalar", ErrWrongKind, attr.kind, name)
	}

	key, err := attr.Key(identity)
	if err != nil {
		return nil, err
	}
	raw, err := conn.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		def, _ := attr.Default()
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("attrs: get %s: %w", key, err)
	}
	return attr.Deserialize(raw)
}

// Put writes attribute name. On a scalar, nil deletes the key and any other
// value is serialized and stored. On a list, set, sorted set or hash the
// whole content is replaced (nil clears it). Counters and locks fail with
// ErrNotAssignable.
func (r *Record) Put(ctx context.Context, name string, value any) (err error) {
	start := time.Now()
	attr, identity, conn, err := r.resolve(name)
	if err != nil {
		return err
	}
	defer func() { r.log("put", identity, attr.name, 1, start, err) }()

	if !attr.Assignable() {
		return fmt.Errorf("%w: %s attribute %q", ErrNotAssignable, attr.kind, name)
	}
	key, err := attr.Key(identity)
	if err != nil {
		return err
	}
	if attr.kind != KindScalar {
		return r.assign(ctx, conn, attr, identity, key, value)
	}
	if value == nil {
		return r.del(ctx, conn, attr, identity, key)
	}

	raw, err := attr.Serialize(value)
	if err != nil {
		return err
	}
	if err := conn.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("attrs: set %s: %w", key, err)
	}
	r.emit(ctx, identity, activity.Event{
		Verb:      activity.VerbAttributeSet,
		Attribute: attr.name,
		Key:       key,
		Value:     raw,
	})
	return nil
}

// Delete removes the key of attribute name, whatever its kind.
func (r *Record) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	attr, identity, conn, err := r.resolve(name)
	if err != nil {
		return err
	}
	defer func() { r.log("delete", identity, attr.name, 1, start, err) }()

	key, err := attr.Key(identity)
	if err != nil {
		return err
	}
	return r.del(ctx, conn, attr, identity, key)
}

func (r *Record) del(ctx context.Context, conn redis.UniversalClient, attr *Attribute, identity, key string) error {
	if err := conn.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("attrs: delete %s: %w", key, err)
	}
	r.emit(ctx, identity, activity.Event{
		Verb:      activity.VerbAttributeDeleted,
		Attribute: attr.name,
		Key:       key,
	})
	return nil
}

func (r *Record) assign(ctx context.Context, conn redis.UniversalClient, attr *Attribute, identity, key string, value any) error {
	c := newCollection(conn, key, attr)
	var (
		count int
		err   error
	)
	switch attr.kind {
	case KindList:
		var values []string
		if values, err = stringsOf(attr, value); err == nil {
			count = len(values)
			err = (&List{collection: c}).Replace(ctx, values)
		}
	case KindSet:
		var values []string
		if values, err = stringsOf(attr, value); err == nil {
			count = len(values)
			err = (&Set{collection: c}).Replace(ctx, values)
		}
	case KindSortedSet:
		var scores map[string]float64
		if scores, err = scoresOf(attr, value); err == nil {
			count = len(scores)
			err = (&SortedSet{collection: c}).Replace(ctx, scores)
		}
	case KindHash:
		var fields map[string]string
		if fields, err = fieldsOf(attr, value); err == nil {
			count = len(fields)
			err = (&Hash{collection: c}).Replace(ctx, fields)
		}
	default:
		err = fmt.Errorf("%w: %s attribute %q", ErrNotAssignable, attr.kind, attr.name)
	}
	if err != nil {
		return err
	}
	r.emit(ctx, identity, activity.Event{
		Verb:      activity.VerbCollectionAssigned,
		Attribute: attr.name,
		Key:       key,
		Count:     count,
	})
	return nil
}

// List returns the list proxy of attribute name.
func (r *Record) List(name string) (*List, error) {
	return proxyFor(r, name, KindList, func(c collection) *List { return &List{collection: c} })
}

// Set returns the set proxy of attribute name.
func (r *Record) Set(name string) (*Set, error) {
	return proxyFor(r, name, KindSet, func(c collection) *Set { return &Set{collection: c} })
}

// SortedSet returns the sorted set proxy of attribute name.
func (r *Record) SortedSet(name string) (*SortedSet, error) {
	return proxyFor(r, name, KindSortedSet, func(c collection) *SortedSet { return &SortedSet{collection: c} })
}

// Hash returns the hash proxy of attribute name.
func (r *Record) Hash(name string) (*Hash, error) {
	return proxyFor(r, name, KindHash, func(c collection) *Hash { return &Hash{collection: c} })
}

// Counter returns the counter proxy of attribute name.
func (r *Record) Counter(name string) (*Counter, error) {
	return proxyFor(r, name, KindCounter, newCounter)
}

// Lock returns the lock proxy of attribute name.
func (r *Record) Lock(name string) (*Lock, error) {
	return proxyFor(r, name, KindLock, newLock)
}

// proxyFor builds, or returns the cached, proxy of kind for attribute name.
// Entries are keyed by storage key and dropped when the connection changes.
func proxyFor[P any](r *Record, name string, kind Kind, build func(collection) P) (P, error) {
	var zero P
	attr, identity, conn, err := r.resolve(name)
	if err != nil {
		return zero, err
	}
	if attr.kind != kind {
		return zero, fmt.Errorf("%w: %s.%s is a %s, not a %s", ErrWrongKind, r.model.name, name, attr.kind, kind)
	}
	key, err := attr.Key(identity)
	if err != nil {
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.proxies[key]; ok && cached.conn == conn {
		if proxy, ok := cached.proxy.(P); ok {
			return proxy, nil
		}
	}
	proxy := build(newCollection(conn, key, attr))
	if r.proxies == nil {
		r.proxies = map[string]cachedProxy{}
	}
	r.proxies[key] = cachedProxy{conn: conn, proxy: proxy}
	return proxy, nil
}

// resolve looks up the attribute, the owner identity and the connection,
// failing in that order.
func (r *Record) resolve(name string) (*Attribute, string, redis.UniversalClient, error) {
	attr, err := r.model.lookup(name)
	if err != nil {
		return nil, "", nil, err
	}
	conn, err := r.model.registry.Conn()
	if err != nil {
		return nil, "", nil, err
	}
	identity, err := r.Identity()
	if err != nil {
		return nil, "", nil, err
	}
	return attr, identity, conn, nil
}

func (r *Record) log(op, identity, attribute string, keys int, start time.Time, err error) {
	r.model.registry.logger.LogOperation(OperationEvent{
		Op:        op,
		Model:     r.model.prefix,
		Identity:  identity,
		Attribute: attribute,
		Keys:      keys,
		Duration:  time.Since(start),
		Err:       err,
	})
}

// Get reads scalar attribute name as T. The boolean is false when the key
// is absent and no default is configured.
func Get[T any](ctx context.Context, record *Record, name string) (T, bool, error) {
	var zero T
	value, err := record.Get(ctx, name)
	if err != nil || value == nil {
		return zero, false, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false, fmt.Errorf("%w: %s is %T, not %T", ErrTypeCoercion, name, value, zero)
	}
	return typed, true, nil
}

func stringsOf(attr *Attribute, value any) ([]string, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return typed, nil
	case []any:
		out := make([]string, len(typed))
		for i, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, assignFailure(attr, value)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, assignFailure(attr, value)
	}
}

func scoresOf(attr *Attribute, value any) (map[string]float64, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case map[string]float64:
		return typed, nil
	case map[string]int:
		out := make(map[string]float64, len(typed))
		for member, score := range typed {
			out[member] = float64(score)
		}
		return out, nil
	case map[string]int64:
		out := make(map[string]float64, len(typed))
		for member, score := range typed {
			out[member] = float64(score)
		}
		return out, nil
	case []ScoredMember:
		out := make(map[string]float64, len(typed))
		for _, entry := range typed {
			out[entry.Member] = entry.Score
		}
		return out, nil
	default:
		return nil, assignFailure(attr, value)
	}
}

func fieldsOf(attr *Attribute, value any) (map[string]string, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return typed, nil
	case map[string]any:
		out := make(map[string]string, len(typed))
		for key, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, assignFailure(attr, value)
			}
			out[key] = s
		}
		return out, nil
	default:
		return nil, assignFailure(attr, value)
	}
}

func assignFailure(attr *Attribute, value any) error {
	return serializeFailure(attr.tag, value, fmt.Errorf("unsupported %s content", attr.kind))
}
