package attrs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-redis-attrs/internal/hydrate"
	"github.com/goliatone/go-redis-attrs/pkg/activity"
	"github.com/redis/go-redis/v9"
)

// Values holds scalar values keyed by attribute name in declaration order.
type Values struct {
	names  []string
	values map[string]any
}

func newValues(capacity int) *Values {
	return &Values{
		names:  make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

func (v *Values) put(name string, value any) {
	if _, exists := v.values[name]; !exists {
		v.names = append(v.names, name)
	}
	v.values[name] = value
}

// Get returns the value of name and whether it is present.
func (v *Values) Get(name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	value, ok := v.values[name]
	return value, ok
}

// Names returns the attribute names in declaration order.
func (v *Values) Names() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Len returns the number of entries.
func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.names)
}

// Map returns a copy of the entries.
func (v *Values) Map() map[string]any {
	out := make(map[string]any, v.Len())
	if v == nil {
		return out
	}
	for name, value := range v.values {
		out[name] = value
	}
	return out
}

// MarshalJSON writes an object whose keys follow declaration order.
func (v *Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range v.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(v.values[name])
		if err != nil {
			return nil, fmt.Errorf("attrs: marshal %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// InitAllScalars writes every scalar default, and deletes every scalar key
// without one, in a single pipeline. Collections are left untouched.
func (r *Record) InitAllScalars(ctx context.Context) (err error) {
	start := time.Now()
	scalars := r.model.scalars()
	conn, identity, err := r.batchTarget()
	if err != nil {
		return err
	}
	defer func() { r.log("init", identity, "", len(scalars), start, err) }()
	if len(scalars) == 0 {
		return nil
	}

	keys := make([]string, len(scalars))
	for i, attr := range scalars {
		if keys[i], err = attr.Key(identity); err != nil {
			return err
		}
	}
	_, err = conn.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, attr := range scalars {
			if attr.hasDefault {
				pipe.Set(ctx, keys[i], attr.rawDefault, 0)
			} else {
				pipe.Del(ctx, keys[i])
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("attrs: init %s %s: %w", r.model.prefix, identity, err)
	}
	r.emit(ctx, identity, activity.Event{
		Verb:  activity.VerbScalarsInitialized,
		Count: len(scalars),
	})
	return nil
}

// FetchAllScalars reads every scalar attribute in a single pipeline. Absent
// keys contribute their default when one is configured and are omitted
// otherwise.
func (r *Record) FetchAllScalars(ctx context.Context) (values *Values, err error) {
	start := time.Now()
	scalars := r.model.scalars()
	conn, identity, err := r.batchTarget()
	if err != nil {
		return nil, err
	}
	defer func() { r.log("fetch", identity, "", len(scalars), start, err) }()

	values = newValues(len(scalars))
	if len(scalars) == 0 {
		return values, nil
	}
	cmds := make([]*redis.StringCmd, len(scalars))
	_, err = conn.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, attr := range scalars {
			key, err := attr.Key(identity)
			if err != nil {
				return err
			}
			cmds[i] = pipe.Get(ctx, key)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("attrs: fetch %s %s: %w", r.model.prefix, identity, err)
	}

	for i, attr := range scalars {
		raw, err := cmds[i].Result()
		if errors.Is(err, redis.Nil) {
			if def, ok := attr.Default(); ok {
				values.put(attr.name, def)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("attrs: fetch %s: %w", cmds[i].Args()[1], err)
		}
		value, err := attr.Deserialize(raw)
		if err != nil {
			return nil, fmt.Errorf("attrs: fetch %s.%s: %w", r.model.name, attr.name, err)
		}
		values.put(attr.name, value)
	}
	return values, nil
}

func (r *Record) batchTarget() (redis.UniversalClient, string, error) {
	conn, err := r.model.registry.Conn()
	if err != nil {
		return nil, "", err
	}
	identity, err := r.Identity()
	if err != nil {
		return nil, "", err
	}
	return conn, identity, nil
}

// LoadOption configures Load.
type LoadOption[T any] struct {
	decoder hydrate.DecoderOption[T]
}

// LoadStrict fails when a fetched attribute has no field in T.
func LoadStrict[T any]() LoadOption[T] {
	return LoadOption[T]{decoder: hydrate.WithDisallowUnknownFields[T]()}
}

// LoadUseNumber decodes numbers bound to interface values as json.Number.
func LoadUseNumber[T any]() LoadOption[T] {
	return LoadOption[T]{decoder: hydrate.WithUseNumber[T]()}
}

// LoadPreHook lets fn rewrite the fetched values before decoding. model is
// the owner type name. A nil result keeps the values unchanged.
func LoadPreHook[T any](fn func(model, identity string, values map[string]any) (map[string]any, error)) LoadOption[T] {
	if fn == nil {
		return LoadOption[T]{}
	}
	return LoadOption[T]{decoder: hydrate.WithPreHook[T](func(ctx hydrate.Context, values map[string]any) (map[string]any, error) {
		return fn(ctx.Model, ctx.Identity, values)
	})}
}

// LoadPostHook runs fn on the decoded value, e.g. to validate it.
func LoadPostHook[T any](fn func(model, identity string, out *T) error) LoadOption[T] {
	if fn == nil {
		return LoadOption[T]{}
	}
	return LoadOption[T]{decoder: hydrate.WithPostHook[T](func(ctx hydrate.Context, out *T) error {
		return fn(ctx.Model, ctx.Identity, out)
	})}
}

// Load fetches every scalar of record and decodes them into T. Struct
// fields match attribute names through their json tags.
func Load[T any](ctx context.Context, record *Record, opts ...LoadOption[T]) (T, error) {
	var zero T
	values, err := record.FetchAllScalars(ctx)
	if err != nil {
		return zero, err
	}
	identity, _ := record.Identity()
	decoderOpts := make([]hydrate.DecoderOption[T], 0, len(opts))
	for _, opt := range opts {
		decoderOpts = append(decoderOpts, opt.decoder)
	}
	decoded, err := hydrate.NewDecoder(decoderOpts...).Decode(hydrate.Context{
		Model:    record.model.name,
		Identity: identity,
	}, values.Map())
	if err != nil {
		return zero, fmt.Errorf("attrs: load %s %s: %w", record.model.prefix, identity, err)
	}
	return decoded, nil
}
