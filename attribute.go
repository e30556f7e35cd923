package attrs

import (
	"fmt"
	"time"
)

const defaultLockTimeout = 5 * time.Second

// Attribute is one declared field of a Model: its name, type tag and
// options. It is immutable once declared.
type Attribute struct {
	model *Model
	name  string
	tag   TypeTag
	kind  Kind
	codec Codec

	def        any
	rawDefault string
	hasDefault bool

	filter     Filter
	filterExpr string

	expiration  time.Duration
	lockTimeout time.Duration
}

// AttrOption configures an attribute at declaration time.
type AttrOption func(*attrConfig)

type attrConfig struct {
	def         any
	hasDefault  bool
	rawDefault  *string
	filter      Filter
	filterExpr  string
	expiration  time.Duration
	lockTimeout time.Duration
	lockTimeSet bool
}

// WithDefault sets the value returned for an absent scalar and written by
// InitAllScalars. On a counter it sets the start value.
func WithDefault(value any) AttrOption {
	return func(cfg *attrConfig) {
		cfg.def = value
		cfg.hasDefault = value != nil
		cfg.rawDefault = nil
	}
}

// WithRawDefault sets the default in its stored form; the codec decodes it
// at declaration time. Schema documents use it.
func WithRawDefault(raw string) AttrOption {
	return func(cfg *attrConfig) {
		cfg.rawDefault = &raw
		cfg.def = nil
		cfg.hasDefault = false
	}
}

// WithFilter normalizes list, set and sorted set members on write, membership
// test and delete.
func WithFilter(filter Filter) AttrOption {
	return func(cfg *attrConfig) {
		cfg.filter = filter
	}
}

// WithFilterFunc is WithFilter for a plain function.
func WithFilterFunc(fn func(string) string) AttrOption {
	return func(cfg *attrConfig) {
		if fn == nil {
			cfg.filter = nil
			return
		}
		cfg.filter = FilterFunc(fn)
	}
}

// WithFilterExpr compiles expr with the registry's filter evaluator. The
// expression sees the member as value, e.g. lower(trim(value)) for expr.
func WithFilterExpr(expr string) AttrOption {
	return func(cfg *attrConfig) {
		cfg.filterExpr = expr
	}
}

// WithExpiration bounds how long a lock survives a crashed holder. Zero
// means no expiration; negative durations fail declaration.
func WithExpiration(d time.Duration) AttrOption {
	return func(cfg *attrConfig) {
		cfg.expiration = d
	}
}

// WithLockTimeout bounds how long Lock.Do waits to acquire. Zero tries once.
func WithLockTimeout(d time.Duration) AttrOption {
	return func(cfg *attrConfig) {
		cfg.lockTimeout = d
		cfg.lockTimeSet = true
	}
}

func newAttribute(model *Model, name string, entry typeEntry, opts []AttrOption) (*Attribute, error) {
	cfg := attrConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	attr := &Attribute{
		model:       model,
		name:        name,
		tag:         entry.tag,
		kind:        entry.kind,
		codec:       entry.codec,
		expiration:  cfg.expiration,
		lockTimeout: defaultLockTimeout,
	}

	switch {
	case cfg.rawDefault != nil:
		if err := attr.setRawDefault(*cfg.rawDefault); err != nil {
			return nil, err
		}
	case cfg.hasDefault:
		if err := attr.setDefault(cfg.def); err != nil {
			return nil, err
		}
	}

	if cfg.filter != nil || cfg.filterExpr != "" {
		if !entry.kind.Filterable() {
			return nil, fmt.Errorf("%w: %s attribute %q cannot be filtered", ErrWrongKind, entry.kind, name)
		}
		filter := cfg.filter
		if cfg.filterExpr != "" {
			compiled, err := compileFilter(model.registry.evaluator, cfg.filterExpr, model.prefix, name)
			if err != nil {
				return nil, err
			}
			filter = ChainFilters(filter, compiled)
		}
		attr.filter = filter
		attr.filterExpr = cfg.filterExpr
	}

	if entry.kind != KindLock && (cfg.expiration != 0 || cfg.lockTimeSet) {
		return nil, fmt.Errorf("%w: %s attribute %q does not expire", ErrWrongKind, entry.kind, name)
	}
	if cfg.expiration < 0 {
		return nil, fmt.Errorf("%w: negative expiration %s on %q", ErrInvalidOption, cfg.expiration, name)
	}
	if cfg.lockTimeout < 0 {
		return nil, fmt.Errorf("%w: negative lock timeout %s on %q", ErrInvalidOption, cfg.lockTimeout, name)
	}
	if cfg.lockTimeSet {
		attr.lockTimeout = cfg.lockTimeout
	}
	return attr, nil
}

func (a *Attribute) defaultCodec() (Codec, error) {
	switch a.kind {
	case KindScalar:
		return a.codec, nil
	case KindCounter:
		return integerCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %s attribute %q cannot have a default", ErrWrongKind, a.kind, a.name)
	}
}

func (a *Attribute) setRawDefault(raw string) error {
	codec, err := a.defaultCodec()
	if err != nil {
		return err
	}
	value, err := codec.Deserialize(raw)
	if err != nil {
		return fmt.Errorf("attrs: default for %q: %w", a.name, err)
	}
	return a.setDefault(value)
}

// setDefault stores the serialized default and its canonical decoded form,
// so reads of an absent key and reads after InitAllScalars agree.
func (a *Attribute) setDefault(value any) error {
	codec, err := a.defaultCodec()
	if err != nil {
		return err
	}
	raw, err := codec.Serialize(value)
	if err != nil {
		return fmt.Errorf("attrs: default for %q: %w", a.name, err)
	}
	canonical, err := codec.Deserialize(raw)
	if err != nil {
		return fmt.Errorf("attrs: default for %q: %w", a.name, err)
	}
	a.def = canonical
	a.rawDefault = raw
	a.hasDefault = true
	return nil
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.name }

// Type returns the declared type tag.
func (a *Attribute) Type() TypeTag { return a.tag }

// Kind returns the storage kind behind the type tag.
func (a *Attribute) Kind() Kind { return a.kind }

// Model returns the owner type.
func (a *Attribute) Model() *Model { return a.model }

// IsScalar reports whether the attribute is a single string-backed value.
func (a *Attribute) IsScalar() bool { return a.kind == KindScalar }

// Assignable reports whether Record.Put can replace the whole value.
func (a *Attribute) Assignable() bool { return a.kind == KindScalar || a.kind.Assignable() }

// Default returns the configured default in the codec's canonical type.
func (a *Attribute) Default() (any, bool) { return a.def, a.hasDefault }

// Filtered reports whether members pass through a filter.
func (a *Attribute) Filtered() bool { return a.filter != nil }

// Expiration returns the lock expiration.
func (a *Attribute) Expiration() time.Duration { return a.expiration }

// Key derives the storage key for the owner identity.
func (a *Attribute) Key(identity string) (string, error) {
	return DeriveKey(a.model.prefix, identity, a.name)
}

// Serialize converts value with the attribute codec.
func (a *Attribute) Serialize(value any) (string, error) {
	if a.codec == nil {
		return "", fmt.Errorf("%w: %s attribute %q has no codec", ErrWrongKind, a.kind, a.name)
	}
	return a.codec.Serialize(value)
}

// Deserialize converts raw with the attribute codec.
func (a *Attribute) Deserialize(raw string) (any, error) {
	if a.codec == nil {
		return nil, fmt.Errorf("%w: %s attribute %q has no codec", ErrWrongKind, a.kind, a.name)
	}
	return a.codec.Deserialize(raw)
}

func (a *Attribute) members() memberFilter {
	return memberFilter{attribute: a.name, filter: a.filter}
}
