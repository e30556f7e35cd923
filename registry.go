package attrs

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-redis-attrs/pkg/activity"
	"github.com/redis/go-redis/v9"
)

// Registry owns the type registry, the Redis connection and the declared
// models. It replaces process-wide globals: construct one per application
// (or per test) and declare models against it.
type Registry struct {
	mu       sync.RWMutex
	conn     redis.UniversalClient
	types    map[TypeTag]typeEntry
	models   map[string]*Model
	prefixes map[string]string

	logger    Logger
	evaluator Evaluator
	emitter   *activity.Emitter
}

// NewRegistry constructs a registry holding the built-in types.
func NewRegistry(opts ...Option) *Registry {
	cfg := applyOptions(opts)
	r := &Registry{
		conn:     cfg.conn,
		types:    builtinTypes(),
		models:   map[string]*Model{},
		prefixes: map[string]string{},
		logger:   cfg.logger,
		emitter:  activity.NewEmitter(cfg.activity, cfg.activityHooks...),
	}
	if r.logger == nil {
		r.logger = noopLogger{}
	}
	r.evaluator = cfg.evaluator
	if r.evaluator == nil {
		r.evaluator = NewExprEvaluator(
			EvaluatorCache(cfg.programCache),
			EvaluatorFunctions(cfg.functions),
		)
	}
	return r
}

// Connect sets the Redis connection. It can be called once; later calls fail
// with ErrAlreadyConnected until Reset.
func (r *Registry) Connect(conn redis.UniversalClient) error {
	if conn == nil {
		return fmt.Errorf("attrs: connection is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		return ErrAlreadyConnected
	}
	r.conn = conn
	return nil
}

// Conn returns the configured connection or ErrNotConnected.
func (r *Registry) Conn() (redis.UniversalClient, error) {
	if r == nil {
		return nil, ErrNotConnected
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.conn == nil {
		return nil, ErrNotConnected
	}
	return r.conn, nil
}

// Reset drops the connection, every model and every custom type. The
// connection is not closed; it belongs to the caller.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conn = nil
	r.types = builtinTypes()
	r.models = map[string]*Model{}
	r.prefixes = map[string]string{}
}

// RegisterType attaches a custom scalar codec to tag. Built-in and already
// registered tags fail with ErrDuplicateType. A nil codec, or one whose
// Validate method fails, is rejected with ErrInvalidCodec.
func (r *Registry) RegisterType(tag TypeTag, codec Codec) error {
	if err := validateName("type", string(tag)); err != nil {
		return err
	}
	if isNilCodec(codec) {
		return fmt.Errorf("%w: type %q has a nil codec", ErrInvalidCodec, tag)
	}
	if err := validateValue(codec); err != nil {
		return fmt.Errorf("%w: type %q: %v", ErrInvalidCodec, tag, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[tag]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateType, tag)
	}
	r.types[tag] = typeEntry{tag: tag, kind: KindScalar, codec: codec}
	return nil
}

// TypeKind reports the storage kind registered for tag.
func (r *Registry) TypeKind(tag TypeTag) (Kind, bool) {
	entry, ok := r.lookupType(tag)
	return entry.kind, ok
}

// Types returns every registered tag sorted alphabetically.
func (r *Registry) Types() []TypeTag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]TypeTag, 0, len(r.types))
	for tag := range r.types {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

func (r *Registry) lookupType(tag TypeTag) (typeEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.types[tag]
	return entry, ok
}

// Model returns the owner type named typeName, creating it on first use. Its
// key prefix is derived once from the name and never changes. A different
// name mapping to an existing prefix fails with ErrDuplicateModel.
func (r *Registry) Model(typeName string) (*Model, error) {
	name := strings.TrimSpace(typeName)
	if name == "" {
		return nil, fmt.Errorf("%w: model name must not be empty", ErrInvalidName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if model, ok := r.models[name]; ok {
		return model, nil
	}
	prefix := KeyPrefix(name)
	if err := validateName("model key prefix", prefix); err != nil {
		return nil, err
	}
	if owner, taken := r.prefixes[prefix]; taken {
		return nil, fmt.Errorf("%w: %q maps to %q already used by %q", ErrDuplicateModel, name, prefix, owner)
	}
	model := newModel(r, name, prefix)
	r.models[name] = model
	r.prefixes[prefix] = name
	return model, nil
}

// MustModel is like Model but panics on error. It suits package-level
// declarations.
func (r *Registry) MustModel(typeName string) *Model {
	model, err := r.Model(typeName)
	if err != nil {
		panic(err)
	}
	return model
}

// FindModel returns the declared model named name, or whose key prefix is
// name. Unlike Model it never declares.
func (r *Registry) FindModel(name string) (*Model, bool) {
	name = strings.TrimSpace(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if model, ok := r.models[name]; ok {
		return model, true
	}
	if owner, ok := r.prefixes[name]; ok {
		return r.models[owner], true
	}
	return nil, false
}

// Models returns declared models sorted by name.
func (r *Registry) Models() []*Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	models := make([]*Model, 0, len(r.models))
	for _, model := range r.models {
		models = append(models, model)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].name < models[j].name })
	return models
}

func isNilCodec(codec Codec) bool {
	if codec == nil {
		return true
	}
	rv := reflect.ValueOf(codec)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

func validateValue(value any) error {
	if v, ok := value.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}
