package attrs

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Function is a helper callable from filter expressions, e.g. squish(value).
type Function func(args ...any) (any, error)

var functionName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// FunctionRegistry holds the helpers exposed to filter expressions. Names are
// case-insensitive and stored lower-cased, since every engine binds them as
// identifiers.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: map[string]Function{}}
}

// Register adds fn under name. Names must be identifiers and unique.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := strings.ToLower(strings.TrimSpace(name))
	switch {
	case fn == nil:
		return fmt.Errorf("attrs: function %q is nil", name)
	case !functionName.MatchString(key):
		return fmt.Errorf("attrs: function name %q is not an identifier", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]Function{}
	}
	if _, taken := r.functions[key]; taken {
		return fmt.Errorf("attrs: function %q already registered", key)
	}
	r.functions[key] = fn
	return nil
}

// Clone copies the registry so later registrations do not leak into
// evaluators that already took a snapshot.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	clone := NewFunctionRegistry()
	r.each(func(name string, fn Function) {
		clone.functions[name] = fn
	})
	return clone
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("attrs: function %q not registered", name)
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("attrs: function %q not registered", name)
	}
	return fn(args...)
}

// Names lists registered functions alphabetically.
func (r *FunctionRegistry) Names() []string {
	var names []string
	r.each(func(name string, _ Function) {
		names = append(names, name)
	})
	return names
}

// each visits functions in name order. A nil registry visits nothing.
func (r *FunctionRegistry) each(visit func(name string, fn Function)) {
	if r == nil {
		return
	}
	r.mu.RLock()
	fns := make(map[string]Function, len(r.functions))
	names := make([]string, 0, len(r.functions))
	for name, fn := range r.functions {
		fns[name] = fn
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	for _, name := range names {
		visit(name, fns[name])
	}
}

// WithFunctionRegistry exposes functions to the registry's default
// evaluator.
func WithFunctionRegistry(functions *FunctionRegistry) Option {
	return func(cfg *registryConfig) {
		if functions != nil {
			cfg.functions = functions.Clone()
		}
	}
}

// WithCustomFunction registers one function for the default evaluator.
// Invalid or duplicate names are ignored.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *registryConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}
