package attrs

import (
	"fmt"
	"sync"
)

// Model is an owner type: a named set of attributes sharing a key prefix.
type Model struct {
	registry *Registry
	name     string
	prefix   string

	mu     sync.RWMutex
	attrs  []*Attribute
	byName map[string]*Attribute
}

// Field is one entry of an ordered declaration passed to Model.Declare.
type Field struct {
	Name    string
	Type    TypeTag
	Options []AttrOption
}

func newModel(registry *Registry, name, prefix string) *Model {
	return &Model{
		registry: registry,
		name:     name,
		prefix:   prefix,
		byName:   map[string]*Attribute{},
	}
}

// Name returns the declared type name.
func (m *Model) Name() string { return m.name }

// KeyPrefix returns the snake-case prefix shared by every key of the model.
func (m *Model) KeyPrefix() string { return m.prefix }

// Registry returns the registry the model belongs to.
func (m *Model) Registry() *Registry { return m.registry }

// Attr declares attribute name with type tag. Unknown tags fail with
// ErrUnknownType and names already declared on the model fail with
// ErrDuplicateAttribute.
func (m *Model) Attr(name string, tag TypeTag, opts ...AttrOption) (*Attribute, error) {
	if err := validateName("attribute", name); err != nil {
		return nil, err
	}
	entry, ok := m.registry.lookupType(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q for %s.%s", ErrUnknownType, tag, m.name, name)
	}
	attr, err := newAttribute(m, name, entry, opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateAttribute, m.name, name)
	}
	m.attrs = append(m.attrs, attr)
	m.byName[name] = attr
	return attr, nil
}

// Declare declares fields in order, stopping at the first failure. Fields
// declared before the failure stay declared.
func (m *Model) Declare(fields ...Field) error {
	for _, field := range fields {
		if _, err := m.Attr(field.Name, field.Type, field.Options...); err != nil {
			return err
		}
	}
	return nil
}

// Attributes returns the declared attributes in declaration order.
func (m *Model) Attributes() []*Attribute {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Attribute, len(m.attrs))
	copy(out, m.attrs)
	return out
}

// Attribute looks up a declared attribute by name.
func (m *Model) Attribute(name string) (*Attribute, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	attr, ok := m.byName[name]
	return attr, ok
}

// Key derives the storage key of attribute name for identity.
func (m *Model) Key(identity, name string) (string, error) {
	return DeriveKey(m.prefix, identity, name)
}

// Bind returns the accessor table for one owner instance.
func (m *Model) Bind(owner Identifier) *Record {
	return &Record{
		model:   m,
		owner:   owner,
		proxies: map[string]cachedProxy{},
	}
}

func (m *Model) scalars() []*Attribute {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Attribute, 0, len(m.attrs))
	for _, attr := range m.attrs {
		if attr.kind == KindScalar {
			out = append(out, attr)
		}
	}
	return out
}

func (m *Model) lookup(name string) (*Attribute, error) {
	attr, ok := m.Attribute(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownAttribute, m.name, name)
	}
	return attr, nil
}
