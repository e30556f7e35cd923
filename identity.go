package attrs

import "github.com/google/uuid"

// Identifier is implemented by owner instances. ID must return a stable,
// non-empty value whenever a key is derived for the instance.
type Identifier interface {
	ID() string
}

// StaticID is a fixed identity.
type StaticID string

// ID implements Identifier.
func (s StaticID) ID() string {
	return string(s)
}

// IdentifierFunc adapts a function to Identifier.
type IdentifierFunc func() string

// ID implements Identifier.
func (f IdentifierFunc) ID() string {
	if f == nil {
		return ""
	}
	return f()
}

// NewIdentity returns a random UUID identity for new owner instances.
func NewIdentity() StaticID {
	return StaticID(uuid.NewString())
}
