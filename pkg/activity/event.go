package activity

import (
	"maps"
	"strings"
	"time"
)

// Verbs emitted by the attribute store.
const (
	VerbAttributeSet       = "attrs.set"
	VerbAttributeDeleted   = "attrs.deleted"
	VerbCollectionAssigned = "attrs.assigned"
	VerbScalarsInitialized = "attrs.initialized"
)

// Event describes one mutation of an owner's attributes. Model is the owner
// key prefix and Identity the owner instance; together they name the object
// the event is about. Attribute and Key are empty for batch events.
type Event struct {
	Verb       string
	ActorID    string
	TenantID   string
	Model      string
	Identity   string
	Attribute  string
	Key        string
	Value      any
	Count      int
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Valid reports whether the event names a verb and an object.
func (e Event) Valid() bool {
	return e.Verb != "" && e.Model != "" && e.Identity != ""
}

// Normalize trims identifiers, copies Metadata and stamps OccurredAt when it
// is zero.
func (e Event) Normalize() Event {
	for _, field := range []*string{
		&e.Verb, &e.ActorID, &e.TenantID, &e.Model,
		&e.Identity, &e.Attribute, &e.Key, &e.Channel,
	} {
		*field = strings.TrimSpace(*field)
	}
	if len(e.Metadata) > 0 {
		e.Metadata = maps.Clone(e.Metadata)
	} else {
		e.Metadata = nil
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return e
}

// Data flattens the attribute fields and Metadata into one map for sinks
// with a free-form payload. Metadata never overrides the attribute fields.
func (e Event) Data() map[string]any {
	data := maps.Clone(e.Metadata)
	set := func(key string, value any) {
		if data == nil {
			data = map[string]any{}
		}
		data[key] = value
	}
	if e.Attribute != "" {
		set("attribute", e.Attribute)
	}
	if e.Key != "" {
		set("key", e.Key)
	}
	if e.Value != nil {
		set("value", e.Value)
	}
	if e.Count > 0 {
		set("count", e.Count)
	}
	return data
}
