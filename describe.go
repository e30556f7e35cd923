package attrs

// FieldDescriptor describes one declared attribute.
type FieldDescriptor struct {
	Name       string  `json:"name" yaml:"name"`
	Type       TypeTag `json:"type" yaml:"type"`
	Kind       string  `json:"kind" yaml:"kind"`
	Default    any     `json:"default,omitempty" yaml:"default,omitempty"`
	Filtered   bool    `json:"filtered,omitempty" yaml:"filtered,omitempty"`
	Filter     string  `json:"filter,omitempty" yaml:"filter,omitempty"`
	Assignable bool    `json:"assignable" yaml:"assignable"`
}

// Describe lists the attributes of the model in declaration order.
func (m *Model) Describe() []FieldDescriptor {
	attrs := m.Attributes()
	out := make([]FieldDescriptor, len(attrs))
	for i, attr := range attrs {
		def, _ := attr.Default()
		out[i] = FieldDescriptor{
			Name:       attr.name,
			Type:       attr.tag,
			Kind:       attr.kind.String(),
			Default:    def,
			Filtered:   attr.Filtered(),
			Filter:     attr.filterExpr,
			Assignable: attr.Assignable(),
		}
	}
	return out
}

// OpenAPISchema returns an OpenAPI 3 object schema of the values an owner
// holds. Locks carry no value and are left out; scalars of custom types are
// plain strings.
func (m *Model) OpenAPISchema() map[string]any {
	properties := map[string]any{}
	order := []string{}
	for _, attr := range m.Attributes() {
		schema := attributeSchema(attr)
		if schema == nil {
			continue
		}
		properties[attr.name] = schema
		order = append(order, attr.name)
	}
	return map[string]any{
		"type":                 "object",
		"title":                m.name,
		"properties":           properties,
		"additionalProperties": false,
		"x-attribute-order":    order,
		"x-key-prefix":         m.prefix,
	}
}

func attributeSchema(attr *Attribute) map[string]any {
	var schema map[string]any
	switch attr.tag {
	case TypeString:
		schema = map[string]any{"type": "string"}
	case TypeBoolean:
		schema = map[string]any{"type": "boolean"}
	case TypeInteger, TypeCounter:
		schema = map[string]any{"type": "integer", "format": "int64"}
	case TypeFloat:
		schema = map[string]any{"type": "number", "format": "double"}
	case TypeDate:
		schema = map[string]any{"type": "string", "format": "date"}
	case TypeTime:
		schema = map[string]any{"type": "string", "format": "date-time"}
	case TypeList:
		schema = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	case TypeSet:
		schema = map[string]any{"type": "array", "uniqueItems": true, "items": map[string]any{"type": "string"}}
	case TypeSortedSet:
		schema = map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "number"}}
	case TypeHash:
		schema = map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}}
	case TypeLock:
		return nil
	default:
		schema = map[string]any{"type": "string", "x-attribute-type": string(attr.tag)}
	}
	if def, ok := attr.Default(); ok {
		if schema["type"] == "string" {
			schema["default"] = attr.rawDefault
		} else {
			schema["default"] = def
		}
	}
	return schema
}
