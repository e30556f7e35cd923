// Package schema declares models and their attributes from YAML or JSONC
// documents.
//
// A document lists models; each model lists attributes either as a sequence
// of entries with a name, or as a mapping keyed by attribute name. Both forms
// keep the order written in the file, which is the declaration order.
//
//	models:
//	  - name: catalog.Film
//	    attributes:
//	      title: {type: string}
//	      stars: {type: integer, default: 0}
//	      genres: {type: set, filter: "lower(trim(value))"}
//	      editing: {type: lock, expiration: 30s, lock_timeout: 2s}
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	attrs "github.com/goliatone/go-redis-attrs"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Document is a parsed schema file.
type Document struct {
	Models []ModelSpec `yaml:"models"`
}

// ModelSpec declares one owner type.
type ModelSpec struct {
	Name       string         `yaml:"name"`
	Attributes AttributeSpecs `yaml:"attributes"`
}

// AttributeSpec declares one attribute. Default holds the stored form of
// the default value, as the codec would write it.
type AttributeSpec struct {
	Name        string        `yaml:"name"`
	Type        string        `yaml:"type"`
	Default     *string       `yaml:"-"`
	Filter      string        `yaml:"filter"`
	Squish      bool          `yaml:"squish"`
	Expiration  time.Duration `yaml:"expiration"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// UnmarshalYAML keeps the default as written, so dates, booleans and
// numbers reach the codec in their text form.
func (s *AttributeSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain AttributeSpec
	var out plain
	if err := node.Decode(&out); err != nil {
		return err
	}
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value != "default" {
				continue
			}
			value := node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return fmt.Errorf("schema: line %d: default must be a scalar", value.Line)
			}
			if value.Tag == "!!null" {
				break
			}
			raw := value.Value
			out.Default = &raw
		}
	}
	*s = AttributeSpec(out)
	return nil
}

// AttributeSpecs is an ordered attribute list.
type AttributeSpecs []AttributeSpec

// UnmarshalYAML accepts a sequence of specs or a mapping of name to spec.
func (l *AttributeSpecs) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var specs []AttributeSpec
		if err := node.Decode(&specs); err != nil {
			return err
		}
		*l = specs
		return nil
	case yaml.MappingNode:
		specs := make([]AttributeSpec, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			var spec AttributeSpec
			if value.Kind == yaml.ScalarNode && value.Tag != "!!null" {
				spec.Type = value.Value
			} else if err := value.Decode(&spec); err != nil {
				return err
			}
			if spec.Name != "" && spec.Name != key.Value {
				return fmt.Errorf("schema: line %d: attribute %q renamed to %q", key.Line, key.Value, spec.Name)
			}
			spec.Name = key.Value
			specs = append(specs, spec)
		}
		*l = specs
		return nil
	default:
		return fmt.Errorf("schema: line %d: attributes must be a list or a mapping", node.Line)
	}
}

// Parse decodes a document. Names ending in .json or .jsonc are stripped of
// comments and trailing commas first.
func Parse(data []byte, name string) (*Document, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", name, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadFile reads and parses the document at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Validate checks the structure without consulting a registry.
func (d *Document) Validate() error {
	seen := map[string]bool{}
	for i, model := range d.Models {
		if strings.TrimSpace(model.Name) == "" {
			return fmt.Errorf("schema: model %d has no name", i)
		}
		if seen[model.Name] {
			return fmt.Errorf("schema: model %q declared twice", model.Name)
		}
		seen[model.Name] = true
		for j, attr := range model.Attributes {
			if attr.Name == "" {
				return fmt.Errorf("schema: %s attribute %d has no name", model.Name, j)
			}
			if attr.Type == "" {
				return fmt.Errorf("schema: %s.%s has no type", model.Name, attr.Name)
			}
		}
	}
	return nil
}

// Apply declares every model and attribute of the document on registry, in
// document order. It stops at the first error.
func (d *Document) Apply(registry *attrs.Registry) ([]*attrs.Model, error) {
	models := make([]*attrs.Model, 0, len(d.Models))
	for _, spec := range d.Models {
		model, err := registry.Model(spec.Name)
		if err != nil {
			return models, err
		}
		for _, attr := range spec.Attributes {
			if _, err := model.Attr(attr.Name, attrs.TypeTag(attr.Type), attr.Options()...); err != nil {
				return models, fmt.Errorf("schema: %s.%s: %w", spec.Name, attr.Name, err)
			}
		}
		models = append(models, model)
	}
	return models, nil
}

// Options converts the spec to attribute options.
func (s AttributeSpec) Options() []attrs.AttrOption {
	var opts []attrs.AttrOption
	if s.Default != nil {
		opts = append(opts, attrs.WithRawDefault(*s.Default))
	}
	if s.Squish {
		opts = append(opts, attrs.WithFilterFunc(attrs.Squish))
	}
	if s.Filter != "" {
		opts = append(opts, attrs.WithFilterExpr(s.Filter))
	}
	if s.Expiration != 0 {
		opts = append(opts, attrs.WithExpiration(s.Expiration))
	}
	if s.LockTimeout != 0 {
		opts = append(opts, attrs.WithLockTimeout(s.LockTimeout))
	}
	return opts
}
