package schema

import (
	"fmt"
	"sort"
)

// FieldSpec is the declarative form of a field, as written in catalog files.
//
//	projectId:
//	  type: string
//	role:
//	  type: enum
//	  values: [owner, member]
//	  optional: true
type FieldSpec struct {
	Type     string               `yaml:"type" json:"type"`
	Values   []string             `yaml:"values,omitempty" json:"values,omitempty"`
	Optional bool                 `yaml:"optional,omitempty" json:"optional,omitempty"`
	Nullable bool                 `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Default  any                  `yaml:"default,omitempty" json:"default,omitempty"`
	Fields   map[string]FieldSpec `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// FromSpec builds an object schema from field specs.
// Fields are declared in name order so issues are reported deterministically.
func FromSpec(fields map[string]FieldSpec) (*ObjectSchema, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]FieldDef, 0, len(names))
	for _, name := range names {
		spec := fields[name]
		value, err := spec.value()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}

		def := Field(name, value)
		if spec.Optional {
			def = def.Optional()
		}
		if spec.Nullable {
			def = def.Nullable()
		}
		if spec.Default != nil {
			if _, issues := value.check(name, spec.Default); len(issues) > 0 {
				return nil, fmt.Errorf("field %s: invalid default: %s", name, issues[0].Message)
			}
			def = def.Default(spec.Default)
		}
		defs = append(defs, def)
	}
	return Object(defs...), nil
}

func (s FieldSpec) value() (Value, error) {
	switch s.Type {
	case "string":
		return String(), nil
	case "enum":
		if len(s.Values) == 0 {
			return nil, fmt.Errorf("enum requires values")
		}
		return Enum(s.Values...), nil
	case "mixed", "any":
		return Mixed(), nil
	case "object":
		obj, err := FromSpec(s.Fields)
		if err != nil {
			return nil, err
		}
		return obj, nil
	case "":
		return nil, fmt.Errorf("type is required")
	default:
		return nil, fmt.Errorf("unsupported type %q", s.Type)
	}
}
