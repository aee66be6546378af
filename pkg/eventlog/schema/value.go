package schema

import (
	"fmt"
	"slices"
	"strings"
)

type stringValue struct{}

// String accepts Go strings only.
func String() Value { return stringValue{} }

func (stringValue) Kind() string { return "string" }

func (stringValue) check(path string, v any) (any, []Issue) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, []Issue{invalidType(path, "string", v)}
}

type enumValue struct {
	values []string
}

// Enum accepts a string equal to one of values.
func Enum(values ...string) Value {
	if len(values) == 0 {
		panic("schema: enum requires at least one value")
	}
	return enumValue{values: slices.Clone(values)}
}

func (enumValue) Kind() string { return "string" }

func (e enumValue) check(path string, v any) (any, []Issue) {
	s, ok := v.(string)
	if !ok {
		return nil, []Issue{invalidType(path, "string", v)}
	}
	if !slices.Contains(e.values, s) {
		quoted := make([]string, len(e.values))
		for i, val := range e.values {
			quoted[i] = fmt.Sprintf("%q", val)
		}
		return nil, []Issue{{
			Path:    path,
			Code:    CodeInvalidEnumValue,
			Message: fmt.Sprintf("expected one of %s, received %q", strings.Join(quoted, " | "), s),
		}}
	}
	return s, nil
}

type mixedValue struct{}

// Mixed accepts any value, including null.
func Mixed() Value { return mixedValue{} }

func (mixedValue) Kind() string { return "mixed" }

func (mixedValue) check(_ string, v any) (any, []Issue) {
	return cloneValue(v), nil
}

// FieldDef declares a named field of an object schema.
// Fields are required and non-null unless modified.
type FieldDef struct {
	name       string
	value      Value
	optional   bool
	nullable   bool
	hasDefault bool
	def        any
}

// Field declares a required field.
func Field(name string, value Value) FieldDef {
	return FieldDef{name: name, value: value}
}

// Optional allows the field to be absent.
func (f FieldDef) Optional() FieldDef {
	f.optional = true
	return f
}

// Nullable allows the field to be present with a null value.
func (f FieldDef) Nullable() FieldDef {
	f.nullable = true
	return f
}

// Default fills the field with v when it is absent.
func (f FieldDef) Default(v any) FieldDef {
	f.hasDefault = true
	f.def = cloneValue(v)
	return f
}

// Name returns the field name.
func (f FieldDef) Name() string { return f.name }

// Value returns the field's value validator.
func (f FieldDef) Value() Value { return f.value }

// IsOptional reports whether the field may be absent.
func (f FieldDef) IsOptional() bool { return f.optional || f.hasDefault }

// IsNullable reports whether the field may be null.
func (f FieldDef) IsNullable() bool { return f.nullable }

// ObjectSchema validates a JSON object field by field.
// It is both a top-level Schema and a nestable Value.
type ObjectSchema struct {
	fields []FieldDef
}

// Compile-time interface checks.
var (
	_ Schema = (*ObjectSchema)(nil)
	_ Value  = (*ObjectSchema)(nil)
)

// Object builds an object schema. It panics on duplicate field names or on
// a default that its own field would reject, both of which are programming
// errors in a static catalog.
func Object(fields ...FieldDef) *ObjectSchema {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.name == "" {
			panic("schema: field name is required")
		}
		if f.value == nil {
			panic(fmt.Sprintf("schema: field %q has no value", f.name))
		}
		if seen[f.name] {
			panic(fmt.Sprintf("schema: duplicate field %q", f.name))
		}
		seen[f.name] = true
		if f.hasDefault {
			if _, issues := f.value.check(f.name, f.def); len(issues) > 0 {
				panic(fmt.Sprintf("schema: invalid default for %q: %s", f.name, issues[0].Message))
			}
		}
	}
	return &ObjectSchema{fields: slices.Clone(fields)}
}

// Kind implements Value.
func (o *ObjectSchema) Kind() string { return "object" }

// Fields returns the declared fields in declaration order.
func (o *ObjectSchema) Fields() []FieldDef {
	return slices.Clone(o.fields)
}

// Parse implements Schema.
func (o *ObjectSchema) Parse(data map[string]any) (map[string]any, error) {
	out, issues := o.parseObject("", data)
	if len(issues) > 0 {
		return nil, &Error{Issues: issues}
	}
	return out, nil
}

func (o *ObjectSchema) check(path string, v any) (any, []Issue) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, []Issue{invalidType(path, "object", v)}
	}
	out, issues := o.parseObject(path, m)
	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

func (o *ObjectSchema) parseObject(path string, data map[string]any) (map[string]any, []Issue) {
	// Undeclared keys survive via the clone.
	out := Clone(data)
	var issues []Issue

	for _, f := range o.fields {
		p := joinPath(path, f.name)
		v, present := data[f.name]

		switch {
		case !present && f.hasDefault:
			out[f.name] = cloneValue(f.def)
		case !present && f.optional:
		case !present:
			issues = append(issues, Issue{
				Path:    p,
				Code:    CodeRequired,
				Message: fmt.Sprintf("required %s is missing", f.value.Kind()),
			})
		case v == nil && f.nullable:
		default:
			normalized, fieldIssues := f.value.check(p, v)
			if len(fieldIssues) > 0 {
				issues = append(issues, fieldIssues...)
				continue
			}
			out[f.name] = normalized
		}
	}

	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}
