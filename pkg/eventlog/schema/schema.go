// Package schema provides the field validators that describe the data an
// event type carries.
//
// Schemas run in strict mode: values are never coerced (42 is not a string)
// and keys a schema does not declare are passed through untouched, so a
// payload can be handed from one schema to the next without losing fields.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Schema validates a payload and returns its normalized form.
// Implementations must not modify data and must keep keys they do not declare.
type Schema interface {
	Parse(data map[string]any) (map[string]any, error)
}

// Value checks a single field value.
type Value interface {
	// Kind names the expected value in issue messages ("string", "object").
	Kind() string

	check(path string, v any) (any, []Issue)
}

// Issue codes.
const (
	CodeRequired         = "required"
	CodeInvalidType      = "invalid_type"
	CodeInvalidEnumValue = "invalid_enum_value"
	CodeInvalidValue     = "invalid_value"
)

// Issue describes one reason a payload was rejected.
type Issue struct {
	// Path is the dotted field path ("actor.id"); empty for the payload root.
	Path string
	// Code is one of the Code* constants.
	Code string
	// Message is a human-readable description.
	Message string
}

// String returns "path: message".
func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Error is returned by Parse when a payload does not satisfy a schema.
// Issues are ordered by field declaration.
type Error struct {
	Issues []Issue
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Issues) == 0 {
		return "schema validation failed"
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether an issue with the given path and code was recorded.
func (e *Error) Has(path, code string) bool {
	for _, issue := range e.Issues {
		if issue.Path == path && issue.Code == code {
			return true
		}
	}
	return false
}

// Clone deep-copies a payload. Nested maps and slices are copied; other
// values are shared. A nil map yields an empty, non-nil map.
func Clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		s := make([]any, len(t))
		for i := range t {
			s[i] = cloneValue(t[i])
		}
		return s
	}
	return v
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func invalidType(path, expected string, v any) Issue {
	return Issue{
		Path:    path,
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("expected %s, received %s", expected, describe(v)),
	}
}

// describe names the JSON type of v.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
