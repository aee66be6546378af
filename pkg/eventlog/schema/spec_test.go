package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/eventlog/pkg/eventlog/schema"
)

func TestFromSpec(t *testing.T) {
	src := `
projectId:
  type: string
role:
  type: enum
  values: [owner, member]
  default: member
note:
  type: string
  optional: true
  nullable: true
context:
  type: object
  optional: true
  fields:
    ip:
      type: string
    extra:
      type: mixed
      optional: true
`
	var fields map[string]schema.FieldSpec
	require.NoError(t, yaml.Unmarshal([]byte(src), &fields))

	s, err := schema.FromSpec(fields)
	require.NoError(t, err)

	names := make([]string, 0)
	for _, f := range s.Fields() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"context", "note", "projectId", "role"}, names)

	out, err := s.Parse(map[string]any{"projectId": "p", "note": nil})
	require.NoError(t, err)
	assert.Equal(t, "member", out["role"])

	_, err = s.Parse(map[string]any{"projectId": "p", "context": map[string]any{}})
	se := parseErr(t, err)
	assert.True(t, se.Has("context.ip", schema.CodeRequired))
}

func TestFromSpec_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]schema.FieldSpec
	}{
		{"missing type", map[string]schema.FieldSpec{"a": {}}},
		{"unknown type", map[string]schema.FieldSpec{"a": {Type: "number"}}},
		{"enum without values", map[string]schema.FieldSpec{"a": {Type: "enum"}}},
		{"bad default", map[string]schema.FieldSpec{"a": {Type: "enum", Values: []string{"x"}, Default: "y"}}},
		{"bad nested", map[string]schema.FieldSpec{"a": {Type: "object", Fields: map[string]schema.FieldSpec{"b": {Type: "?"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.FromSpec(tt.fields)
			assert.Error(t, err)
		})
	}
}
