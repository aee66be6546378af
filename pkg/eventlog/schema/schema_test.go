package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventlog/pkg/eventlog/schema"
)

func parseErr(t *testing.T, err error) *schema.Error {
	t.Helper()
	require.Error(t, err)
	var se *schema.Error
	require.True(t, errors.As(err, &se), "expected *schema.Error, got %T", err)
	return se
}

func TestObject_RequiredFields(t *testing.T) {
	s := schema.Object(schema.Field("projectId", schema.String()))

	t.Run("present", func(t *testing.T) {
		out, err := s.Parse(map[string]any{"projectId": "p1"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"projectId": "p1"}, out)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Parse(map[string]any{})
		se := parseErr(t, err)
		assert.True(t, se.Has("projectId", schema.CodeRequired))
	})

	t.Run("nil payload", func(t *testing.T) {
		_, err := s.Parse(nil)
		se := parseErr(t, err)
		assert.True(t, se.Has("projectId", schema.CodeRequired))
	})
}

func TestObject_StrictMode(t *testing.T) {
	s := schema.Object(
		schema.Field("name", schema.String()),
		schema.Field("meta", schema.Object(schema.Field("source", schema.String()))),
	)

	tests := []struct {
		name string
		data map[string]any
		path string
		code string
	}{
		{"number is not a string", map[string]any{"name": 42, "meta": map[string]any{"source": "x"}}, "name", schema.CodeInvalidType},
		{"bool is not a string", map[string]any{"name": true, "meta": map[string]any{"source": "x"}}, "name", schema.CodeInvalidType},
		{"string is not an object", map[string]any{"name": "n", "meta": "x"}, "meta", schema.CodeInvalidType},
		{"nested mismatch", map[string]any{"name": "n", "meta": map[string]any{"source": 1}}, "meta.source", schema.CodeInvalidType},
		{"null is not a string", map[string]any{"name": nil, "meta": map[string]any{"source": "x"}}, "name", schema.CodeInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Parse(tt.data)
			se := parseErr(t, err)
			assert.True(t, se.Has(tt.path, tt.code), "issues: %v", se.Issues)
		})
	}
}

func TestObject_PassesUnknownKeysThrough(t *testing.T) {
	s := schema.Object(
		schema.Field("meta", schema.Object(schema.Field("source", schema.String()))),
	)
	in := map[string]any{
		"meta":  map[string]any{"source": "api", "extra": 1},
		"other": []any{"a", map[string]any{"b": true}},
	}

	out, err := s.Parse(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestObject_DoesNotModifyInput(t *testing.T) {
	s := schema.Object(
		schema.Field("status", schema.String()).Default("open"),
		schema.Field("meta", schema.Object(schema.Field("tag", schema.String()).Default("none"))),
	)
	in := map[string]any{"meta": map[string]any{}}

	out, err := s.Parse(in)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"meta": map[string]any{}}, in)
	assert.Equal(t, map[string]any{
		"status": "open",
		"meta":   map[string]any{"tag": "none"},
	}, out)

	// Mutating the output must not reach the input either.
	out["meta"].(map[string]any)["tag"] = "changed"
	assert.Empty(t, in["meta"])
}

func TestField_Modifiers(t *testing.T) {
	s := schema.Object(
		schema.Field("opt", schema.String()).Optional(),
		schema.Field("null", schema.String()).Nullable(),
		schema.Field("def", schema.Enum("a", "b")).Default("a"),
	)

	out, err := s.Parse(map[string]any{"null": nil})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"null": nil, "def": "a"}, out)

	_, err = s.Parse(map[string]any{})
	se := parseErr(t, err)
	assert.True(t, se.Has("null", schema.CodeRequired))

	_, err = s.Parse(map[string]any{"null": nil, "opt": nil})
	se = parseErr(t, err)
	assert.True(t, se.Has("opt", schema.CodeInvalidType))

	out, err = s.Parse(map[string]any{"null": "x", "def": "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", out["def"])
}

func TestEnum(t *testing.T) {
	s := schema.Object(schema.Field("role", schema.Enum("owner", "member")))

	_, err := s.Parse(map[string]any{"role": "member"})
	require.NoError(t, err)

	_, err = s.Parse(map[string]any{"role": "admin"})
	se := parseErr(t, err)
	assert.True(t, se.Has("role", schema.CodeInvalidEnumValue))
	assert.Contains(t, se.Error(), `"owner" | "member"`)

	_, err = s.Parse(map[string]any{"role": 1})
	se = parseErr(t, err)
	assert.True(t, se.Has("role", schema.CodeInvalidType))
}

func TestMixed(t *testing.T) {
	s := schema.Object(schema.Field("any", schema.Mixed()))

	for _, v := range []any{nil, "s", 1.5, true, []any{1}, map[string]any{"k": "v"}} {
		_, err := s.Parse(map[string]any{"any": v})
		assert.NoError(t, err, "value %v", v)
	}

	_, err := s.Parse(map[string]any{})
	se := parseErr(t, err)
	assert.True(t, se.Has("any", schema.CodeRequired))
}

func TestObject_CollectsAllIssuesInDeclarationOrder(t *testing.T) {
	s := schema.Object(
		schema.Field("b", schema.String()),
		schema.Field("a", schema.String()),
	)

	_, err := s.Parse(map[string]any{"a": 1})
	se := parseErr(t, err)
	require.Len(t, se.Issues, 2)
	assert.Equal(t, "b", se.Issues[0].Path)
	assert.Equal(t, "a", se.Issues[1].Path)
	assert.Equal(t, "schema validation failed: b: required string is missing; a: expected string, received number", se.Error())
}

func TestObject_PanicsOnBadDeclarations(t *testing.T) {
	assert.Panics(t, func() {
		schema.Object(schema.Field("a", schema.String()), schema.Field("a", schema.String()))
	})
	assert.Panics(t, func() {
		schema.Object(schema.Field("a", schema.String()).Default(3))
	})
	assert.Panics(t, func() {
		schema.Enum()
	})
}

func TestClone(t *testing.T) {
	in := map[string]any{"m": map[string]any{"s": []any{"x"}}}
	out := schema.Clone(in)
	out["m"].(map[string]any)["s"].([]any)[0] = "y"
	assert.Equal(t, "x", in["m"].(map[string]any)["s"].([]any)[0])

	assert.NotNil(t, schema.Clone(nil))
}
