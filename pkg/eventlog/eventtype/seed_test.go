package eventtype_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventlog/pkg/eventlog/eventtype"
	"github.com/randalmurphal/eventlog/pkg/eventlog/schema"
)

const testSeed = `
version: 2.1.0
types:
  - id: $project
    description: Something happened inside a project.
    fields:
      projectId: {type: string}
  - id: $user
    inherits: [$project]
    fields:
      userId: {type: string}
  - id: $invoice.paid
    inherits: [$project]
    json_schema: |
      {"type": "object", "required": ["amount"], "properties": {"amount": {"type": "integer"}}}
`

func TestLoadSeed(t *testing.T) {
	r, err := eventtype.LoadSeed(strings.NewReader(testSeed))
	require.NoError(t, err)

	assert.Equal(t, []string{"$project", "$user", "$invoice.paid"}, r.IDs())
	require.NotNil(t, r.Version())
	assert.Equal(t, "2.1.0", r.Version().String())
	assert.Equal(t, "Something happened inside a project.", r.MustLookup("$project").Description())

	user := r.MustLookup("$user")
	_, err = user.Schema().Parse(map[string]any{"userId": "u"})
	require.NoError(t, err)
	_, err = user.Schema().Parse(map[string]any{})
	assert.Error(t, err)

	paid := r.MustLookup("$invoice.paid")
	_, err = paid.Schema().Parse(map[string]any{"amount": 10})
	require.NoError(t, err)
	_, err = paid.Schema().Parse(map[string]any{"amount": "10"})
	var se *schema.Error
	assert.ErrorAs(t, err, &se)
}

func TestLoadSeed_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"unknown key", "version: 1.0.0\nkinds: []\n"},
		{"bad version", "version: one\ntypes: [{id: $a}]\n"},
		{"bad field", "types: [{id: $a, fields: {x: {type: number}}}]\n"},
		{"fields and json schema", "types: [{id: $a, fields: {x: {type: string}}, json_schema: '{}'}]\n"},
		{"bad json schema", "types: [{id: $a, json_schema: '{'}]\n"},
		{"cycle", "types: [{id: $a, inherits: [$b]}, {id: $b, inherits: [$a]}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eventtype.LoadSeed(strings.NewReader(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSeed), 0o600))

	r, err := eventtype.LoadSeedFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())

	_, err = eventtype.LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
