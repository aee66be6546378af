package eventtype

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/eventlog/pkg/eventlog/schema"
)

// Seed is the file form of an event type catalog.
//
//	version: 1.0.0
//	types:
//	  - id: $project
//	    fields:
//	      projectId: {type: string}
//	  - id: $user
//	    inherits: [$project]
//	    fields:
//	      userId: {type: string}
type Seed struct {
	Version string     `yaml:"version"`
	Types   []SeedType `yaml:"types"`
}

// SeedType is one catalog entry. A type describes its data either with
// Fields or with an inline JSON Schema document, not both.
type SeedType struct {
	ID          string                      `yaml:"id"`
	Description string                      `yaml:"description,omitempty"`
	Inherits    []string                    `yaml:"inherits,omitempty"`
	Fields      map[string]schema.FieldSpec `yaml:"fields,omitempty"`
	JSONSchema  string                      `yaml:"json_schema,omitempty"`
}

// Definitions converts the seed entries into registry definitions.
func (s Seed) Definitions() ([]Definition, error) {
	defs := make([]Definition, 0, len(s.Types))
	for _, st := range s.Types {
		d := Definition{
			ID:          st.ID,
			Description: st.Description,
			Inherits:    st.Inherits,
		}

		switch {
		case st.JSONSchema != "" && len(st.Fields) > 0:
			return nil, fmt.Errorf("event type %s: fields and json_schema are mutually exclusive", st.ID)
		case st.JSONSchema != "":
			js, err := schema.JSONSchema(strings.TrimPrefix(st.ID, SystemPrefix), st.JSONSchema)
			if err != nil {
				return nil, fmt.Errorf("event type %s: %w", st.ID, err)
			}
			d.Schema = js
		default:
			obj, err := schema.FromSpec(st.Fields)
			if err != nil {
				return nil, fmt.Errorf("event type %s: %w", st.ID, err)
			}
			d.Schema = obj
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// LoadSeed parses a YAML catalog and builds its registry.
// Unknown keys in the document are rejected.
func LoadSeed(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse seed: empty document")
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	defs, err := seed.Definitions()
	if err != nil {
		return nil, err
	}

	var opts []BuildOption
	if seed.Version != "" {
		v, err := semver.NewVersion(seed.Version)
		if err != nil {
			return nil, fmt.Errorf("parse seed version %q: %w", seed.Version, err)
		}
		opts = append(opts, WithVersion(v))
	}

	return Build(defs, opts...)
}

// LoadSeedFile reads a YAML catalog from disk.
func LoadSeedFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}
