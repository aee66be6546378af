package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// jsonSchema adapts a compiled JSON Schema document to Schema.
// It validates only; the payload is returned as given.
type jsonSchema struct {
	name     string
	compiled *jsonschema.Schema
}

// JSONSchema compiles a Draft 2020-12 JSON Schema document.
// name identifies the schema in errors and must be unique per compiler use.
//
// Unknown keys are only rejected if the document itself says so
// (additionalProperties: false), which would break schema composition.
func JSONSchema(name, src string) (Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://eventlog.schemas.local/%s.schema.json", name)
	if err := c.AddResource(url, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("load json schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile json schema %s: %w", name, err)
	}
	return &jsonSchema{name: name, compiled: compiled}, nil
}

// MustJSONSchema is like JSONSchema but panics on error.
func MustJSONSchema(name, src string) Schema {
	s, err := JSONSchema(name, src)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse implements Schema.
func (s *jsonSchema) Parse(data map[string]any) (map[string]any, error) {
	out := Clone(data)

	// The validator sees the payload after a JSON round trip, which would
	// turn a time.Time into a string or a []string into an array.
	if issues := checkJSONValues("", out, nil); len(issues) > 0 {
		return nil, &Error{Issues: issues}
	}

	doc, err := toJSONDocument(out)
	if err != nil {
		return nil, fmt.Errorf("json schema %s: %w", s.name, err)
	}

	if err := s.compiled.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, &Error{Issues: leafIssues(ve, nil)}
		}
		return nil, fmt.Errorf("json schema %s: %w", s.name, err)
	}
	return out, nil
}

// checkJSONValues reports every value that is not already a JSON value.
func checkJSONValues(path string, v any, issues []Issue) []Issue {
	switch t := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			issues = checkJSONValues(joinPath(path, k), t[k], issues)
		}
	case []any:
		for i, item := range t {
			issues = checkJSONValues(joinPath(path, strconv.Itoa(i)), item, issues)
		}
	default:
		issues = append(issues, invalidType(path, "JSON value", v))
	}
	return issues
}

// toJSONDocument re-decodes the payload so that every value has the shape
// the validator expects (json.Number, []any, map[string]any).
func toJSONDocument(data map[string]any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return doc, nil
}

func leafIssues(ve *jsonschema.ValidationError, issues []Issue) []Issue {
	if len(ve.Causes) == 0 && strings.HasSuffix(ve.KeywordLocation, "/required") {
		return append(issues, requiredIssues(ve)...)
	}
	if len(ve.Causes) == 0 {
		return append(issues, Issue{
			Path:    pointerToPath(ve.InstanceLocation),
			Code:    CodeInvalidValue,
			Message: ve.Message,
		})
	}
	for _, cause := range ve.Causes {
		issues = leafIssues(cause, issues)
	}
	return issues
}

// requiredIssues reports one issue per property named in a "required"
// failure, e.g. "missing properties: 'a', 'b'".
func requiredIssues(ve *jsonschema.ValidationError) []Issue {
	parent := pointerToPath(ve.InstanceLocation)
	names, ok := missingProperties(ve.Message)
	if !ok {
		return []Issue{{Path: parent, Code: CodeRequired, Message: ve.Message}}
	}
	issues := make([]Issue, 0, len(names))
	for _, name := range names {
		issues = append(issues, Issue{
			Path:    joinPath(parent, name),
			Code:    CodeRequired,
			Message: "required property is missing",
		})
	}
	return issues
}

// missingProperties parses the validator's list of single-quoted names.
func missingProperties(msg string) ([]string, bool) {
	rest, ok := strings.CutPrefix(msg, "missing properties: ")
	if !ok {
		return nil, false
	}
	var names []string
	for rest != "" {
		if rest[0] != '\'' {
			return nil, false
		}
		i := 1
		for i < len(rest) && rest[i] != '\'' {
			if rest[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(rest) {
			return nil, false
		}
		inner := strings.ReplaceAll(rest[1:i], `\'`, `'`)
		inner = strings.ReplaceAll(inner, `"`, `\"`)
		name, err := strconv.Unquote(`"` + inner + `"`)
		if err != nil {
			return nil, false
		}
		names = append(names, name)
		rest = strings.TrimPrefix(rest[i+1:], ", ")
	}
	return names, len(names) > 0
}

// pointerToPath turns "/actor/id" into "actor.id".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}
