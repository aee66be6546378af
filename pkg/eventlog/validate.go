package eventlog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/randalmurphal/eventlog/pkg/eventlog/eventtype"
	"github.com/randalmurphal/eventlog/pkg/eventlog/schema"
)

// Validate applies every schema in the closure to data, in closure order.
// Each schema sees the output of the one before it. The first rejection
// stops the pipeline and is returned as a *ValidationError; requested is
// carried into that error for diagnostics.
//
// data is never modified. A nil map is treated as an empty object.
func Validate(closure eventtype.Closure, requested []string, data map[string]any) (map[string]any, error) {
	current := data
	if current == nil {
		current = map[string]any{}
	}

	for _, t := range closure.Types() {
		next, err := t.Schema().Parse(current)
		if err != nil {
			var se *schema.Error
			if !errors.As(err, &se) {
				return nil, fmt.Errorf("event type %s: %w", t.ID(), err)
			}
			return nil, &ValidationError{
				EventType: t.ID(),
				Payload:   schema.Clone(current),
				Original:  schema.Clone(data),
				Requested: slices.Clone(requested),
				Err:       err,
			}
		}
		current = next
	}

	if closure.Len() == 0 {
		return schema.Clone(current), nil
	}
	return current, nil
}
