package alternatives

import (
	"encoding/json"
	"fmt"
	"strings"

	"platewise/internal/gen"
)

// Normalize validates an extracted payload into exactly Count alternatives.
// Unlike the open-list features, this one has a fixed count: a nameless
// entry or a short list means the completion is unusable, so the whole
// normalization fails rather than returning a partial answer.
func Normalize(payload json.RawMessage) ([]Alternative, error) {
	var wire struct {
		Alternatives []Alternative `json:"alternatives"`
	}
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, &gen.SchemaMismatchError{Feature: Feature, Reason: fmt.Sprintf("not an alternatives object: %v", err)}
	}

	if len(wire.Alternatives) != Count {
		return nil, &gen.SchemaMismatchError{
			Feature: Feature,
			Reason:  fmt.Sprintf("expected exactly %d alternatives, got %d", Count, len(wire.Alternatives)),
		}
	}

	for i := range wire.Alternatives {
		alt := &wire.Alternatives[i]
		alt.Name = strings.TrimSpace(alt.Name)
		if alt.Name == "" {
			return nil, &gen.SchemaMismatchError{
				Feature: Feature,
				Reason:  fmt.Sprintf("alternative %d has no name", i+1),
			}
		}
	}

	return wire.Alternatives, nil
}
