package suggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"platewise/internal/gen"
)

var mealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

var difficulties = []string{"easy", "medium", "hard"}

// Normalize validates and coerces an extracted payload into a Suggestion.
// The payload must be a single object with a name; unknown meal types fall
// back to "snack" and unknown difficulties to "medium".
func Normalize(payload json.RawMessage) (*Suggestion, error) {
	var s Suggestion
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, &gen.SchemaMismatchError{Feature: Feature, Reason: fmt.Sprintf("not a suggestion object: %v", err)}
	}

	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return nil, &gen.SchemaMismatchError{Feature: Feature, Reason: "suggestion has no name"}
	}

	s.MealType = coerce(s.MealType, mealTypes, "snack")
	s.Difficulty = coerce(s.Difficulty, difficulties, "medium")
	if s.Calories < 0 {
		s.Calories = 0
	}
	return &s, nil
}

func coerce(raw string, allowed []string, fallback string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	for _, a := range allowed {
		if trimmed == a {
			return a
		}
	}
	return fallback
}
