package recipes

import (
	"encoding/json"
	"fmt"
	"strings"

	"platewise/internal/gen"
)

var difficulties = map[string]struct{}{
	"easy":   {},
	"medium": {},
	"hard":   {},
}

const fallbackDifficulty = "medium"

// Normalize validates and coerces an extracted payload into a recipe list.
// The list is open: items without a name are dropped, anything past
// MaxResults is cut, and an empty result is legitimate (the user's
// ingredients may simply not make a recipe).
func Normalize(payload json.RawMessage) ([]Recipe, error) {
	var wire struct {
		Recipes []Recipe `json:"recipes"`
	}
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, &gen.SchemaMismatchError{Feature: Feature, Reason: fmt.Sprintf("not a recipe list object: %v", err)}
	}

	kept := make([]Recipe, 0, len(wire.Recipes))
	for _, rec := range wire.Recipes {
		normalized, ok := normalizeRecipe(rec)
		if !ok {
			continue
		}
		kept = append(kept, normalized)
		if len(kept) == MaxResults {
			break
		}
	}
	return kept, nil
}

// NormalizeOne coerces a payload holding a single recipe object. Used by the
// web clipper, where a recipe without a name means extraction failed.
func NormalizeOne(payload json.RawMessage) (*Recipe, error) {
	var rec Recipe
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, &gen.SchemaMismatchError{Feature: Feature, Reason: fmt.Sprintf("not a recipe object: %v", err)}
	}

	normalized, ok := normalizeRecipe(rec)
	if !ok {
		return nil, &gen.SchemaMismatchError{Feature: Feature, Reason: "recipe has no name"}
	}
	return &normalized, nil
}

func normalizeRecipe(rec Recipe) (Recipe, bool) {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return Recipe{}, false
	}
	rec.Difficulty = coerceDifficulty(rec.Difficulty)
	return rec, true
}

func coerceDifficulty(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := difficulties[d]; ok {
		return d
	}
	return fallbackDifficulty
}
