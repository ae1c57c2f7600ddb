// Package recipes finds recipes matching ingredients on hand and stores a
// user's saved recipes.
package recipes

import (
	"fmt"
)

// Feature identifies this generation feature in credit ledgers and usage
// records.
const Feature = "recipe_finder"

// MaxResults is the most recipes a single search returns. Fewer is
// legitimate; the model is asked for up to this many.
const MaxResults = 3

// Request captures the user inputs for a recipe search.
type Request struct {
	Ingredients  []string `json:"ingredients"`
	Cuisine      string   `json:"cuisine,omitempty"`
	Restrictions []string `json:"restrictions,omitempty"`
}

// Validate checks the request before any credit is spent.
func (r Request) Validate() error {
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("at least one ingredient is required")
	}
	return nil
}

// Recipe is a normalized recipe, either found by generation or saved by a
// user.
type Recipe struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     string   `json:"prep_time,omitempty"`
	Difficulty   string   `json:"difficulty"`
	Calories     int      `json:"calories"`
}
