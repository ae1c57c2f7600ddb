// Package suggest proposes a single meal for the user's current situation,
// for when they do not want a whole plan.
package suggest

import (
	"fmt"
)

// Feature identifies this generation feature in credit ledgers and usage
// records.
const Feature = "meal_suggestion"

// Request captures the user inputs for a meal suggestion.
type Request struct {
	MealType      string   `json:"meal_type,omitempty"`
	TimeAvailable int      `json:"time_available,omitempty"` // minutes
	Ingredients   []string `json:"ingredients,omitempty"`
}

// Validate checks the request before any credit is spent.
func (r Request) Validate() error {
	if r.TimeAvailable < 0 {
		return fmt.Errorf("time available must not be negative")
	}
	return nil
}

// Suggestion is a single normalized meal suggestion.
type Suggestion struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MealType    string `json:"meal_type"`
	PrepTime    string `json:"prep_time,omitempty"`
	Difficulty  string `json:"difficulty"`
	Calories    int    `json:"calories,omitempty"`
}
