// Package alternatives suggests healthier takes on a dish.
package alternatives

import (
	"fmt"
)

// Feature identifies this generation feature in credit ledgers and usage
// records.
const Feature = "healthy_alternatives"

// Count is the contract with the model: exactly this many alternatives.
const Count = 3

// Request captures the user inputs for an alternatives suggestion.
type Request struct {
	Dish         string   `json:"dish"`
	Restrictions []string `json:"restrictions,omitempty"`
}

// Validate checks the request before any credit is spent.
func (r Request) Validate() error {
	if r.Dish == "" {
		return fmt.Errorf("dish is required")
	}
	return nil
}

// Alternative is one healthier substitute for the requested dish.
type Alternative struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Benefits    string `json:"benefits,omitempty"`
	Calories    int    `json:"calories"`
}
