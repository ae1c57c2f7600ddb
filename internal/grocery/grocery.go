// Package grocery turns a set of planned meals into a categorized shopping
// list.
package grocery

import (
	"fmt"
)

// Feature identifies this generation feature in credit ledgers and usage
// records.
const Feature = "grocery_list"

// Categories is the fixed vocabulary a list item may carry. Anything the
// model invents outside this set is clamped to "Other".
var Categories = []string{
	"Produce",
	"Dairy",
	"Meat & Seafood",
	"Bakery",
	"Pantry",
	"Frozen",
	"Beverages",
	"Spices",
	"Other",
}

// FallbackCategory is where unrecognized categories land.
const FallbackCategory = "Other"

// Request captures the user inputs for a grocery list generation.
type Request struct {
	Meals    []string `json:"meals"`
	Servings int      `json:"servings,omitempty"`
}

// Validate checks the request before any credit is spent.
func (r Request) Validate() error {
	if len(r.Meals) == 0 {
		return fmt.Errorf("at least one meal is required")
	}
	return nil
}

// Item is one entry of the normalized shopping list. Quantity is a display
// string; when the model sends quantity and unit separately they are joined
// here.
type Item struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Category string `json:"category"`
}

// List is the normalized grocery list returned to callers.
type List struct {
	Items []Item `json:"items"`
}
