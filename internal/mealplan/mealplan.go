// Package mealplan generates multi-day meal plans.
package mealplan

import (
	"fmt"
)

// Feature identifies this generation feature in credit ledgers and usage
// records.
const Feature = "meal_plan"

// MaxDays caps a single plan request.
const MaxDays = 14

// Request captures the user inputs for a meal plan generation.
type Request struct {
	Days           int      `json:"days"`
	TargetCalories int      `json:"target_calories,omitempty"`
	TargetProtein  int      `json:"target_protein,omitempty"`
	Cuisines       []string `json:"cuisines,omitempty"`
	Restrictions   []string `json:"restrictions,omitempty"`
}

// Validate checks the request before any credit is spent.
func (r Request) Validate() error {
	if r.Days < 1 || r.Days > MaxDays {
		return fmt.Errorf("days must be between 1 and %d, got %d", MaxDays, r.Days)
	}
	return nil
}

// Meal is a single meal within a day.
type Meal struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Calories    int    `json:"calories"`
	Protein     int    `json:"protein"`
	Carbs       int    `json:"carbs"`
	Fat         int    `json:"fat"`
}

// Totals aggregates a day's nutrition, recomputed from its meals.
type Totals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// Day is one day of the plan.
type Day struct {
	Day    string `json:"day"`
	Meals  []Meal `json:"meals"`
	Totals Totals `json:"totals"`
}

// Plan is the normalized meal plan returned to callers.
type Plan struct {
	Days []Day `json:"days"`
}
