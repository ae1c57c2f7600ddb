package mealplan

import (
	"encoding/json"
	"fmt"
	"strings"

	"platewise/internal/gen"
)

var mealTypes = map[string]struct{}{
	"breakfast": {},
	"lunch":     {},
	"dinner":    {},
	"snack":     {},
}

const fallbackMealType = "snack"

// Normalize validates and coerces an extracted payload into a Plan.
//
// The day count must equal the requested count: a plan with missing days is
// useless to render, so short or long plans fail with a schema mismatch
// rather than being silently truncated or padded. Meals without a name are
// dropped; a day left with no meals fails the whole plan.
func Normalize(payload json.RawMessage, requestedDays int) (*Plan, error) {
	var plan Plan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return nil, &gen.SchemaMismatchError{Feature: Feature, Reason: fmt.Sprintf("not a meal plan object: %v", err)}
	}

	if len(plan.Days) != requestedDays {
		return nil, &gen.SchemaMismatchError{
			Feature: Feature,
			Reason:  fmt.Sprintf("expected %d days, got %d", requestedDays, len(plan.Days)),
		}
	}

	for i := range plan.Days {
		day := &plan.Days[i]
		if strings.TrimSpace(day.Day) == "" {
			day.Day = fmt.Sprintf("Day %d", i+1)
		}

		kept := day.Meals[:0]
		for _, meal := range day.Meals {
			meal.Name = strings.TrimSpace(meal.Name)
			if meal.Name == "" {
				continue
			}
			meal.Type = coerceMealType(meal.Type)
			kept = append(kept, meal)
		}
		day.Meals = kept

		if len(day.Meals) == 0 {
			return nil, &gen.SchemaMismatchError{
				Feature: Feature,
				Reason:  fmt.Sprintf("%s has no usable meals", day.Day),
			}
		}

		day.Totals = Totals{}
		for _, meal := range day.Meals {
			day.Totals.Calories += meal.Calories
			day.Totals.Protein += meal.Protein
			day.Totals.Carbs += meal.Carbs
			day.Totals.Fat += meal.Fat
		}
	}

	return &plan, nil
}

// coerceMealType clamps unknown meal types to the fallback. The model's
// vocabulary is not contractually guaranteed.
func coerceMealType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := mealTypes[t]; ok {
		return t
	}
	return fallbackMealType
}
