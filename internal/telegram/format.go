package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"platewise/internal/alternatives"
	"platewise/internal/grocery"
	"platewise/internal/mealplan"
	"platewise/internal/payments"
	"platewise/internal/recipes"
	"platewise/internal/suggest"
	"platewise/internal/usage"
)

// parsePlanArgs parses "/plan <days> [calories]" arguments.
func parsePlanArgs(args string) (mealplan.Request, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return mealplan.Request{}, fmt.Errorf("days is required")
	}

	days, err := strconv.Atoi(fields[0])
	if err != nil {
		return mealplan.Request{}, fmt.Errorf("%q is not a number of days", fields[0])
	}

	req := mealplan.Request{Days: days}
	if len(fields) > 1 {
		calories, err := strconv.Atoi(fields[1])
		if err != nil {
			return mealplan.Request{}, fmt.Errorf("%q is not a calorie target", fields[1])
		}
		req.TargetCalories = calories
	}
	return req, req.Validate()
}

func formatPlan(plan *mealplan.Plan) string {
	var sb strings.Builder
	sb.WriteString("*Your Meal Plan*\n\n")

	for _, day := range plan.Days {
		sb.WriteString(fmt.Sprintf("*%s*\n", day.Day))
		for _, meal := range day.Meals {
			sb.WriteString(fmt.Sprintf("• %s: %s (%d kcal)\n", meal.Type, meal.Name, meal.Calories))
		}
		sb.WriteString(fmt.Sprintf("_%d kcal, %dg protein_\n\n", day.Totals.Calories, day.Totals.Protein))
	}
	return sb.String()
}

func formatRecipes(found []recipes.Recipe) string {
	if len(found) == 0 {
		return "No recipes fit those ingredients. Try adding a few more."
	}

	var sb strings.Builder
	sb.WriteString("*Recipes*\n\n")
	for _, rec := range found {
		sb.WriteString(fmt.Sprintf("*%s* (%s, %s)\n", rec.Name, rec.Difficulty, rec.PrepTime))
		if rec.Description != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", rec.Description))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatAlternatives(dish string, alts []alternatives.Alternative) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Healthier takes on %s*\n\n", dish))
	for _, alt := range alts {
		sb.WriteString(fmt.Sprintf("• *%s* (%d kcal)", alt.Name, alt.Calories))
		if alt.Benefits != "" {
			sb.WriteString(fmt.Sprintf(": %s", alt.Benefits))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatGroceryList groups items by category in the fixed category order.
func formatGroceryList(list *grocery.List) string {
	byCategory := make(map[string][]grocery.Item)
	for _, item := range list.Items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	var sb strings.Builder
	sb.WriteString("*Shopping List*\n")
	for _, category := range grocery.Categories {
		items := byCategory[category]
		if len(items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n*%s*\n", category))
		for _, item := range items {
			if item.Quantity != "" {
				sb.WriteString(fmt.Sprintf("• %s (%s)\n", item.Name, item.Quantity))
			} else {
				sb.WriteString(fmt.Sprintf("• %s\n", item.Name))
			}
		}
	}
	return sb.String()
}

func formatSuggestion(s *suggest.Suggestion) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s* (%s, %s)\n", s.Name, s.Difficulty, s.PrepTime))
	if s.Description != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n", s.Description))
	}
	if s.Calories > 0 {
		sb.WriteString(fmt.Sprintf("%d kcal\n", s.Calories))
	}
	return sb.String()
}

func formatPacks() string {
	var sb strings.Builder
	sb.WriteString("*Credit Packs*\n\n")
	for _, pack := range payments.Packs {
		sb.WriteString(fmt.Sprintf("• *%s*: %d credits for $%.2f\n", pack.ID, pack.Credits, float64(pack.PriceCents)/100))
	}
	sb.WriteString("\nBuy one with /buy <pack>")
	return sb.String()
}

func formatDailyUsage(rollups []usage.DailyUsage) string {
	var sb strings.Builder
	sb.WriteString("*Usage, last 7 days*\n\n")
	if len(rollups) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, day := range rollups {
		sb.WriteString(fmt.Sprintf("• *%s*: %d calls, %d failed, %d tokens\n",
			day.Date, day.Calls, day.Failures, day.TotalPrompt+day.TotalCompletion))
	}
	return sb.String()
}
