package acceptance_tests

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"platewise/internal/credits"
	"platewise/internal/database"
	"platewise/internal/gen"
	"platewise/internal/grocery"
	"platewise/internal/llm"
	"platewise/internal/mealplan"
	"platewise/internal/recipes"
	"platewise/internal/shared"
	"platewise/internal/usage"

	"go.uber.org/zap"
)

// --- Mock LLM Client ---
type mockLLMClient struct {
	generateContentCalls int
}

func (m *mockLLMClient) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.generateContentCalls++

	tokens := shared.TokenUsage{PromptTokens: 200, CompletionTokens: 150, TotalTokens: 350, Model: "mock"}

	// Pick the response by what the prompt asks for.
	if strings.Contains(prompt, "meal plan") {
		return llm.ContentResponse{Content: "```json\n" + `{
			"days": [
				{"day": "Day 1", "meals": [
					{"name": "Oats", "type": "breakfast", "calories": 400, "protein": 15, "carbs": 70, "fat": 8},
					{"name": "Curry", "type": "dinner", "calories": 700, "protein": 30, "carbs": 80, "fat": 25}
				]}
			]
		}` + "\n```", Usage: tokens}, nil
	}
	if strings.Contains(prompt, "shopping list") {
		return llm.ContentResponse{Content: `{
			"items": [
				{"name": "Rolled oats", "quantity": "500", "unit": "g", "category": "Pantry"},
				{"name": "Chicken thighs", "quantity": "1", "unit": "kg", "category": "Meat & Seafood"},
				{"name": "Za'atar", "category": "Condiments"}
			]
		}`, Usage: tokens}, nil
	}
	return llm.ContentResponse{Content: `{
		"recipes": [
			{"name": "Oat Pancakes", "ingredients": ["oats", "eggs"], "instructions": ["Blend.", "Fry."], "difficulty": "easy", "calories": 450}
		]
	}`, Usage: tokens}, nil
}

// --- Acceptance Test ---
func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "acceptance.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	llmClient := &mockLLMClient{}
	logger := zap.NewNop()

	invoker := gen.NewInvoker(llmClient, 0)
	guard := gen.NewInflightGuard()
	creditStore := credits.NewStore(db.SQL)
	usageStore := usage.NewStore(db.SQL, logger)

	planService := mealplan.NewService(invoker, guard, creditStore, usageStore, mealplan.NewRepository(db.SQL), logger)
	recipeService := recipes.NewService(invoker, guard, creditStore, usageStore, recipes.NewRepository(db.SQL), logger)
	groceryService := grocery.NewService(invoker, guard, creditStore, usageStore, grocery.NewRepository(db.SQL), logger)

	// --- Step 1: Signup grant ---
	t.Log("--- Step 1: Granting signup credits ---")
	if err := creditStore.GrantOnce(ctx, "user-1", 3, "signup"); err != nil {
		t.Fatalf("Signup grant failed: %v", err)
	}
	// Replayed signup must not double-grant.
	if err := creditStore.GrantOnce(ctx, "user-1", 3, "signup"); err != nil {
		t.Fatalf("Replayed signup grant failed: %v", err)
	}
	if balance, _ := creditStore.Balance(ctx, "user-1"); balance != 3 {
		t.Fatalf("Expected 3 credits after signup, got %d", balance)
	}

	// --- Step 2: Meal plan ---
	t.Log("--- Step 2: Generating a meal plan ---")
	plan, meta, err := planService.Generate(ctx, "user-1", mealplan.Request{Days: 1})
	if err != nil {
		t.Fatalf("Plan generation failed: %v", err)
	}
	if len(plan.Days) != 1 || len(plan.Days[0].Meals) != 2 {
		t.Errorf("Unexpected plan shape: %+v", plan)
	}
	if plan.Days[0].Totals.Calories != 1100 {
		t.Errorf("Expected recomputed total of 1100 kcal, got %d", plan.Days[0].Totals.Calories)
	}
	if meta.Usage.TotalTokens == 0 {
		t.Error("Expected token usage in call meta")
	}

	// --- Step 3: Recipe search ---
	t.Log("--- Step 3: Finding recipes ---")
	found, _, err := recipeService.Find(ctx, "user-1", recipes.Request{Ingredients: []string{"oats", "eggs"}})
	if err != nil {
		t.Fatalf("Recipe search failed: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Oat Pancakes" {
		t.Errorf("Unexpected recipes: %+v", found)
	}

	// --- Step 4: Grocery list ---
	t.Log("--- Step 4: Building a grocery list ---")
	list, _, err := groceryService.Generate(ctx, "user-1", grocery.Request{Meals: []string{"Oats", "Curry"}})
	if err != nil {
		t.Fatalf("Grocery generation failed: %v", err)
	}
	if len(list.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(list.Items))
	}
	for _, item := range list.Items {
		if item.Name == "Za'atar" && item.Category != "Other" {
			t.Errorf("Expected unknown category to land in Other, got %q", item.Category)
		}
	}

	// --- Step 5: Credits exhausted ---
	t.Log("--- Step 5: Verifying credit exhaustion ---")
	if balance, _ := creditStore.Balance(ctx, "user-1"); balance != 0 {
		t.Fatalf("Expected 0 credits after three generations, got %d", balance)
	}
	_, _, err = planService.Generate(ctx, "user-1", mealplan.Request{Days: 1})
	if !errors.Is(err, gen.ErrInsufficientCredits) {
		t.Fatalf("Expected ErrInsufficientCredits, got %v", err)
	}

	if llmClient.generateContentCalls != 3 {
		t.Errorf("Expected 3 provider calls, got %d", llmClient.generateContentCalls)
	}
}
