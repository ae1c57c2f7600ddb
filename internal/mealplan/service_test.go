package mealplan

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"platewise/internal/credits"
	"platewise/internal/database"
	"platewise/internal/gen"
	"platewise/internal/llm"
	"platewise/internal/usage"

	"go.uber.org/zap"
)

type MockTextGenerator struct {
	response string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	return llm.ContentResponse{Content: m.response}, nil
}

func newTestService(t *testing.T, textGen llm.TextGenerator) (*Service, *credits.Store) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	creditStore := credits.NewStore(db.SQL)
	usageStore := usage.NewStore(db.SQL, zap.NewNop())
	svc := NewService(
		gen.NewInvoker(textGen, 0),
		gen.NewInflightGuard(),
		creditStore,
		usageStore,
		NewRepository(db.SQL),
		zap.NewNop(),
	)
	return svc, creditStore
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	completion := "Here is your plan:\n```json\n" + `{
		"days": [
			{"day": "Day 1", "meals": [
				{"name": "Oats", "type": "breakfast", "calories": 400, "protein": 15, "carbs": 70, "fat": 8},
				{"name": "Wrap", "type": "lunch", "calories": 600, "protein": 35, "carbs": 60, "fat": 20},
				{"name": "Curry", "type": "dinner", "calories": 700, "protein": 30, "carbs": 80, "fat": 25}
			]},
			{"day": "Day 2", "meals": [
				{"name": "Yogurt", "type": "breakfast", "calories": 350, "protein": 20, "carbs": 40, "fat": 10},
				{"name": "Soup", "type": "lunch", "calories": 450, "protein": 18, "carbs": 50, "fat": 15},
				{"name": "Tacos", "type": "dinner", "calories": 650, "protein": 32, "carbs": 65, "fat": 28}
			]}
		]
	}` + "\n```\nEnjoy!"

	svc, creditStore := newTestService(t, &MockTextGenerator{response: completion})

	if err := creditStore.Grant(ctx, "user-1", 1, "test"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	req := Request{Days: 2, TargetCalories: 2000, TargetProtein: 100}
	plan, meta, err := svc.Generate(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(plan.Days) != 2 {
		t.Errorf("Expected 2 days, got %d", len(plan.Days))
	}
	for _, day := range plan.Days {
		if len(day.Meals) == 0 {
			t.Errorf("Expected non-empty meals for %s", day.Day)
		}
	}
	if meta.Feature != Feature {
		t.Errorf("Expected feature %q in meta, got %q", Feature, meta.Feature)
	}

	balance, err := creditStore.Balance(ctx, "user-1")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("Expected balance 0 after generation, got %d", balance)
	}

	// Out of credits now
	_, _, err = svc.Generate(ctx, "user-1", req)
	if !errors.Is(err, gen.ErrInsufficientCredits) {
		t.Errorf("Expected ErrInsufficientCredits, got %v", err)
	}
}

func TestGenerateInvalidRequest(t *testing.T) {
	svc, _ := newTestService(t, &MockTextGenerator{response: "{}"})

	_, _, err := svc.Generate(context.Background(), "user-1", Request{Days: 0})
	if err == nil {
		t.Fatal("Expected an error for zero days, got nil")
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	req := Request{Days: 3, TargetCalories: 1800, Cuisines: []string{"thai", "italian"}, Restrictions: []string{"no nuts"}}

	first, err := buildPrompt(req)
	if err != nil {
		t.Fatalf("buildPrompt failed: %v", err)
	}
	second, _ := buildPrompt(req)
	if first != second {
		t.Error("Expected identical prompts for identical requests")
	}

	for _, want := range []string{"exactly 3 days", "1800", "thai, italian", "no nuts"} {
		if !strings.Contains(first, want) {
			t.Errorf("Expected prompt to contain %q:\n%s", want, first)
		}
	}
}
