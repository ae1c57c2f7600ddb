package recipes

import (
	"encoding/json"
	"errors"
	"testing"

	"platewise/internal/gen"
)

func TestNormalize(t *testing.T) {
	t.Run("HappyPath", func(t *testing.T) {
		payload := `{"recipes": [
			{"name": "Shakshuka", "difficulty": "easy", "ingredients": ["eggs", "tomatoes"], "instructions": ["Simmer", "Crack eggs"], "calories": 420},
			{"name": "Frittata", "difficulty": "medium", "ingredients": ["eggs"], "instructions": ["Bake"], "calories": 380}
		]}`
		recipes, err := Normalize(json.RawMessage(payload))
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if len(recipes) != 2 {
			t.Fatalf("Expected 2 recipes, got %d", len(recipes))
		}
		if recipes[0].Name != "Shakshuka" {
			t.Errorf("Expected 'Shakshuka', got '%s'", recipes[0].Name)
		}
	})

	t.Run("EmptyListIsValid", func(t *testing.T) {
		recipes, err := Normalize(json.RawMessage(`{"recipes": []}`))
		if err != nil {
			t.Fatalf("Expected empty list to be valid, got %v", err)
		}
		if len(recipes) != 0 {
			t.Errorf("Expected 0 recipes, got %d", len(recipes))
		}
	})

	t.Run("NamelessDropped", func(t *testing.T) {
		payload := `{"recipes": [{"name": "   "}, {"name": "Omelette"}]}`
		recipes, err := Normalize(json.RawMessage(payload))
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if len(recipes) != 1 || recipes[0].Name != "Omelette" {
			t.Errorf("Expected only 'Omelette' to survive, got %+v", recipes)
		}
	})

	t.Run("ExtraResultsCut", func(t *testing.T) {
		payload := `{"recipes": [{"name": "A"}, {"name": "B"}, {"name": "C"}, {"name": "D"}]}`
		recipes, err := Normalize(json.RawMessage(payload))
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if len(recipes) != MaxResults {
			t.Errorf("Expected %d recipes, got %d", MaxResults, len(recipes))
		}
	})

	t.Run("UnknownDifficultyCoerced", func(t *testing.T) {
		payload := `{"recipes": [{"name": "Stew", "difficulty": "Expert Chef Level"}]}`
		recipes, err := Normalize(json.RawMessage(payload))
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if recipes[0].Difficulty != "medium" {
			t.Errorf("Expected fallback difficulty 'medium', got '%s'", recipes[0].Difficulty)
		}
	})

	t.Run("WrongShape", func(t *testing.T) {
		_, err := Normalize(json.RawMessage(`{"recipes": "not a list"}`))
		var mismatch *gen.SchemaMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("Expected SchemaMismatchError, got %v", err)
		}
	})
}

func TestNormalizeOne(t *testing.T) {
	t.Run("HappyPath", func(t *testing.T) {
		payload := `{"name": "Borscht", "difficulty": "hard", "ingredients": ["beets"], "instructions": ["Simmer"]}`
		rec, err := NormalizeOne(json.RawMessage(payload))
		if err != nil {
			t.Fatalf("NormalizeOne failed: %v", err)
		}
		if rec.Name != "Borscht" || rec.Difficulty != "hard" {
			t.Errorf("Unexpected recipe: %+v", rec)
		}
	})

	t.Run("MissingName", func(t *testing.T) {
		_, err := NormalizeOne(json.RawMessage(`{"ingredients": ["beets"]}`))
		var mismatch *gen.SchemaMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("Expected SchemaMismatchError, got %v", err)
		}
	})
}
