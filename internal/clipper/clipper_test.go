package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"platewise/internal/database"
	"platewise/internal/gen"
	"platewise/internal/llm"
	"platewise/internal/recipes"
	"platewise/internal/usage"

	"go.uber.org/zap"
)

type capturingGenerator struct {
	lastPrompt string
	response   string
}

func (c *capturingGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	c.lastPrompt = prompt
	return llm.ContentResponse{Content: c.response}, nil
}

const recipePage = `<html><head>
<script>trackEverything();</script>
<style>body { color: red; }</style>
</head><body>
<nav>Home | Recipes | About</nav>
<h1>Grandma's Lentil Soup</h1>
<p>A hearty soup for cold days.</p>
<ul><li>1 cup lentils</li><li>1 onion</li></ul>
<footer>Copyright</footer>
</body></html>`

func newTestClipper(t *testing.T, textGen llm.TextGenerator) (*Clipper, *recipes.Repository) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := recipes.NewRepository(db.SQL)
	clip := NewClipper(gen.NewInvoker(textGen, 0), repo, usage.NewStore(db.SQL, zap.NewNop()), zap.NewNop())
	return clip, repo
}

func TestClipURL(t *testing.T) {
	ctx := context.Background()

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(recipePage))
	}))
	defer page.Close()

	textGen := &capturingGenerator{response: "```json\n" + `{
		"name": "Grandma's Lentil Soup",
		"description": "A hearty soup for cold days.",
		"ingredients": ["1 cup lentils", "1 onion"],
		"instructions": ["Simmer everything for 40 minutes."],
		"prep_time": "50 mins",
		"difficulty": "easy",
		"calories": 320
	}` + "\n```"}

	clip, repo := newTestClipper(t, textGen)

	rec, id, err := clip.ClipURL(ctx, "user-1", page.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}
	if rec.Name != "Grandma's Lentil Soup" {
		t.Errorf("Unexpected recipe name: %s", rec.Name)
	}
	if id == "" {
		t.Error("Expected a saved recipe ID")
	}

	// Script, style and nav noise must not reach the model.
	for _, noise := range []string{"trackEverything", "color: red", "Home | Recipes"} {
		if strings.Contains(textGen.lastPrompt, noise) {
			t.Errorf("Prompt contains page noise %q", noise)
		}
	}
	if !strings.Contains(textGen.lastPrompt, "1 cup lentils") {
		t.Error("Prompt is missing the page's recipe text")
	}

	saved, err := repo.GetByName(ctx, "user-1", "Grandma's Lentil Soup")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if saved == nil {
		t.Fatal("Clipped recipe was not saved")
	}
}

func TestClipURLNoRecipeOnPage(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Nothing to cook here.</p></body></html>"))
	}))
	defer page.Close()

	// The model follows the instruction to return an empty name.
	clip, _ := newTestClipper(t, &capturingGenerator{response: `{"name": ""}`})

	if _, _, err := clip.ClipURL(context.Background(), "user-1", page.URL); err == nil {
		t.Fatal("Expected an error for a page without a recipe, got nil")
	}
}

func TestClipURLFetchFailure(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer page.Close()

	clip, _ := newTestClipper(t, &capturingGenerator{response: `{}`})

	if _, _, err := clip.ClipURL(context.Background(), "user-1", page.URL); err == nil {
		t.Fatal("Expected an error for a 404 page, got nil")
	}
}
