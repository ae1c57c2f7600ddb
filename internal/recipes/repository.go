package recipes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SavedRecipe is a recipe persisted for a user.
type SavedRecipe struct {
	ID        string
	UserID    string
	Recipe    Recipe
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository is a database-backed repository for saved recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// nameKey normalizes a recipe name for the per-user uniqueness constraint.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Save upserts a recipe keyed by user and case-folded name. Saving a recipe
// whose name the user already has replaces the stored version rather than
// failing, so a re-imported or re-generated recipe never errors out.
func (r *Repository) Save(ctx context.Context, userID string, rec Recipe) (string, error) {
	recipeJSON, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal recipe: %w", err)
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO saved_recipes (id, user_id, name, name_key, recipe, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, name_key) DO UPDATE SET
		   name = excluded.name,
		   recipe = excluded.recipe,
		   updated_at = excluded.updated_at`,
		id, userID, rec.Name, nameKey(rec.Name), string(recipeJSON), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save recipe: %w", err)
	}

	// The upsert keeps the original row ID on conflict.
	var storedID string
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM saved_recipes WHERE user_id = ? AND name_key = ?`,
		userID, nameKey(rec.Name),
	).Scan(&storedID)
	if err != nil {
		return "", fmt.Errorf("failed to read back saved recipe: %w", err)
	}
	return storedID, nil
}

// GetByName retrieves a user's saved recipe by name, nil if absent.
func (r *Repository) GetByName(ctx context.Context, userID, name string) (*SavedRecipe, error) {
	var saved SavedRecipe
	var recipeJSON string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, recipe, created_at, updated_at FROM saved_recipes
		 WHERE user_id = ? AND name_key = ?`,
		userID, nameKey(name),
	).Scan(&saved.ID, &saved.UserID, &recipeJSON, &saved.CreatedAt, &saved.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe by name: %w", err)
	}

	if err := json.Unmarshal([]byte(recipeJSON), &saved.Recipe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe %s: %w", saved.ID, err)
	}
	return &saved, nil
}

// ListRecent retrieves the N most recently updated recipes for a user.
func (r *Repository) ListRecent(ctx context.Context, userID string, limit int) ([]SavedRecipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, recipe, created_at, updated_at FROM saved_recipes
		 WHERE user_id = ? ORDER BY updated_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes for user %s: %w", userID, err)
	}
	defer rows.Close()

	var recipes []SavedRecipe
	for rows.Next() {
		var saved SavedRecipe
		var recipeJSON string
		if err := rows.Scan(&saved.ID, &saved.UserID, &recipeJSON, &saved.CreatedAt, &saved.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		if err := json.Unmarshal([]byte(recipeJSON), &saved.Recipe); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recipe %s: %w", saved.ID, err)
		}
		recipes = append(recipes, saved)
	}
	return recipes, rows.Err()
}
