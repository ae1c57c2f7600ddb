package mealplan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SavedPlan is a meal plan persisted for a user.
type SavedPlan struct {
	ID        string
	UserID    string
	Plan      Plan
	CreatedAt time.Time
}

// Repository is a database-backed repository for saved meal plans.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a new meal plan and returns its ID.
func (r *Repository) Save(ctx context.Context, userID string, plan *Plan) (string, error) {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal meal plan: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO saved_meal_plans (id, user_id, plan, created_at) VALUES (?, ?, ?, ?)`,
		id, userID, string(planJSON), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert meal plan: %w", err)
	}
	return id, nil
}

// ListRecent retrieves the N most recent meal plans for a user.
func (r *Repository) ListRecent(ctx context.Context, userID string, limit int) ([]SavedPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, plan, created_at FROM saved_meal_plans
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []SavedPlan
	for rows.Next() {
		var saved SavedPlan
		var planJSON string
		if err := rows.Scan(&saved.ID, &saved.UserID, &planJSON, &saved.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan row: %w", err)
		}
		if err := json.Unmarshal([]byte(planJSON), &saved.Plan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meal plan %s: %w", saved.ID, err)
		}
		plans = append(plans, saved)
	}
	return plans, rows.Err()
}
