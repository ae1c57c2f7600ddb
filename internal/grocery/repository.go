package grocery

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SavedList is a grocery list persisted for a user.
type SavedList struct {
	ID        string
	UserID    string
	List      List
	CreatedAt time.Time
}

// Repository is a database-backed repository for saved grocery lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a new grocery list and returns its ID.
func (r *Repository) Save(ctx context.Context, userID string, list *List) (string, error) {
	itemsJSON, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to marshal grocery list: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO saved_grocery_lists (id, user_id, items, created_at) VALUES (?, ?, ?, ?)`,
		id, userID, string(itemsJSON), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert grocery list: %w", err)
	}
	return id, nil
}

// ListRecent retrieves the N most recent grocery lists for a user.
func (r *Repository) ListRecent(ctx context.Context, userID string, limit int) ([]SavedList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, items, created_at FROM saved_grocery_lists
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list grocery lists for user %s: %w", userID, err)
	}
	defer rows.Close()

	var lists []SavedList
	for rows.Next() {
		var saved SavedList
		var itemsJSON string
		if err := rows.Scan(&saved.ID, &saved.UserID, &itemsJSON, &saved.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan grocery list row: %w", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &saved.List); err != nil {
			return nil, fmt.Errorf("failed to unmarshal grocery list %s: %w", saved.ID, err)
		}
		lists = append(lists, saved)
	}
	return lists, rows.Err()
}
