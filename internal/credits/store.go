// Package credits manages the per-user consumable balance that gates the
// generation features.
package credits

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"platewise/internal/gen"

	"github.com/google/uuid"
)

// Store handles persistence of credit balances and their ledger.
type Store struct {
	db *sql.DB
}

// NewStore creates a new credit store on an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Consume atomically spends one credit for the given feature. The decrement
// is a single conditional UPDATE so two concurrent calls can never both
// succeed on a balance of one; the loser gets gen.ErrInsufficientCredits.
func (s *Store) Consume(ctx context.Context, userID, feature string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE user_credits SET credits = credits - 1, updated_at = ? WHERE user_id = ? AND credits > 0`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement credits: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return gen.ErrInsufficientCredits
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO credit_transactions (id, user_id, delta, reason, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, -1, feature, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record credit transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credit consumption: %w", err)
	}
	return nil
}

// Grant adds credits to a user's balance, creating the row if needed.
func (s *Store) Grant(ctx context.Context, userID string, amount int, reason string) error {
	if amount <= 0 {
		return fmt.Errorf("grant amount must be positive, got %d", amount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_credits (user_id, credits, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET credits = credits + excluded.credits, updated_at = excluded.updated_at`,
		userID, amount, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to grant credits: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO credit_transactions (id, user_id, delta, reason, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, amount, reason, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record credit transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credit grant: %w", err)
	}
	return nil
}

// GrantOnce grants credits only if no transaction with this reason exists
// yet. Purchase redemptions use the checkout ID as the reason, so replaying a
// webhook or re-running a verify command cannot double-credit a user.
func (s *Store) GrantOnce(ctx context.Context, userID string, amount int, reason string) error {
	if amount <= 0 {
		return fmt.Errorf("grant amount must be positive, got %d", amount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credit_transactions WHERE user_id = ? AND reason = ?`,
		userID, reason,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check for existing grant: %w", err)
	}
	if existing > 0 {
		return nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_credits (user_id, credits, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET credits = credits + excluded.credits, updated_at = excluded.updated_at`,
		userID, amount, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to grant credits: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO credit_transactions (id, user_id, delta, reason, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, amount, reason, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record credit transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credit grant: %w", err)
	}
	return nil
}

// Balance returns the user's current credit balance. Unknown users have a
// balance of zero.
func (s *Store) Balance(ctx context.Context, userID string) (int, error) {
	var credits int
	err := s.db.QueryRowContext(ctx,
		`SELECT credits FROM user_credits WHERE user_id = ?`, userID,
	).Scan(&credits)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read credit balance: %w", err)
	}
	return credits, nil
}
