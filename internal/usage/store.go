// Package usage records one audit row per generation attempt for analytics
// and support. Writes here are strictly secondary to delivering the
// generated content: the async path never blocks or fails a caller.
package usage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"platewise/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry describes one generation attempt.
type Entry struct {
	UserID  string
	Feature string
	Request interface{}
	Result  interface{} // nil when the attempt failed
	Err     error       // nil when the attempt succeeded
	Usage   shared.TokenUsage
	Latency time.Duration
}

// Store handles persistence of usage records to SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger.Named("usage")}
}

// Record writes one audit row.
func (s *Store) Record(ctx context.Context, e Entry) error {
	requestJSON, err := json.Marshal(e.Request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var resultJSON sql.NullString
	if e.Result != nil {
		data, err := json.Marshal(e.Result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		resultJSON = sql.NullString{String: string(data), Valid: true}
	}

	var errText sql.NullString
	if e.Err != nil {
		errText = sql.NullString{String: e.Err.Error(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO usage_records
		 (id, user_id, feature, request, result, error, model, prompt_tokens, completion_tokens, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), e.UserID, e.Feature, string(requestJSON), resultJSON, errText,
		e.Usage.Model, e.Usage.PromptTokens, e.Usage.CompletionTokens, e.Latency.Milliseconds(),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}
	return nil
}

// RecordAsync writes the audit row on a background goroutine. Failures are
// logged and swallowed; they must never mask a primary-path error.
func (s *Store) RecordAsync(e Entry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.Record(ctx, e); err != nil {
			s.logger.Warn("failed to record usage",
				zap.String("user_id", e.UserID),
				zap.String("feature", e.Feature),
				zap.Error(err))
		}
	}()
}

// DailyUsage represents per-day generation totals.
type DailyUsage struct {
	Date            string
	Calls           int
	Failures        int
	TotalPrompt     int
	TotalCompletion int
}

// GetDailyUsage retrieves usage rollups for the last N days.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx,
		`SELECT date(created_at) AS day,
		        COUNT(*),
		        SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END),
		        COALESCE(SUM(prompt_tokens), 0),
		        COALESCE(SUM(completion_tokens), 0)
		 FROM usage_records
		 WHERE created_at >= ?
		 GROUP BY day
		 ORDER BY day DESC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Calls, &u.Failures, &u.TotalPrompt, &u.TotalCompletion); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage row: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM usage_records WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up usage records: %w", err)
	}
	return res.RowsAffected()
}
