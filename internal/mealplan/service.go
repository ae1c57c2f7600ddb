package mealplan

import (
	"context"
	"encoding/json"
	"fmt"

	"platewise/internal/credits"
	"platewise/internal/gen"
	"platewise/internal/shared"
	"platewise/internal/usage"

	"go.uber.org/zap"
)

// Service runs the meal plan generation flow end to end.
type Service struct {
	invoker *gen.Invoker
	guard   *gen.InflightGuard
	credits *credits.Store
	usage   *usage.Store
	repo    *Repository
	logger  *zap.Logger
}

// NewService creates a meal plan service.
func NewService(
	invoker *gen.Invoker,
	guard *gen.InflightGuard,
	creditStore *credits.Store,
	usageStore *usage.Store,
	repo *Repository,
	logger *zap.Logger,
) *Service {
	return &Service{
		invoker: invoker,
		guard:   guard,
		credits: creditStore,
		usage:   usageStore,
		repo:    repo,
		logger:  logger.Named("mealplan"),
	}
}

// Generate produces a meal plan for the request, spending one credit. A
// second concurrent call for the same user is rejected with gen.ErrInFlight
// before any credit is touched.
func (s *Service) Generate(ctx context.Context, userID string, req Request) (*Plan, shared.CallMeta, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.CallMeta{}, fmt.Errorf("invalid meal plan request: %w", err)
	}

	release, err := s.guard.Acquire(Feature, userID)
	if err != nil {
		return nil, shared.CallMeta{}, err
	}
	defer release()

	if err := s.credits.Consume(ctx, userID, Feature); err != nil {
		return nil, shared.CallMeta{}, err
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, shared.CallMeta{}, fmt.Errorf("failed to build meal plan prompt: %w", err)
	}

	res, err := gen.Run(ctx, s.invoker, Feature, prompt, func(payload json.RawMessage) (*Plan, error) {
		return Normalize(payload, req.Days)
	})

	entry := usage.Entry{
		UserID:  userID,
		Feature: Feature,
		Request: req,
		Err:     err,
		Usage:   res.Meta.Usage,
		Latency: res.Meta.Latency,
	}
	if err == nil {
		entry.Result = res.Value
	}
	s.usage.RecordAsync(entry)

	if err != nil {
		s.logger.Warn("meal plan generation failed",
			zap.String("user_id", userID),
			zap.Int("attempts", res.Meta.Attempts),
			zap.Error(err))
		return nil, res.Meta, err
	}

	return res.Value, res.Meta, nil
}

// Save persists a generated plan for the user and returns its ID.
func (s *Service) Save(ctx context.Context, userID string, plan *Plan) (string, error) {
	return s.repo.Save(ctx, userID, plan)
}
