package grocery

import (
	"context"
	"fmt"

	"platewise/internal/credits"
	"platewise/internal/gen"
	"platewise/internal/shared"
	"platewise/internal/usage"

	"go.uber.org/zap"
)

// Service runs the grocery list flow end to end.
type Service struct {
	invoker *gen.Invoker
	guard   *gen.InflightGuard
	credits *credits.Store
	usage   *usage.Store
	repo    *Repository
	logger  *zap.Logger
}

// NewService creates a grocery list service.
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
		logger:  logger.Named("grocery"),
	}
}

// Generate builds a categorized shopping list for the requested meals,
// spending one credit.
func (s *Service) Generate(ctx context.Context, userID string, req Request) (*List, shared.CallMeta, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.CallMeta{}, fmt.Errorf("invalid grocery request: %w", err)
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
		return nil, shared.CallMeta{}, fmt.Errorf("failed to build grocery prompt: %w", err)
	}

	res, err := gen.Run(ctx, s.invoker, Feature, prompt, Normalize)

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
		s.logger.Warn("grocery list generation failed",
			zap.String("user_id", userID),
			zap.Int("attempts", res.Meta.Attempts),
			zap.Error(err))
		return nil, res.Meta, err
	}

	return res.Value, res.Meta, nil
}

// Save persists a generated grocery list for later viewing.
func (s *Service) Save(ctx context.Context, userID string, list *List) (string, error) {
	id, err := s.repo.Save(ctx, userID, list)
	if err != nil {
		return "", err
	}
	s.logger.Info("grocery list saved", zap.String("user_id", userID), zap.String("list_id", id))
	return id, nil
}
