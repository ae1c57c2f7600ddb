package recipes

import (
	"context"
	"fmt"

	"platewise/internal/credits"
	"platewise/internal/gen"
	"platewise/internal/shared"
	"platewise/internal/usage"

	"go.uber.org/zap"
)

// Service runs the recipe search flow end to end.
type Service struct {
	invoker *gen.Invoker
	guard   *gen.InflightGuard
	credits *credits.Store
	usage   *usage.Store
	repo    *Repository
	logger  *zap.Logger
}

// NewService creates a recipe search service.
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
		logger:  logger.Named("recipes"),
	}
}

// Find generates up to MaxResults recipes for the ingredients on hand,
// spending one credit. An empty result is a legitimate answer, not an error.
func (s *Service) Find(ctx context.Context, userID string, req Request) ([]Recipe, shared.CallMeta, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.CallMeta{}, fmt.Errorf("invalid recipe search: %w", err)
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
		return nil, shared.CallMeta{}, fmt.Errorf("failed to build recipe search prompt: %w", err)
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
		s.logger.Warn("recipe search failed",
			zap.String("user_id", userID),
			zap.Int("attempts", res.Meta.Attempts),
			zap.Error(err))
		return nil, res.Meta, err
	}

	return res.Value, res.Meta, nil
}

// Save persists a recipe for the user and returns its ID.
func (s *Service) Save(ctx context.Context, userID string, rec Recipe) (string, error) {
	return s.repo.Save(ctx, userID, rec)
}
