package alternatives

import (
	"context"
	"fmt"

	"platewise/internal/credits"
	"platewise/internal/gen"
	"platewise/internal/shared"
	"platewise/internal/usage"

	"go.uber.org/zap"
)

// Service runs the healthy-alternatives flow end to end.
type Service struct {
	invoker *gen.Invoker
	guard   *gen.InflightGuard
	credits *credits.Store
	usage   *usage.Store
	logger  *zap.Logger
}

// NewService creates an alternatives service.
func NewService(
	invoker *gen.Invoker,
	guard *gen.InflightGuard,
	creditStore *credits.Store,
	usageStore *usage.Store,
	logger *zap.Logger,
) *Service {
	return &Service{
		invoker: invoker,
		guard:   guard,
		credits: creditStore,
		usage:   usageStore,
		logger:  logger.Named("alternatives"),
	}
}

// Suggest generates exactly Count healthier alternatives for the dish,
// spending one credit.
func (s *Service) Suggest(ctx context.Context, userID string, req Request) ([]Alternative, shared.CallMeta, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.CallMeta{}, fmt.Errorf("invalid alternatives request: %w", err)
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
		return nil, shared.CallMeta{}, fmt.Errorf("failed to build alternatives prompt: %w", err)
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
		s.logger.Warn("alternatives generation failed",
			zap.String("user_id", userID),
			zap.Int("attempts", res.Meta.Attempts),
			zap.Error(err))
		return nil, res.Meta, err
	}

	return res.Value, res.Meta, nil
}
