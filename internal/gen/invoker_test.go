package gen

import (
	"context"
	"errors"
	"testing"
	"time"

	"platewise/internal/llm"
	"platewise/internal/shared"
)

type stubGenerator struct {
	generateFunc func(ctx context.Context, prompt string) (llm.ContentResponse, error)
}

func (s *stubGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	return s.generateFunc(ctx, prompt)
}

func TestInvoke(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		inv := NewInvoker(&stubGenerator{
			generateFunc: func(ctx context.Context, prompt string) (llm.ContentResponse, error) {
				return llm.ContentResponse{
					Content: `{"ok": true}`,
					Usage:   shared.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
				}, nil
			},
		}, 0)

		resp, err := inv.Invoke(context.Background(), "prompt")
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if resp.Usage.TotalTokens != 15 {
			t.Errorf("Expected 15 total tokens, got %d", resp.Usage.TotalTokens)
		}
	})

	t.Run("DeadlineBecomesTimeout", func(t *testing.T) {
		inv := NewInvoker(&stubGenerator{
			generateFunc: func(ctx context.Context, prompt string) (llm.ContentResponse, error) {
				<-ctx.Done()
				return llm.ContentResponse{}, ctx.Err()
			},
		}, 20*time.Millisecond)

		_, err := inv.Invoke(context.Background(), "prompt")
		if !errors.Is(err, ErrGenerationTimeout) {
			t.Fatalf("Expected ErrGenerationTimeout, got %v", err)
		}
	})

	t.Run("CallerCancellationPassedThrough", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		inv := NewInvoker(&stubGenerator{
			generateFunc: func(ctx context.Context, prompt string) (llm.ContentResponse, error) {
				cancel()
				<-ctx.Done()
				return llm.ContentResponse{}, ctx.Err()
			},
		}, time.Second)

		_, err := inv.Invoke(ctx, "prompt")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
		if errors.Is(err, ErrGenerationTimeout) || errors.Is(err, ErrGenerationUnavailable) {
			t.Errorf("Cancellation must not be wrapped in the taxonomy, got %v", err)
		}
	})

	t.Run("ProviderErrorBecomesUnavailable", func(t *testing.T) {
		inv := NewInvoker(&stubGenerator{
			generateFunc: func(ctx context.Context, prompt string) (llm.ContentResponse, error) {
				return llm.ContentResponse{}, errors.New("503 from upstream")
			},
		}, time.Second)

		_, err := inv.Invoke(context.Background(), "prompt")
		if !errors.Is(err, ErrGenerationUnavailable) {
			t.Fatalf("Expected ErrGenerationUnavailable, got %v", err)
		}
	})
}
