package gen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"platewise/internal/llm"
)

// DefaultTimeout bounds a single provider call when the config does not say
// otherwise.
const DefaultTimeout = 45 * time.Second

// Invoker wraps a text generator with an explicit per-call deadline and maps
// provider failures onto the generation error taxonomy.
type Invoker struct {
	textGen llm.TextGenerator
	timeout time.Duration
}

// NewInvoker creates an Invoker. A non-positive timeout falls back to
// DefaultTimeout.
func NewInvoker(textGen llm.TextGenerator, timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{textGen: textGen, timeout: timeout}
}

// Invoke sends the prompt and returns the raw completion. Deadline overruns
// surface as ErrGenerationTimeout, caller cancellation is passed through
// untouched, and every other provider failure becomes
// ErrGenerationUnavailable.
func (i *Invoker) Invoke(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	resp, err := i.textGen.GenerateContent(callCtx, prompt)
	if err == nil {
		return resp, nil
	}

	if errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled {
		return resp, err
	}
	if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
		return resp, fmt.Errorf("%w after %s", ErrGenerationTimeout, i.timeout)
	}
	return resp, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
}
