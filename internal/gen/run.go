package gen

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"platewise/internal/shared"
)

const (
	// One extra attempt for transient provider failures, one for contract
	// violations (malformed JSON, wrong shape). Model output is
	// non-deterministic, so a single fresh completion is worth the tokens;
	// beyond that the caller decides.
	providerRetries = 1
	contractRetries = 1

	retryBackoff = 2 * time.Second
)

// NormalizeFunc turns an extracted JSON payload into the feature's trusted
// shape, or fails with a *SchemaMismatchError.
type NormalizeFunc[T any] func(payload json.RawMessage) (T, error)

// Result carries the normalized value together with token usage and latency
// accumulated across all attempts.
type Result[T any] struct {
	Value T
	Meta  shared.CallMeta
}

// Run executes one generation flow: invoke the model, extract the JSON
// payload, normalize it. Steps are strictly sequential; the normalizer never
// sees an unparsed payload. Transient provider errors are retried once with
// backoff, contract violations are re-prompted once, everything else is
// returned as-is.
func Run[T any](ctx context.Context, inv *Invoker, feature, prompt string, normalize NormalizeFunc[T]) (Result[T], error) {
	start := time.Now()
	res := Result[T]{Meta: shared.CallMeta{Feature: feature}}

	providerLeft := providerRetries
	contractLeft := contractRetries

	var lastErr error
	for {
		res.Meta.Attempts++

		resp, err := inv.Invoke(ctx, prompt)
		res.Meta.Usage.Add(resp.Usage)
		if err != nil {
			lastErr = err
			if providerLeft > 0 && (errors.Is(err, ErrGenerationUnavailable) || errors.Is(err, ErrGenerationTimeout)) {
				providerLeft--
				select {
				case <-ctx.Done():
					res.Meta.Latency = time.Since(start)
					return res, ctx.Err()
				case <-time.After(retryBackoff):
				}
				continue
			}
			break
		}

		payload, err := ExtractJSON(resp.Content)
		var value T
		if err == nil {
			value, err = normalize(payload)
		}
		if err == nil {
			res.Value = value
			res.Meta.Latency = time.Since(start)
			return res, nil
		}

		lastErr = err
		if contractLeft > 0 && Retryable(err) {
			contractLeft--
			continue
		}
		break
	}

	res.Meta.Latency = time.Since(start)
	return res, lastErr
}
