// Package gen implements the generation protocol shared by every AI feature:
// prompt in, model completion out, JSON extracted, schema checked.
package gen

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerationUnavailable signals a provider failure (network, auth, quota).
	ErrGenerationUnavailable = errors.New("generation provider unavailable")

	// ErrGenerationTimeout signals the provider call exceeded its deadline.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrInsufficientCredits signals the pre-flight balance check failed.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInFlight signals a generation for the same feature and user is
	// already running.
	ErrInFlight = errors.New("generation already in progress")
)

// MalformedOutputError means no parseable JSON could be recovered from the
// completion text. The raw text is retained for diagnostics and must never
// be shown to the end user.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed generation output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError means the parsed JSON does not match the feature's
// required shape. Treated as a provider-contract violation.
type SchemaMismatchError struct {
	Feature string
	Reason  string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: schema mismatch: %s", e.Feature, e.Reason)
}

// Retryable reports whether a single re-prompt is worth attempting. Model
// output is non-deterministic, so a fresh completion can fix malformed JSON
// or a shape violation; credit and in-flight failures cannot be retried.
func Retryable(err error) bool {
	var malformed *MalformedOutputError
	var mismatch *SchemaMismatchError
	return errors.As(err, &malformed) || errors.As(err, &mismatch)
}
