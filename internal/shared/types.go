package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a single model call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// Add accumulates usage from another call, keeping the last model name.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	if other.Model != "" {
		u.Model = other.Model
	}
}

// CallMeta holds operational metadata for one generation flow.
type CallMeta struct {
	Feature  string
	Usage    TokenUsage
	Latency  time.Duration
	Attempts int
}
