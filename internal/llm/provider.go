package llm

import (
	"context"
	"fmt"
)

// Provider is a model backend that answers one prompt per call.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, req *Request) (*Result, error)
}

// SentenceScorer is implemented by providers whose backend reports token
// logprobs, letting a whole sentence be scored by its total log-likelihood.
// Backends without logprob support do not implement it.
type SentenceScorer interface {
	ScoreSentence(ctx context.Context, sentence string) (float64, error)
}

// Request is a single-turn completion request.
type Request struct {
	Prompt      string
	System      string
	MaxTokens   int
	Temperature float64
}

// Result carries the reply text with usage and timing.
type Result struct {
	Text         string
	StopReason   string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
}

// BackendError wraps a failure talking to a model backend.
type BackendError struct {
	Provider string
	Op       string
	Err      error
}

func (e *BackendError) Error() string {
	if e == nil {
		return "llm: backend error <nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("llm: %s: %s failed", e.Provider, e.Op)
	}
	return fmt.Sprintf("llm: %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
