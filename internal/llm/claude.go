package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/stellarlinkco/bias-bench/internal/claude"
)

// ClaudeProvider adapts the Claude messages client. The messages API does
// not expose token logprobs, so the provider cannot score sentences and
// serves generation mode only.
type ClaudeProvider struct {
	client *claude.Client
}

func NewClaudeProvider(apiKey string, baseURL string, model string) *ClaudeProvider {
	opts := make([]claude.Option, 0, 2)
	if v := strings.TrimSpace(baseURL); v != "" {
		opts = append(opts, claude.WithBaseURL(v))
	}
	if v := strings.TrimSpace(model); v != "" {
		opts = append(opts, claude.WithModel(v))
	}
	return &ClaudeProvider{
		client: claude.NewClient(strings.TrimSpace(apiKey), opts...),
	}
}

func (p *ClaudeProvider) Name() string {
	return "claude"
}

func (p *ClaudeProvider) Model() string {
	if p == nil {
		return ""
	}
	return p.client.Model()
}

func (p *ClaudeProvider) Complete(ctx context.Context, req *Request) (*Result, error) {
	if p == nil || p.client == nil {
		return nil, &BackendError{Provider: "claude", Op: "complete", Err: errors.New("nil client")}
	}
	if req == nil {
		return nil, &BackendError{Provider: "claude", Op: "complete", Err: errors.New("nil request")}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		// The messages API rejects max_tokens < 1.
		maxTokens = 16
	}

	res, err := p.client.CompleteText(ctx, &claude.Request{
		Messages:    []claude.Message{{Role: "user", Content: req.Prompt}},
		System:      req.System,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, &BackendError{Provider: "claude", Op: "complete", Err: err}
	}
	if res == nil {
		return nil, &BackendError{Provider: "claude", Op: "complete", Err: errors.New("nil response")}
	}

	return &Result{
		Text:         res.Text,
		StopReason:   res.StopReason,
		InputTokens:  res.InputTokens,
		OutputTokens: res.OutputTokens,
		LatencyMs:    res.LatencyMs,
	}, nil
}
