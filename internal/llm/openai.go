package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to the OpenAI API or any OpenAI-compatible runtime.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey string, baseURL string, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if v := strings.TrimSpace(baseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = "gpt-4o"
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  m,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Model() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *OpenAIProvider) Complete(ctx context.Context, req *Request) (*Result, error) {
	if p == nil || p.client == nil {
		return nil, &BackendError{Provider: "openai", Op: "complete", Err: errors.New("nil client")}
	}
	if ctx == nil {
		return nil, &BackendError{Provider: "openai", Op: "complete", Err: errors.New("nil context")}
	}
	if req == nil {
		return nil, &BackendError{Provider: "openai", Op: "complete", Err: errors.New("nil request")}
	}

	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if system := strings.TrimSpace(req.System); system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       strings.TrimSpace(p.model),
		Messages:    msgs,
		MaxTokens:   clampMaxTokens(req.MaxTokens),
		Temperature: float32(req.Temperature),
	})
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, &BackendError{Provider: "openai", Op: "complete", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &BackendError{Provider: "openai", Op: "complete", Err: errors.New("empty choices")}
	}

	choice := resp.Choices[0]
	return &Result{
		Text:         choice.Message.Content,
		StopReason:   string(choice.FinishReason),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		LatencyMs:    latency,
	}, nil
}

// ScoreSentence returns the total log-likelihood the model assigns to the
// sentence, via the legacy completions API with echoed logprobs.
func (p *OpenAIProvider) ScoreSentence(ctx context.Context, sentence string) (float64, error) {
	if p == nil || p.client == nil {
		return 0, &BackendError{Provider: "openai", Op: "score", Err: errors.New("nil client")}
	}
	if ctx == nil {
		return 0, &BackendError{Provider: "openai", Op: "score", Err: errors.New("nil context")}
	}
	if strings.TrimSpace(sentence) == "" {
		return 0, &BackendError{Provider: "openai", Op: "score", Err: errors.New("empty sentence")}
	}

	resp, err := p.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       strings.TrimSpace(p.model),
		Prompt:      sentence,
		MaxTokens:   1,
		Temperature: 0,
		LogProbs:    1,
		Echo:        true,
	})
	if err != nil {
		return 0, &BackendError{Provider: "openai", Op: "score", Err: err}
	}
	if len(resp.Choices) == 0 {
		return 0, &BackendError{Provider: "openai", Op: "score", Err: errors.New("empty choices")}
	}

	lp := resp.Choices[0].LogProbs
	if len(lp.TokenLogprobs) == 0 {
		return 0, &BackendError{Provider: "openai", Op: "score", Err: errors.New("no logprobs returned")}
	}

	// The completions API always generates at least one token beyond the
	// echoed prompt; tokens whose offset lies past the sentence are
	// generated and must not count toward the sentence score.
	var sum float64
	counted := 0
	for i, tokenLP := range lp.TokenLogprobs {
		if i < len(lp.TextOffset) && lp.TextOffset[i] >= len(sentence) {
			break
		}
		sum += float64(tokenLP)
		counted++
	}
	if counted == 0 {
		return 0, &BackendError{Provider: "openai", Op: "score", Err: errors.New("no echoed tokens")}
	}
	return sum, nil
}

func clampMaxTokens(n int) int {
	if n <= 0 {
		return 0
	}
	return n
}
