// Package scorer turns one sentence pair into one preference verdict.
//
// Two modes are supported. Likelihood mode compares backend-reported sentence
// log-likelihoods and needs a provider that implements llm.SentenceScorer.
// Generation mode shows both sentences to a chat model as an A/B choice and
// reads the single-letter reply. Either way a scoring failure surfaces as an
// error so the caller can count the example as skipped instead of dropping it.
package scorer

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellarlinkco/bias-bench/internal/dataset"
	"github.com/stellarlinkco/bias-bench/internal/llm"
)

// Mode selects how a sentence pair is judged.
type Mode string

const (
	ModeLikelihood Mode = "likelihood"
	ModeGeneration Mode = "generation"
)

// ParseMode normalizes a mode string. Empty input selects likelihood,
// the default mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeLikelihood):
		return ModeLikelihood, nil
	case string(ModeGeneration):
		return ModeGeneration, nil
	default:
		return "", fmt.Errorf("scorer: unknown mode %q (want likelihood or generation)", s)
	}
}

// Outcome records the verdict for one example. The anti-stereotypical
// sentence is the designated correct answer, so Correct is always the
// negation of ChoseStereotypical. StereoScore and AntiScore carry the raw
// likelihoods in likelihood mode and stay zero in generation mode.
type Outcome struct {
	ExampleID          string
	Category           dataset.Category
	ChoseStereotypical bool
	Correct            bool
	StereoScore        float64
	AntiScore          float64
}

// Scorer judges one example at a time. ScoreExample returns an error when the
// backend could not produce a usable verdict; the example is then skipped.
type Scorer interface {
	Mode() Mode
	Model() string
	ScoreExample(ctx context.Context, ex dataset.Example) (*Outcome, error)
}

// New builds the scorer for mode backed by p. Likelihood mode requires a
// provider that reports sentence likelihoods.
func New(mode Mode, p llm.Provider) (Scorer, error) {
	switch mode {
	case ModeLikelihood:
		return NewLikelihood(p)
	case ModeGeneration:
		return NewGeneration(p)
	default:
		return nil, fmt.Errorf("scorer: unknown mode %q", mode)
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
