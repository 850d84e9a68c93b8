// Package runner drives one benchmark task end to end: load the examples,
// score each one under bounded concurrency, aggregate the outcomes.
package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stellarlinkco/bias-bench/internal/dataset"
	"github.com/stellarlinkco/bias-bench/internal/metrics"
	"github.com/stellarlinkco/bias-bench/internal/scorer"
	"github.com/stellarlinkco/bias-bench/internal/task"
)

// TaskSource yields the examples of one named task. task.Bound implements it.
type TaskSource interface {
	Name() string
	Load(ctx context.Context) (*task.Slice, error)
}

// Runner scores every example of a task. Zero values mean: sequential
// scoring, no per-example timeout, all examples.
type Runner struct {
	Scorer      scorer.Scorer
	Concurrency int
	Timeout     time.Duration
	SampleSize  int
}

// ExampleResult is the per-example record. Exactly one of Outcome or Skipped
// is set; a skipped example carries the reason.
type ExampleResult struct {
	ExampleID string
	Category  dataset.Category
	Outcome   *scorer.Outcome
	Skipped   bool
	Reason    string
	Latency   time.Duration
}

// TaskResult is the full report for one task run. Examples keeps the task's
// load order regardless of scoring completion order.
type TaskResult struct {
	Task      task.Task
	Model     string
	Mode      scorer.Mode
	Sampled   bool
	Summary   metrics.Summary
	Examples  []ExampleResult
	TotalTime time.Duration
}

// RunTask loads src and scores every example. Each example ends as exactly
// one outcome or one counted skip; on cancellation the remaining examples
// become cancellation skips and the partial result is still returned.
func (r *Runner) RunTask(ctx context.Context, src TaskSource) (*TaskResult, error) {
	if r == nil {
		return nil, errors.New("runner: nil runner")
	}
	if ctx == nil {
		return nil, errors.New("runner: nil context")
	}
	if r.Scorer == nil {
		return nil, errors.New("runner: nil scorer")
	}
	if src == nil {
		return nil, errors.New("runner: nil task source")
	}

	start := time.Now()

	slice, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if slice == nil || len(slice.Examples) == 0 {
		return nil, errors.New("runner: task " + src.Name() + " has no examples")
	}

	examples := takeFirstN(slice.Examples, r.SampleSize)

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	results := make([]ExampleResult, len(examples))

	var wg sync.WaitGroup
exampleLoop:
	for i := range examples {
		select {
		case <-ctx.Done():
			for j := i; j < len(examples); j++ {
				results[j] = skipResult(examples[j], ctx.Err())
			}
			break exampleLoop
		default:
		}

		ex := examples[i]
		idx := i

		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[idx] = skipResult(ex, ctx.Err())
				return
			}
			defer func() { <-sem }()

			results[idx] = r.scoreOne(ctx, ex)
		}()
	}
	wg.Wait()

	outcomes := make([]scorer.Outcome, 0, len(results))
	skipped := 0
	for i := range results {
		if results[i].Skipped {
			skipped++
			continue
		}
		outcomes = append(outcomes, *results[i].Outcome)
	}

	return &TaskResult{
		Task:      slice.Task,
		Model:     r.Scorer.Model(),
		Mode:      r.Scorer.Mode(),
		Sampled:   slice.Sampled,
		Summary:   metrics.Aggregate(outcomes, skipped),
		Examples:  results,
		TotalTime: time.Since(start),
	}, nil
}

func (r *Runner) scoreOne(ctx context.Context, ex dataset.Example) ExampleResult {
	exCtx := ctx
	var cancel context.CancelFunc
	if r.Timeout > 0 {
		exCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := r.Scorer.ScoreExample(exCtx, ex)

	res := ExampleResult{
		ExampleID: ex.ID,
		Category:  ex.Category,
		Latency:   time.Since(start),
	}
	if err != nil {
		res.Skipped = true
		res.Reason = err.Error()
		return res
	}
	if out == nil {
		res.Skipped = true
		res.Reason = "runner: scorer returned no outcome"
		return res
	}
	res.Outcome = out
	return res
}

func skipResult(ex dataset.Example, err error) ExampleResult {
	res := ExampleResult{
		ExampleID: ex.ID,
		Category:  ex.Category,
		Skipped:   true,
	}
	if err != nil {
		res.Reason = err.Error()
	}
	return res
}

func takeFirstN(in []dataset.Example, n int) []dataset.Example {
	if n <= 0 || n >= len(in) {
		return in
	}
	out := make([]dataset.Example, 0, n)
	return append(out, in[:n]...)
}
