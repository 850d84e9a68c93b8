package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/stellarlinkco/bias-bench/internal/dataset"
)

// Slice is a task's resolved examples.
type Slice struct {
	Task     Task
	Examples []dataset.Example
	Sampled  bool
}

// Loader resolves tasks to examples. Paths are optional; empty paths fall
// back to the dataset package's environment and default resolution. Tables
// are cached per subset so sibling category tasks share one load. Loader is
// not safe for concurrent use.
type Loader struct {
	CrowsPairsPath string
	StereoSetPath  string

	tables map[dataset.Subset]*dataset.Table
}

// Load reads the task's subset and filters it to the task's category.
func (l *Loader) Load(ctx context.Context, tk Task) (*Slice, error) {
	if l == nil {
		return nil, errors.New("task: nil loader")
	}
	if ctx == nil {
		return nil, errors.New("task: nil context")
	}
	if tk.Name == "" || tk.Subset == "" {
		return nil, fmt.Errorf("task: incomplete task %+v", tk)
	}

	tbl, err := l.table(ctx, tk.Subset)
	if err != nil {
		return nil, err
	}

	examples := tbl.Filter(tk.Category)
	if len(examples) == 0 {
		return nil, fmt.Errorf("task: %s: no examples for category %q", tk.Name, tk.Category)
	}
	return &Slice{Task: tk, Examples: examples, Sampled: tbl.Sampled}, nil
}

func (l *Loader) table(ctx context.Context, subset dataset.Subset) (*dataset.Table, error) {
	if tbl, ok := l.tables[subset]; ok {
		return tbl, nil
	}

	var path string
	switch subset {
	case dataset.SubsetCrowsPairs:
		path = l.CrowsPairsPath
	case dataset.SubsetStereoSet:
		path = l.StereoSetPath
	}

	tbl, err := dataset.Load(ctx, subset, path)
	if err != nil {
		return nil, err
	}
	if l.tables == nil {
		l.tables = make(map[dataset.Subset]*dataset.Table, 2)
	}
	l.tables[subset] = tbl
	return tbl, nil
}

// Bind pairs a task with this loader so callers can pull examples later
// without carrying both around.
func (l *Loader) Bind(tk Task) *Bound {
	return &Bound{task: tk, loader: l}
}

// Bound is a task tied to a loader.
type Bound struct {
	task   Task
	loader *Loader
}

// Name returns the task name.
func (b *Bound) Name() string {
	if b == nil {
		return ""
	}
	return b.task.Name
}

// Task returns the underlying task.
func (b *Bound) Task() Task {
	if b == nil {
		return Task{}
	}
	return b.task
}

// Load resolves the task's examples through the bound loader.
func (b *Bound) Load(ctx context.Context) (*Slice, error) {
	if b == nil || b.loader == nil {
		return nil, errors.New("task: nil binding")
	}
	return b.loader.Load(ctx, b.task)
}
