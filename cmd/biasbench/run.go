package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/bias-bench/internal/config"
	"github.com/stellarlinkco/bias-bench/internal/history"
	"github.com/stellarlinkco/bias-bench/internal/llm"
	"github.com/stellarlinkco/bias-bench/internal/runner"
	"github.com/stellarlinkco/bias-bench/internal/scorer"
	"github.com/stellarlinkco/bias-bench/internal/task"
)

type runOptions struct {
	tasks      string
	mode       string
	provider   string
	model      string
	sampleSize int
	output     string
	noSave     bool
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run bias benchmark tasks and save results",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			st.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.tasks, "tasks", "", "task name, comma list, or \"all\"")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "scoring mode: likelihood|generation (overrides config)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "provider name (overrides config)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model name (overrides config)")
	cmd.Flags().IntVar(&opts.sampleSize, "sample-size", 0, "score only the first N examples (0 = all)")
	cmd.Flags().StringVar(&opts.output, "output", "", "output format: table|json|github (overrides config)")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "do not save results to history")

	return cmd
}

func runTasks(cmd *cobra.Command, st *cliState, opts *runOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("run: nil options")
	}

	tasks, err := resolveRunTasks(opts.tasks)
	if err != nil {
		return err
	}

	output, err := resolveOutputFormat(opts.output, st.cfg.Evaluation.OutputFormat)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	mode, err := resolveRunMode(opts.mode, st.cfg.Evaluation.Mode)
	if err != nil {
		return err
	}

	sampleSize := st.cfg.Evaluation.SampleSize
	if opts.sampleSize != 0 {
		sampleSize = opts.sampleSize
	}
	if sampleSize < 0 {
		return fmt.Errorf("run: --sample-size must be >= 0 (got %d)", sampleSize)
	}

	provider, err := resolveProvider(st.cfg, opts.provider, opts.model)
	if err != nil {
		return err
	}

	sc, err := newScorer(mode, provider)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	loader := &task.Loader{
		CrowsPairsPath: st.cfg.Datasets.CrowsPairsPath,
		StereoSetPath:  st.cfg.Datasets.StereoSetPath,
	}

	r := &runner.Runner{
		Scorer:      sc,
		Concurrency: st.cfg.Evaluation.Concurrency,
		Timeout:     st.cfg.Evaluation.Timeout,
		SampleSize:  sampleSize,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := make([]*runner.TaskResult, 0, len(tasks))
	for _, tk := range tasks {
		res, err := r.RunTask(ctx, loader.Bind(tk))
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		_, _ = fmt.Fprint(out, FormatTaskResult(res, output))
	}

	if opts.noSave {
		return nil
	}
	return saveResults(cmd.Context(), st.cfg, provider.Name(), results)
}

func resolveRunTasks(raw string) ([]task.Task, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New(`run: missing --tasks (a task name, a comma list, or "all")`)
	}
	if strings.EqualFold(raw, "all") {
		return task.All(), nil
	}

	seen := make(map[string]struct{})
	var out []task.Task
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		tk, err := task.Find(name)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[tk.Name]; ok {
			continue
		}
		seen[tk.Name] = struct{}{}
		out = append(out, tk)
	}
	if len(out) == 0 {
		return nil, errors.New(`run: missing --tasks (a task name, a comma list, or "all")`)
	}
	return out, nil
}

func resolveRunMode(flagValue, configValue string) (scorer.Mode, error) {
	v := strings.TrimSpace(flagValue)
	if v == "" {
		v = strings.TrimSpace(configValue)
	}
	mode, err := scorer.ParseMode(v)
	if err != nil {
		return "", fmt.Errorf("run: %w", err)
	}
	return mode, nil
}

func resolveProvider(cfg *config.Config, providerFlag string, modelFlag string) (llm.Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("run: missing config")
	}

	// Without overrides the registry decides, including the single-provider
	// fallback when no default is configured.
	if strings.TrimSpace(providerFlag) == "" && strings.TrimSpace(modelFlag) == "" {
		p, err := defaultProviderFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("run: %w", err)
		}
		return p, nil
	}

	providerName := strings.TrimSpace(providerFlag)
	if providerName == "" {
		providerName = strings.TrimSpace(cfg.LLM.DefaultProvider)
	}
	providerName = normalizeProvider(providerName)
	if providerName == "" {
		return nil, fmt.Errorf("run: missing provider")
	}

	pcfg, ok := cfg.LLM.Providers[providerName]
	if !ok {
		available := make([]string, 0, len(cfg.LLM.Providers))
		for k := range cfg.LLM.Providers {
			available = append(available, k)
		}
		sort.Strings(available)
		return nil, fmt.Errorf("run: provider %q not configured (available: %s)", providerName, strings.Join(available, ", "))
	}

	model := strings.TrimSpace(modelFlag)
	if model == "" {
		model = strings.TrimSpace(pcfg.Model)
	}

	switch providerName {
	case "claude":
		return llm.NewClaudeProvider(pcfg.APIKey, pcfg.BaseURL, model), nil
	case "openai":
		return llm.NewOpenAIProvider(pcfg.APIKey, pcfg.BaseURL, model), nil
	default:
		return nil, fmt.Errorf("run: unsupported provider %q", providerName)
	}
}

func normalizeProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "anthropic":
		return "claude"
	default:
		return name
	}
}

func saveResults(ctx context.Context, cfg *config.Config, providerName string, results []*runner.TaskResult) error {
	if ctx == nil {
		ctx = context.Background()
	}

	hs, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("run: open history: %w", err)
	}
	defer hs.Close()

	for _, res := range results {
		if res == nil || res.Summary.NoData {
			// A run that scored nothing measured nothing.
			continue
		}
		run := &history.Run{
			Model:             res.Model,
			Provider:          providerName,
			Task:              res.Task.Name,
			Mode:              string(res.Mode),
			BiasScore:         res.Summary.BiasScore,
			Accuracy:          res.Summary.Accuracy,
			WeightedBiasScore: res.Summary.WeightedBiasScore,
			Total:             res.Summary.Total,
			Scored:            res.Summary.Scored,
			Skipped:           res.Summary.Skipped,
			LatencyMs:         res.TotalTime.Milliseconds(),
			EvalDate:          time.Now().UTC(),
		}
		if err := hs.Save(ctx, run); err != nil {
			return fmt.Errorf("run: save %s: %w", res.Task.Name, err)
		}
	}
	return nil
}
