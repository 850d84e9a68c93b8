package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/bias-bench/internal/config"
	"github.com/stellarlinkco/bias-bench/internal/history"
)

type historyOptions struct {
	model  string
	task   string
	format string
}

func newHistoryCmd(st *cliState) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a model's evaluation history for a task",
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
			return runModelHistory(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.model, "model", "", "model name")
	cmd.Flags().StringVar(&opts.task, "task", "", "task name")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table|json")

	return cmd
}

func runModelHistory(cmd *cobra.Command, st *cliState, opts *historyOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("history: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("history: nil options")
	}

	model := strings.TrimSpace(opts.model)
	if model == "" {
		return fmt.Errorf("history: missing --model")
	}
	taskName := strings.TrimSpace(opts.task)
	if taskName == "" {
		return fmt.Errorf("history: missing --task")
	}

	hs, err := history.Open(st.cfg)
	if err != nil {
		return err
	}
	defer hs.Close()

	runs, err := hs.ModelHistory(cmd.Context(), model, taskName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No runs found.")
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(opts.format)) {
	case "", "table":
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tMODE\tBIAS\tACCURACY\tWEIGHTED\tTOTAL\tSCORED\tSKIPPED\tLAT(ms)")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%.1f\t%d\t%d\t%d\t%d\n",
				r.EvalDate.UTC().Format("2006-01-02 15:04:05Z"),
				r.Mode,
				r.BiasScore,
				r.Accuracy,
				r.WeightedBiasScore,
				r.Total,
				r.Scored,
				r.Skipped,
				r.LatencyMs,
			)
		}
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	default:
		return fmt.Errorf("history: invalid --format %q (expected table|json)", opts.format)
	}
}
