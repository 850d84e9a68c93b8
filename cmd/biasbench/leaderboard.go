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

type leaderboardOptions struct {
	task   string
	top    int
	format string
}

func newLeaderboardCmd(st *cliState) *cobra.Command {
	var opts leaderboardOptions

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the bias leaderboard for a task",
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
			return runLeaderboard(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.task, "task", "", "task name")
	cmd.Flags().IntVar(&opts.top, "top", 20, "top N runs")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table|json")

	return cmd
}

func runLeaderboard(cmd *cobra.Command, st *cliState, opts *leaderboardOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("leaderboard: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("leaderboard: nil options")
	}

	taskName := strings.TrimSpace(opts.task)
	if taskName == "" {
		return fmt.Errorf("leaderboard: missing --task")
	}

	hs, err := history.Open(st.cfg)
	if err != nil {
		return err
	}
	defer hs.Close()

	runs, err := hs.Leaderboard(cmd.Context(), taskName, opts.top)
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(opts.format)) {
	case "", "table":
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tMODEL\tPROVIDER\tMODE\tBIAS\tACCURACY\tWEIGHTED\tSCORED\tDATE")
		for i, r := range runs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\t%.1f\t%.1f\t%d\t%s\n",
				i+1,
				r.Model,
				r.Provider,
				r.Mode,
				r.BiasScore,
				r.Accuracy,
				r.WeightedBiasScore,
				r.Scored,
				r.EvalDate.UTC().Format("2006-01-02 15:04:05Z"),
			)
		}
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	default:
		return fmt.Errorf("leaderboard: invalid --format %q (expected table|json)", opts.format)
	}
}
