package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/bias-bench/internal/task"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List benchmark tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd)
		},
	}
}

func runList(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Paths resolve through the dataset package's env/default fallbacks, so
	// the listing works without a config file.
	loader := &task.Loader{}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tSUBSET\tCATEGORY\tEXAMPLES\tDESCRIPTION")
	for _, tk := range task.All() {
		count := "-"
		if slice, err := loader.Load(ctx, tk); err == nil {
			count = strconv.Itoa(len(slice.Examples))
		}
		category := string(tk.Category)
		if category == "" {
			category = "all"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", tk.Name, tk.Subset, category, count, tk.Description)
	}
	return tw.Flush()
}
