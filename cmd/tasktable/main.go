package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"taskboard/internal/table"
)

var (
	flagRemote  string
	flagSort    string
	flagFilters []string
	flagPage    int
	flagSize    int
	flagNoColor bool
	flagUTC     bool
	flagNow     string
	flagTimeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tasktable [file]",
		Short: "Render tasks with priority, waiting and turnaround time",
		Long: `Tasktable reads tasks from a YAML or JSON file (or stdin when the file is "-"),
computes scheduling metrics locally or on a taskboard gRPC server, and prints
them as a sortable, filterable table.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			opts, err := buildOptions()
			if err != nil {
				return err
			}

			tasks, err := loadTasks(path, cmd.InOrStdin())
			if err != nil {
				return err
			}

			return run(cmd.Context(), cmd.OutOrStdout(), tasks, opts)
		},
	}

	rootCmd.Flags().StringVar(&flagRemote, "remote", "", "taskboard gRPC address; metrics are computed locally when empty")
	rootCmd.Flags().StringVar(&flagSort, "sort", "", "Sort columns, e.g. priority:desc,name")
	rootCmd.Flags().StringArrayVar(&flagFilters, "filter", nil, "Column filter column=value (repeatable)")
	rootCmd.Flags().IntVar(&flagPage, "page", 1, "Page number")
	rootCmd.Flags().IntVar(&flagSize, "size", table.DefaultPageSize, "Rows per page")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.Flags().BoolVar(&flagUTC, "utc", false, "Show due dates in UTC")
	rootCmd.Flags().StringVar(&flagNow, "now", "", "Compute metrics as of this RFC 3339 time (local mode only, not with --remote)")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 5*time.Second, "Remote call timeout")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

func buildOptions() (options, error) {
	opts := options{
		Remote:  flagRemote,
		Sort:    flagSort,
		Filters: flagFilters,
		Page:    flagPage,
		Size:    flagSize,
		NoColor: flagNoColor,
		Timeout: flagTimeout,
		Loc:     time.Local,
	}
	if flagUTC {
		opts.Loc = time.UTC
	}

	if flagNow != "" {
		now, err := time.Parse(time.RFC3339, flagNow)
		if err != nil {
			return opts, fmt.Errorf("invalid --now: %w", err)
		}
		opts.Now = now
	}

	return opts, nil
}
