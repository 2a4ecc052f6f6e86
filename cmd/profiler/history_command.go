package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/profiler.report/internal/db"
	"github.com/banshee-data/profiler.report/internal/qatrack"
	"github.com/banshee-data/profiler.report/internal/timeutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var dbPath string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1, got %d", limit)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			history, err := ctx.requireHistory(dbPath)
			if err != nil {
				return err
			}
			defer history.Close()

			runs, err := history.ListRuns(limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if jsonOutput {
				if runs == nil {
					runs = []db.Run{}
				}
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					string(r.Kind),
					r.Modality,
					timeutil.FormatIn(r.CreatedAt, cfg.GetTimezone()),
					r.InputPath,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Kind", "Modality", "Recorded", "Input"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "History database (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx, &dbPath, &jsonOutput))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext, dbPath *string, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the stored results of one run",
		Args:  requireInput("run ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			history, err := ctx.requireHistory(*dbPath)
			if err != nil {
				return err
			}
			defer history.Close()

			run, err := history.GetRun(args[0])
			if err != nil {
				return err
			}
			metrics, err := history.RunMetrics(run.ID)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(cmd, struct {
					*db.Run
					Metrics qatrack.Results `json:"metrics"`
				}{run, metrics})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s (%s, %s)\n", run.ID, run.Kind, run.Modality)
			fmt.Fprintf(out, "Input:     %s\n", run.InputPath)
			fmt.Fprintf(out, "Reference: %s\n", run.ReferencePath)
			fmt.Fprintf(out, "Recorded:  %s\n", timeutil.FormatIn(run.CreatedAt, cfg.GetTimezone()))
			fmt.Fprintln(out, renderResults(metrics))

			if run.Kind == db.RunArc {
				rep, err := history.ArcReport(run.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderFrames(rep))
			}
			return nil
		},
	}
}
