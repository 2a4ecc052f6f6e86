package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/profiler.report/internal/fsutil"
	"github.com/banshee-data/profiler.report/internal/plotting"
	"github.com/banshee-data/profiler.report/internal/profiler"
	"github.com/banshee-data/profiler.report/internal/qatrack"
)

func newStaticCommand(ctx *commandContext) *cobra.Command {
	var refs referenceFlags
	var dbPath string
	var plotDir string
	var angle int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "static <file>",
		Short: "Compare a single profile export with a reference",
		Args:  requireInput("profile export"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			refPath, m, err := refs.resolve(cfg)
			if err != nil {
				return err
			}
			input := args[0]

			ref, err := profiler.LoadReference(ctx.fs, refPath)
			if err != nil {
				return describeInputError(fmt.Errorf("reference: %w", err))
			}
			cand, err := profiler.LoadReference(ctx.fs, input)
			if err != nil {
				return describeInputError(fmt.Errorf("profile: %w", err))
			}
			res, err := profiler.CompareStatic(cand, ref, m)
			if err != nil {
				return fmt.Errorf("compare %s: %w", input, err)
			}

			results := qatrack.StaticMetrics(res)
			if cmd.Flags().Changed("angle") {
				results.Merge(qatrack.StaticAtAngle(res, angle))
			}

			if dir := firstNonEmpty(plotDir, cfg.GetPlotDir()); dir != "" {
				if _, err := plotting.SaveStaticPlots(ctx.fs, dir, baseName(input), ref, cand); err != nil {
					return err
				}
			}

			history, err := ctx.openHistory(dbPath)
			if err != nil {
				return err
			}
			if history != nil {
				defer history.Close()
				id, err := history.RecordStaticRun(input, refPath, m, res)
				if err != nil {
					return fmt.Errorf("record run: %w", err)
				}
				if !jsonOutput {
					fmt.Fprintf(cmd.OutOrStdout(), "Recorded run %s\n", id)
				}
			}

			if jsonOutput {
				return results.WriteJSON(cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s vs %s (%s)\n", input, refPath, m)
			fmt.Fprintln(cmd.OutOrStdout(), renderResults(results))
			return nil
		},
	}

	refs.register(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "", "Record the run in this history database")
	cmd.Flags().StringVar(&plotDir, "plot-dir", "", "Write AB and GT profile plots into this directory")
	cmd.Flags().IntVar(&angle, "angle", 0, "Gantry angle of the snapshot; adds per-angle result keys")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

// renderResults tabulates result keys in sorted order.
func renderResults(r qatrack.Results) string {
	rows := make([][]string, 0, len(r))
	for _, k := range r.Keys() {
		rows = append(rows, []string{k, formatValue(r[k])})
	}
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

// baseName derives artefact names from an input export path.
func baseName(path string) string {
	return fsutil.SanitizeFilename(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
