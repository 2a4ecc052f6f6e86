package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/banshee-data/profiler.report/internal/export"
	"github.com/banshee-data/profiler.report/internal/plotting"
	"github.com/banshee-data/profiler.report/internal/profiler"
	"github.com/banshee-data/profiler.report/internal/qatrack"
)

func newArcCommand(ctx *commandContext) *cobra.Command {
	var refs referenceFlags
	var dbPath string
	var plotDir string
	var chartPath string
	var xlsxPath string
	var startFrame int
	var threshold float64
	var skip int
	var showFrames bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "arc <movie>",
		Short: "Analyse every frame of an arc movie against a reference",
		Args:  requireInput("movie export"),
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

			opts := cfg.ArcOptions()
			if cmd.Flags().Changed("start-frame") {
				opts.StartFrame = startFrame
			}
			if cmd.Flags().Changed("threshold") {
				opts.Threshold = threshold
			}
			if cmd.Flags().Changed("skip") {
				opts.SkipFrames = skip
			}

			rep, err := profiler.AnalyzeArc(ctx.fs, input, refPath, m, opts)
			if err != nil {
				return describeInputError(err)
			}

			if err := writeArcArtefacts(ctx, input, refPath, rep, chartPath, xlsxPath, firstNonEmpty(plotDir, cfg.GetPlotDir())); err != nil {
				return err
			}

			history, err := ctx.openHistory(dbPath)
			if err != nil {
				return err
			}
			if history != nil {
				defer history.Close()
				id, err := history.RecordArcRun(input, refPath, rep)
				if err != nil {
					return fmt.Errorf("record run: %w", err)
				}
				if !jsonOutput {
					fmt.Fprintf(cmd.OutOrStdout(), "Recorded run %s\n", id)
				}
			}

			results := qatrack.ArcMetrics(&rep.Summary)
			if jsonOutput {
				return results.WriteJSON(cmd.OutOrStdout())
			}

			out := cmd.OutOrStdout()
			s := rep.Summary
			fmt.Fprintf(out, "%s vs %s (%s)\n", input, refPath, m)
			fmt.Fprintf(out, "%d frames, %d accepted, %d rejection events (start %d, threshold %.1f%%, skip %d)\n",
				s.NumFrames, s.AcceptedFrames, s.SkippedFrames, opts.StartFrame, opts.Threshold, opts.SkipFrames)
			fmt.Fprintln(out, renderResults(results))
			if showFrames {
				fmt.Fprintln(out, renderFrames(rep))
			}
			return nil
		},
	}

	refs.register(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "", "Record the run in this history database")
	cmd.Flags().StringVar(&plotDir, "plot-dir", "", "Write a per-frame error plot into this directory")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write an interactive HTML chart to this path")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write a workbook with summary and per-frame sheets to this path")
	cmd.Flags().IntVar(&startFrame, "start-frame", profiler.DefaultStartFrame, "First frame to analyse")
	cmd.Flags().Float64Var(&threshold, "threshold", profiler.DefaultThreshold, "Average error (%) above which a frame is rejected")
	cmd.Flags().IntVar(&skip, "skip", profiler.DefaultSkipFrames, "Frames ignored after a rejected frame")
	cmd.Flags().BoolVar(&showFrames, "frames", false, "Also print the per-frame table")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func writeArcArtefacts(ctx *commandContext, input, refPath string, rep *profiler.ArcReport, chartPath, xlsxPath, plotDir string) error {
	if chartPath != "" {
		f, err := ctx.fs.Create(chartPath)
		if err != nil {
			return fmt.Errorf("create chart: %w", err)
		}
		if err := plotting.RenderArcChart(f, input, rep); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close chart: %w", err)
		}
	}
	if xlsxPath != "" {
		src := export.ArcSource{MoviePath: input, ReferencePath: refPath}
		if err := export.WriteArcWorkbook(ctx.fs, xlsxPath, src, rep); err != nil {
			return err
		}
	}
	if plotDir != "" && len(rep.Frames) > 0 {
		if err := ctx.fs.MkdirAll(plotDir, 0755); err != nil {
			return fmt.Errorf("create plot dir: %w", err)
		}
		path := filepath.Join(plotDir, baseName(input)+"_arc.png")
		if err := plotting.SaveArcPlot(ctx.fs, path, baseName(input), rep); err != nil {
			return err
		}
	}
	return nil
}

func renderFrames(rep *profiler.ArcReport) string {
	rows := make([][]string, 0, len(rep.Frames))
	for _, f := range rep.Frames {
		angle := "-"
		if a, err := profiler.FrameAngle(rep.Modality, f.Frame, rep.Summary.NumFrames); err == nil {
			angle = strconv.FormatFloat(a, 'f', 1, 64)
		}
		row := []string{strconv.Itoa(f.Frame), angle, string(f.Status), "", ""}
		if f.Status != profiler.FrameSkipped {
			row[3] = formatValue(f.Result.AverageAB)
			row[4] = formatValue(f.Result.AverageGT)
		}
		rows = append(rows, row)
	}
	return renderTable(
		[]string{"Frame", "Angle", "Status", "Avg AB %", "Avg GT %"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignRight},
	)
}
