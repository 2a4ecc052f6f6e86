package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/banshee-data/profiler.report/internal/profiler"
)

func newFramesCommand(ctx *commandContext) *cobra.Command {
	var frame int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "frames <movie>",
		Short: "Count the frames of a movie export, or dump one of them",
		Args:  requireInput("movie export"),
		Annotations: map[string]string{
			"skipConfigLoad": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]

			if !cmd.Flags().Changed("frame") {
				n, err := profiler.GetNumFrames(ctx.fs, input)
				if err != nil {
					return describeInputError(err)
				}
				if jsonOutput {
					return writeJSON(cmd, map[string]int{"num_frames": n})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d frames\n", input, n)
				return nil
			}

			f, err := profiler.ExtractFrame(ctx.fs, input, frame)
			if err != nil {
				return describeInputError(err)
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]any{"frame": f.Index, "ab": f.AB, "gt": f.GT})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFrameDoses(f))
			return nil
		},
	}

	cmd.Flags().IntVar(&frame, "frame", 0, "Print the raw AB and GT doses of this frame (1-based)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func renderFrameDoses(f *profiler.Frame) string {
	n := max(len(f.AB), len(f.GT))
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := []string{strconv.Itoa(i + 1), "", ""}
		if i < len(f.AB) {
			row[1] = formatValue(f.AB[i])
		}
		if i < len(f.GT) {
			row[2] = formatValue(f.GT[i])
		}
		rows = append(rows, row)
	}
	return renderTable(
		[]string{"Detector", "AB", "GT"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight},
	)
}
