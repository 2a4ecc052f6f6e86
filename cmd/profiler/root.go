package main

import (
	"github.com/spf13/cobra"

	"github.com/banshee-data/profiler.report/internal/monitoring"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var verbose bool

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "profiler",
		Short:         "Beam profiler QA analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			monitoring.SetDebug(verbose)
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (default "+defaultConfigHint+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Trace every analysed frame")

	rootCmd.AddCommand(newStaticCommand(ctx))
	rootCmd.AddCommand(newArcCommand(ctx))
	rootCmd.AddCommand(newFramesCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
