package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"elevatr.app/predictor/common/logger"
)

var rootCmd = &cobra.Command{
	Use:          "elevatr",
	Short:        "Student grade prediction toolkit",
	Long:         "elevatr runs the grade prediction pipeline offline and inspects its input contract.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			level = slog.LevelDebug
		}
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(logger.NewTraceHandler(h)))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log pipeline details to stderr")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
