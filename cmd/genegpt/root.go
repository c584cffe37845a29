package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genegpt",
		Short: "GeneGPT - answer genomics questions with a model and NCBI Web APIs",
		Long: `GeneGPT drives a completion model through a tool-use loop.

The model is shown how to call NCBI E-utilities and BLAST, emits bracketed
URLs, and sees each response appended to its prompt until it answers or the
iteration cap is reached. Results, skipped URLs and raw model exchanges are
written as flat JSON files.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newPreambleCommand())
	cmd.AddCommand(newMaskCommand())
	cmd.AddCommand(newSummarizeCommand())
	cmd.AddCommand(newSessionCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
