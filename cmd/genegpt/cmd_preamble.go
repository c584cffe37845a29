package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/genegpt-go/genegpt/internal/prompt"
	"github.com/spf13/cobra"
)

var (
	preambleMask   string
	preambleOutput string
)

func newPreambleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preamble",
		Short: "Print the preamble a mask produces",
		Long: `Compose and print the preamble placed before every question.

Worked examples embed live NCBI responses, so enabled examples are fetched
exactly as they would be at the start of a run.`,
		Args: cobra.NoArgs,
		RunE: preambleCommandE,
	}

	cmd.Flags().StringVar(&preambleMask, "mask", "", "6-digit binary string selecting preamble blocks")
	cmd.Flags().StringVarP(&preambleOutput, "output", "o", "", "Write the preamble to this file instead of stdout")
	_ = cmd.MarkFlagRequired("mask") //nolint:errcheck

	return cmd
}

func preambleCommandE(cmd *cobra.Command, _ []string) error {
	mask, err := models.ParseMask(preambleMask)
	if err != nil {
		return err
	}

	pc, err := loadProjectConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	composer := prompt.NewComposer(newNCBIClient(pc.Delays.Fetch),
		prompt.WithSleeper(waitFunc),
		prompt.WithBlastWait(pc.Delays.BlastResult),
	)
	preamble, err := composer.Compose(ctx, mask)
	if err != nil {
		return fmt.Errorf("composing preamble: %w", err)
	}

	if preambleOutput != "" {
		if err := os.WriteFile(preambleOutput, []byte(preamble), 0o644); err != nil {
			return fmt.Errorf("writing preamble: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Preamble written to: %s\n", preambleOutput) //nolint:errcheck
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), preamble) //nolint:errcheck
	return nil
}
