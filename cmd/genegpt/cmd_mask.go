package main

import (
	"fmt"
	"strings"

	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func newMaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mask [mask]",
		Short: "Explain the preamble mask",
		Long: `Explain what each position of a preamble mask controls.

Without an argument the legend is printed. With a mask such as 110011 each
block is listed as included or omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: maskCommandE,
	}
	return cmd
}

//nolint:errcheck // display-only writes; errors are not actionable
func maskCommandE(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	var mask models.Mask
	explain := len(args) == 1
	if explain {
		m, err := models.ParseMask(args[0])
		if err != nil {
			return err
		}
		mask = m
	}

	labelWidth := 0
	for _, label := range models.MaskLegend {
		labelWidth = max(labelWidth, runewidth.StringWidth(label))
	}

	if explain {
		fmt.Fprintf(w, "Mask %s\n\n", mask)
	}
	fmt.Fprintf(w, "%-4s %s", "Pos", padRight("Block", labelWidth))
	if explain {
		fmt.Fprint(w, "  State")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("─", labelWidth+14))

	for i, label := range models.MaskLegend {
		fmt.Fprintf(w, "%-4d %s", i, padRight(label, labelWidth))
		if explain {
			state := "omitted"
			if mask[i] {
				state = "included"
			}
			fmt.Fprintf(w, "  %s", state)
		}
		fmt.Fprintln(w)
	}
	return nil
}
