package main

import (
	"fmt"

	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/genegpt-go/genegpt/internal/results"
	"github.com/spf13/cobra"
)

var summarizeSkips bool

func newSummarizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <output-dir>",
		Short: "Count outcomes in a run's output directory",
		Long: `Count the outcomes recorded in a run's output directory.

Each category result file is read and its outcomes are split into answers,
api-error and iteration-limit-exceeded. Run metadata and the skip log are
shown when present. The directory may belong to an unfinished run.`,
		Args: cobra.ExactArgs(1),
		RunE: summarizeCommandE,
	}

	cmd.Flags().BoolVar(&summarizeSkips, "skips", false, "List every skipped URL entry")

	return cmd
}

//nolint:errcheck // display-only writes; errors are not actionable
func summarizeCommandE(cmd *cobra.Command, args []string) error {
	snap, err := results.NewLayout(args[0]).Load()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Output: %s\n", snap.Dir)
	if meta := snap.Metadata; meta != nil {
		fmt.Fprintf(w, "Run: %s  started %s\n", meta.RunID, meta.StartedAt)
		fmt.Fprintf(w, "Model: %s (%s)  mask=%s\n", meta.Model, meta.Executor, meta.Mask)
		fmt.Fprintf(w, "Task file: %s\n", meta.InputFile)
	}
	fmt.Fprintln(w)

	if len(snap.Tasks) == 0 {
		fmt.Fprintln(w, "No result files found.")
		return nil
	}

	rows := make([]models.TaskSummary, 0, len(snap.Tasks))
	for _, tr := range snap.Tasks {
		rows = append(rows, models.TaskSummary{Name: tr.Name, Counts: models.CountRecords(tr.Records)})
	}
	printCountsTable(w, rows)
	fmt.Fprintln(w)

	numberPrinter.Fprintf(w, "Skipped URLs: %d\n", len(snap.Skipped))
	if summarizeSkips && len(snap.Skipped) > 0 {
		reasons := map[string]int{}
		var order []string
		for _, e := range snap.Skipped {
			if reasons[e.Reason] == 0 {
				order = append(order, e.Reason)
			}
			reasons[e.Reason]++
		}
		for _, r := range order {
			numberPrinter.Fprintf(w, "  %-32s %d\n", r, reasons[r])
		}
		fmt.Fprintln(w)
		for _, e := range snap.Skipped {
			url := "-"
			if e.URL != nil {
				url = *e.URL
			}
			fmt.Fprintf(w, "  • %s\n    %s: %s\n", truncate(e.Question, 100), e.Reason, truncate(url, 100))
		}
	}
	return nil
}
