package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/genegpt-go/genegpt/internal/orchestration"
	"github.com/genegpt-go/genegpt/internal/results"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultTerminalWidth = 100
	taskColumnWidth      = 30
)

var numberPrinter = message.NewPrinter(language.English)

// formatDuration formats a duration in a consistent, human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Millisecond).String()
}

// terminalWidth returns the width of w when it is a terminal, else a fixed default.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}

//nolint:errcheck // display-only writes; errors are not actionable
func newVerboseProgressListener(w io.Writer, width int) orchestration.ProgressListener {
	// Leave room for the "  [RESPONSE] " style prefixes.
	textWidth := max(width-14, 20)

	return func(event orchestration.ProgressEvent) {
		switch event.EventType {
		case orchestration.EventRunStart:
			fmt.Fprintf(w, "Starting run with %d task(s), %d question(s)...\n\n", event.TotalTasks, event.TotalQuestions)
		case orchestration.EventTaskStart:
			fmt.Fprintf(w, "[%d/%d] Task: %s (%d questions)\n", event.TaskNum, event.TotalTasks,
				results.PrettyTaskName(event.TaskName), event.TotalQuestions)
		case orchestration.EventTaskSkipped:
			fmt.Fprintf(w, "[%d/%d] Task: %s [complete, skipped]\n\n", event.TaskNum, event.TotalTasks,
				results.PrettyTaskName(event.TaskName))
		case orchestration.EventQuestionStart:
			q, _ := event.Details["question"].(string) //nolint:errcheck
			fmt.Fprintf(w, "  Q%d/%d %s\n", event.Question, event.TotalQuestions, truncate(q, textWidth))
		case orchestration.EventModelResponse:
			if output, ok := event.Details["output"].(string); ok {
				fmt.Fprintf(w, "  [RESPONSE %d] %s\n", event.Iteration, truncate(output, textWidth))
			}
		case orchestration.EventFetch:
			url, _ := event.Details["url"].(string)       //nolint:errcheck
			action, _ := event.Details["action"].(string) //nolint:errcheck
			fmt.Fprintf(w, "  [FETCH %s] %s\n", action, truncate(url, textWidth))
		case orchestration.EventQuestionComplete:
			duration := time.Duration(event.DurationMs) * time.Millisecond
			expected, _ := event.Details["expected"].(string) //nolint:errcheck
			fmt.Fprintf(w, "  %s %s (expected %s, %s)\n\n", outcomeIcon(event.Outcome),
				truncate(event.Outcome, textWidth/2), truncate(expected, textWidth/4), formatDuration(duration))
		case orchestration.EventTaskComplete:
			duration := time.Duration(event.DurationMs) * time.Millisecond
			fmt.Fprintf(w, "  Task %s done in %s\n\n", results.PrettyTaskName(event.TaskName), formatDuration(duration))
		case orchestration.EventRunComplete:
			duration := time.Duration(event.DurationMs) * time.Millisecond
			fmt.Fprintf(w, "Run completed in %s\n\n", formatDuration(duration))
		}
	}
}

//nolint:errcheck // display-only writes; errors are not actionable
func newSimpleProgressListener(w io.Writer) orchestration.ProgressListener {
	return func(event orchestration.ProgressEvent) {
		switch event.EventType {
		case orchestration.EventTaskSkipped:
			fmt.Fprintf(w, "✓ [%d/%d] %s [complete]\n", event.TaskNum, event.TotalTasks, results.PrettyTaskName(event.TaskName))
		case orchestration.EventQuestionComplete:
			fmt.Fprintf(w, "%s [%d/%d] %s Q%d\n", outcomeIcon(event.Outcome), event.TaskNum, event.TotalTasks,
				results.PrettyTaskName(event.TaskName), event.Question)
		}
	}
}

// outcomeIcon marks answers with a check and the two failure markers with a cross.
func outcomeIcon(outcome string) string {
	if models.KindOf(outcome) == models.KindAnswer {
		return "✓"
	}
	return "✗"
}

// truncate shortens s to maxLen runes on one line, appending "…" if truncated.
func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	return truncateName(s, maxLen)
}

// truncateName shortens a name to maxLen runes, replacing the last rune with "…" if needed.
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if maxLen <= 0 || len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// printCountsTable writes one row of outcome counts per task plus a total row.
// Row names are printed as given.
//
//nolint:errcheck // display-only writes; errors are not actionable
func printCountsTable(w io.Writer, rows []models.TaskSummary) {
	fmt.Fprintf(w, "%s %8s %10s %10s %8s\n", padRight("Task", taskColumnWidth), "Answers", "API errors", "Iter. cap", "Total")
	fmt.Fprintln(w, "─"+strings.Repeat("─", taskColumnWidth+40))

	var total models.OutcomeCounts
	for _, row := range rows {
		name := truncateName(row.Name, taskColumnWidth)
		if row.Resumed {
			name = truncateName(name, taskColumnWidth-2) + " ↺"
		}
		c := row.Counts
		numberPrinter.Fprintf(w, "%s %8d %10d %10d %8d\n", padRight(name, taskColumnWidth),
			c.Answers, c.APIErrors, c.IterationLimits, c.Total())
		total.Merge(c)
	}

	fmt.Fprintln(w, "─"+strings.Repeat("─", taskColumnWidth+40))
	numberPrinter.Fprintf(w, "%s %8d %10d %10d %8d\n", padRight("Total", taskColumnWidth),
		total.Answers, total.APIErrors, total.IterationLimits, total.Total())
}

//nolint:errcheck // display-only writes; errors are not actionable
func printSummary(w io.Writer, summary *models.RunSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "="+strings.Repeat("=", 50))
	fmt.Fprintln(w, " RUN RESULTS")
	fmt.Fprintln(w, "="+strings.Repeat("=", 50))
	fmt.Fprintln(w)

	totals := summary.Totals()
	numberPrinter.Fprintf(w, "Questions run:   %d\n", summary.QuestionsRun)
	numberPrinter.Fprintf(w, "Answers:         %d\n", totals.Answers)
	numberPrinter.Fprintf(w, "API errors:      %d\n", totals.APIErrors)
	numberPrinter.Fprintf(w, "Iteration cap:   %d\n", totals.IterationLimits)
	numberPrinter.Fprintf(w, "Skipped URLs:    %d\n", summary.SkippedURLs)
	fmt.Fprintf(w, "Duration:        %s\n", formatDuration(summary.Duration))
	fmt.Fprintf(w, "Output:          %s\n", summary.OutputDir)
	fmt.Fprintln(w)

	if len(summary.Tasks) > 0 {
		rows := make([]models.TaskSummary, len(summary.Tasks))
		for i, ts := range summary.Tasks {
			rows[i] = ts
			rows[i].Name = results.PrettyTaskName(ts.Name)
		}
		printCountsTable(w, rows)
		fmt.Fprintln(w)
	}
}
