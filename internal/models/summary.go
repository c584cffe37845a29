package models

import "time"

// OutcomeCounts tallies question outcomes by kind.
type OutcomeCounts struct {
	Answers         int `json:"answers"`
	APIErrors       int `json:"api_errors"`
	IterationLimits int `json:"iteration_limits"`
}

// Add counts one outcome.
func (c *OutcomeCounts) Add(outcome string) {
	switch KindOf(outcome) {
	case KindAPIError:
		c.APIErrors++
	case KindIterationLimit:
		c.IterationLimits++
	default:
		c.Answers++
	}
}

// Merge adds other into c.
func (c *OutcomeCounts) Merge(other OutcomeCounts) {
	c.Answers += other.Answers
	c.APIErrors += other.APIErrors
	c.IterationLimits += other.IterationLimits
}

// Total is the number of counted outcomes.
func (c OutcomeCounts) Total() int {
	return c.Answers + c.APIErrors + c.IterationLimits
}

// CountRecords tallies the outcomes of recs.
func CountRecords(recs []ResultRecord) OutcomeCounts {
	var c OutcomeCounts
	for _, r := range recs {
		c.Add(r.Outcome)
	}
	return c
}

// TaskSummary describes one task category after a run.
type TaskSummary struct {
	Name string `json:"name"`
	// Resumed is set when the category was already complete and not re-run.
	Resumed bool          `json:"resumed"`
	Counts  OutcomeCounts `json:"counts"`
}

// RunSummary describes a whole run.
type RunSummary struct {
	OutputDir    string        `json:"output_dir"`
	Tasks        []TaskSummary `json:"tasks"`
	SkippedURLs  int           `json:"skipped_urls"`
	Duration     time.Duration `json:"duration"`
	QuestionsRun int           `json:"questions_run"`
}

// Totals sums the counts of all tasks.
func (s *RunSummary) Totals() OutcomeCounts {
	var c OutcomeCounts
	for _, t := range s.Tasks {
		c.Merge(t.Counts)
	}
	return c
}
