package models

import (
	"encoding/json"
	"fmt"
)

// Terminal outcome markers. Any other outcome string is the model's own text.
const (
	OutcomeAPIError       = "api-error"
	OutcomeIterationLimit = "iteration-limit-exceeded"
)

// OutcomeKind groups outcomes for summaries.
type OutcomeKind string

const (
	KindAnswer         OutcomeKind = "answer"
	KindAPIError       OutcomeKind = OutcomeAPIError
	KindIterationLimit OutcomeKind = OutcomeIterationLimit
)

// KindOf classifies an outcome string.
func KindOf(outcome string) OutcomeKind {
	switch outcome {
	case OutcomeAPIError:
		return KindAPIError
	case OutcomeIterationLimit:
		return KindIterationLimit
	default:
		return KindAnswer
	}
}

// Exchange is one prompt snapshot and the model output it produced.
type Exchange struct {
	Prompt string
	Output string
}

func (e Exchange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Prompt, e.Output})
}

func (e *Exchange) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("exchange: %w", err)
	}
	e.Prompt, e.Output = pair[0], pair[1]
	return nil
}

// ResultRecord is the result of one question. It is stored as the array
// [question, expected, outcome, transcript].
type ResultRecord struct {
	Question   string
	Expected   string
	Outcome    string
	Transcript []Exchange
}

func (r ResultRecord) MarshalJSON() ([]byte, error) {
	transcript := r.Transcript
	if transcript == nil {
		transcript = []Exchange{}
	}
	return json.Marshal([]any{r.Question, r.Expected, r.Outcome, transcript})
}

func (r *ResultRecord) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("result record: %w", err)
	}
	if len(parts) != 4 {
		return fmt.Errorf("result record: expected 4 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &r.Question); err != nil {
		return fmt.Errorf("result record question: %w", err)
	}
	if err := json.Unmarshal(parts[1], &r.Expected); err != nil {
		return fmt.Errorf("result record expected answer: %w", err)
	}
	if err := json.Unmarshal(parts[2], &r.Outcome); err != nil {
		return fmt.Errorf("result record outcome: %w", err)
	}
	if err := json.Unmarshal(parts[3], &r.Transcript); err != nil {
		return fmt.Errorf("result record transcript: %w", err)
	}
	return nil
}

// Skip reasons recorded when a question cannot proceed.
const (
	SkipReasonNoURL       = "no valid URL in model output"
	SkipReasonPlaceholder = "placeholder in URL"
	SkipReasonNotAllowed  = "URL not in allowed services"
	SkipReasonFetchFailed = "fetch failed"
)

// SkipEntry records a question abandoned because of a missing or unusable URL.
type SkipEntry struct {
	Question string  `json:"question"`
	URL      *string `json:"url"`
	Reason   string  `json:"reason"`
}

// SkipLog is an append-only list of skip entries for one run.
type SkipLog struct {
	entries []SkipEntry
}

// Append adds an entry. url may be empty when no URL was found.
func (l *SkipLog) Append(question, url, reason string) {
	e := SkipEntry{Question: question, Reason: reason}
	if url != "" {
		e.URL = &url
	}
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the logged entries.
func (l *SkipLog) Entries() []SkipEntry {
	return append([]SkipEntry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *SkipLog) Len() int {
	return len(l.entries)
}
