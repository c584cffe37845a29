package models

import "time"

// AuditRecord captures one model call: the exact request payload, the raw
// output, the call time, and whatever usage accounting the API reported.
type AuditRecord struct {
	Input   any            `json:"input"`
	Output  string         `json:"output"`
	TimeUTC string         `json:"time_utc"`
	Usage   map[string]any `json:"usage"`
}

// LoopLimits are the bounds applied by the interaction loop.
type LoopLimits struct {
	MaxIterations    int `json:"max_iterations" yaml:"max_iterations,omitempty"`
	PromptCutoff     int `json:"prompt_cutoff" yaml:"prompt_cutoff,omitempty"`
	ResultCutoff     int `json:"result_cutoff" yaml:"result_cutoff,omitempty"`
	MaxTokens        int `json:"max_tokens" yaml:"max_tokens,omitempty"`
	CompletedRecords int `json:"completed_records" yaml:"completed_records,omitempty"`
}

// RunMetadata is written once per output directory as metadata.json.
type RunMetadata struct {
	RunID           string            `json:"run_id"`
	InputFile       string            `json:"input_file"`
	Model           string            `json:"model"`
	Executor        string            `json:"executor"`
	Mask            string            `json:"mask"`
	StartedAt       string            `json:"started_at"`
	MaskLegend      map[string]string `json:"mask_legend"`
	MaskTranslation map[string]bool   `json:"mask_translation"`
	Limits          LoopLimits        `json:"limits"`
}

// UTCTimestamp formats t the way audit and metadata files record time.
func UTCTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000")
}
