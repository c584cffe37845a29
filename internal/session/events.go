package session

import "time"

// EventType identifies the kind of session event.
type EventType string

const (
	EventRunStart         EventType = "run_start"
	EventRunComplete      EventType = "run_complete"
	EventTaskStart        EventType = "task_start"
	EventTaskSkipped      EventType = "task_skipped"
	EventTaskComplete     EventType = "task_complete"
	EventModelCall        EventType = "model_call"
	EventFetch            EventType = "fetch"
	EventURLSkipped       EventType = "url_skipped"
	EventQuestionComplete EventType = "question_complete"
	EventError            EventType = "error"
)

// Event is a single timestamped entry in a session log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// RunStartData returns event data for a run start.
func RunStartData(inputFile, model, executor, mask string, taskCount int) map[string]any {
	return map[string]any{
		"input_file": inputFile,
		"model":      model,
		"executor":   executor,
		"mask":       mask,
		"task_count": taskCount,
	}
}

// RunCompleteData returns event data for the end of a run.
func RunCompleteData(questions, answers, apiErrors, iterationLimits, skipped int, durationMs int64) map[string]any {
	return map[string]any{
		"questions":        questions,
		"answers":          answers,
		"api_errors":       apiErrors,
		"iteration_limits": iterationLimits,
		"skipped_urls":     skipped,
		"duration_ms":      durationMs,
	}
}

// TaskStartData returns event data for a task category start.
func TaskStartData(taskName string, taskNum, totalTasks, questions int) map[string]any {
	return map[string]any{
		"task_name":   taskName,
		"task_num":    taskNum,
		"total_tasks": totalTasks,
		"questions":   questions,
	}
}

// TaskSkippedData returns event data for a category that was already complete.
func TaskSkippedData(taskName string, records int) map[string]any {
	return map[string]any{
		"task_name": taskName,
		"records":   records,
	}
}

// TaskCompleteData returns event data for a task category completion.
func TaskCompleteData(taskName string, questions int, durationMs int64) map[string]any {
	return map[string]any{
		"task_name":   taskName,
		"questions":   questions,
		"duration_ms": durationMs,
	}
}

// ModelCallData returns event data for one model query.
func ModelCallData(taskName string, question, iteration int, output string, durationMs int64) map[string]any {
	return map[string]any{
		"task_name":   taskName,
		"question":    question,
		"iteration":   iteration,
		"output":      output,
		"duration_ms": durationMs,
	}
}

// FetchData returns event data for a tool call against a data service.
func FetchData(taskName string, question, iteration int, url, action string, resultLen int) map[string]any {
	return map[string]any{
		"task_name":  taskName,
		"question":   question,
		"iteration":  iteration,
		"url":        url,
		"action":     action,
		"result_len": resultLen,
	}
}

// URLSkippedData returns event data for a tool call that was not made.
func URLSkippedData(taskName string, question int, url, reason string) map[string]any {
	return map[string]any{
		"task_name": taskName,
		"question":  question,
		"url":       url,
		"reason":    reason,
	}
}

// QuestionCompleteData returns event data for a finished question.
func QuestionCompleteData(taskName string, question, iterations int, kind string) map[string]any {
	return map[string]any{
		"task_name":  taskName,
		"question":   question,
		"iterations": iterations,
		"kind":       kind,
	}
}

// ErrorData returns event data for an error.
func ErrorData(message string, details map[string]any) map[string]any {
	d := map[string]any{
		"message": message,
	}
	for k, v := range details {
		d[k] = v
	}
	return d
}
