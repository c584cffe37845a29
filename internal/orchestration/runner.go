package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/genegpt-go/genegpt/internal/results"
	"github.com/genegpt-go/genegpt/internal/session"
)

// DefaultCompletedRecords is the record count at which a task category
// result file is treated as finished and skipped on later runs.
const DefaultCompletedRecords = 50

// TaskRunner processes every question of a task set and persists the results.
type TaskRunner struct {
	loop     *Loop
	layout   results.Layout
	preamble string
	metadata *models.RunMetadata
	session  session.Logger

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventRunStart         EventType = "run_start"
	EventRunComplete      EventType = "run_complete"
	EventTaskStart        EventType = "task_start"
	EventTaskSkipped      EventType = "task_skipped"
	EventTaskComplete     EventType = "task_complete"
	EventQuestionStart    EventType = "question_start"
	EventQuestionComplete EventType = "question_complete"
	EventModelResponse    EventType = "model_response"
	EventFetch            EventType = "fetch"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType      EventType
	TaskName       string
	TaskNum        int
	TotalTasks     int
	Question       int
	TotalQuestions int
	Iteration      int
	Outcome        string
	DurationMs     int64
	Details        map[string]any
}

// RunnerOption configures a TaskRunner.
type RunnerOption func(*TaskRunner)

// WithMetadata writes meta to the output directory when the run starts.
func WithMetadata(meta *models.RunMetadata) RunnerOption {
	return func(r *TaskRunner) { r.metadata = meta }
}

// WithRunSessionLogger records run-level events to l.
func WithRunSessionLogger(l session.Logger) RunnerOption {
	return func(r *TaskRunner) {
		if l != nil {
			r.session = l
		}
	}
}

// NewTaskRunner creates a runner that prefixes every question with preamble
// and writes results under layout.
func NewTaskRunner(loop *Loop, layout results.Layout, preamble string, opts ...RunnerOption) *TaskRunner {
	r := &TaskRunner{
		loop:      loop,
		layout:    layout,
		preamble:  preamble,
		session:   session.NopLogger{},
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	loop.notify = r.notifyProgress
	return r
}

// OnProgress registers a progress listener
func (r *TaskRunner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *TaskRunner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run processes ts category by category in file order. A category whose
// result file already holds the completed record count is left untouched;
// any other category is processed from its first question and its result
// file is rewritten after every question. The skip log is written once,
// when the run ends, and only if it has entries.
func (r *TaskRunner) Run(ctx context.Context, ts *models.TaskSet) (summary *models.RunSummary, err error) {
	start := time.Now()
	summary = &models.RunSummary{OutputDir: r.layout.Dir}
	skips := &models.SkipLog{}

	if r.metadata != nil {
		if err := r.layout.WriteMetadata(r.metadata); err != nil {
			return nil, err
		}
	}

	session.Emit(r.session, session.EventRunStart, r.runStartData(len(ts.Tasks)))
	r.notifyProgress(ProgressEvent{
		EventType:      EventRunStart,
		TotalTasks:     len(ts.Tasks),
		TotalQuestions: ts.NumQuestions(),
	})

	defer func() {
		if werr := r.layout.WriteSkipLog(skips.Entries()); werr != nil && err == nil {
			err = werr
		}
		summary.SkippedURLs = skips.Len()
		summary.Duration = time.Since(start)
		totals := summary.Totals()
		session.Emit(r.session, session.EventRunComplete, session.RunCompleteData(
			summary.QuestionsRun, totals.Answers, totals.APIErrors, totals.IterationLimits,
			skips.Len(), summary.Duration.Milliseconds()))
		r.notifyProgress(ProgressEvent{
			EventType:  EventRunComplete,
			DurationMs: summary.Duration.Milliseconds(),
			Details: map[string]any{
				"questions":    summary.QuestionsRun,
				"skipped_urls": skips.Len(),
			},
		})
	}()

	for i, task := range ts.Tasks {
		taskSummary, taskErr := r.runTask(ctx, task, i+1, len(ts.Tasks), skips, summary)
		if taskSummary != nil {
			summary.Tasks = append(summary.Tasks, *taskSummary)
		}
		if taskErr != nil {
			return summary, taskErr
		}
	}

	return summary, nil
}

func (r *TaskRunner) runTask(ctx context.Context, task models.Task, taskNum, totalTasks int, skips *models.SkipLog, summary *models.RunSummary) (*models.TaskSummary, error) {
	path := r.layout.TaskFile(task.Name)
	existing, err := results.LoadRecords(path)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.Name, err)
	}
	if len(existing) == r.loop.limits.CompletedRecords {
		slog.Info("task already complete", "task", task.Name, "records", len(existing))
		session.Emit(r.session, session.EventTaskSkipped, session.TaskSkippedData(task.Name, len(existing)))
		r.notifyProgress(ProgressEvent{
			EventType:  EventTaskSkipped,
			TaskName:   task.Name,
			TaskNum:    taskNum,
			TotalTasks: totalTasks,
			Details:    map[string]any{"records": len(existing)},
		})
		return &models.TaskSummary{Name: task.Name, Resumed: true, Counts: models.CountRecords(existing)}, nil
	}

	taskStart := time.Now()
	session.Emit(r.session, session.EventTaskStart,
		session.TaskStartData(task.Name, taskNum, totalTasks, len(task.Questions)))
	r.notifyProgress(ProgressEvent{
		EventType:      EventTaskStart,
		TaskName:       task.Name,
		TaskNum:        taskNum,
		TotalTasks:     totalTasks,
		TotalQuestions: len(task.Questions),
	})

	ts := &models.TaskSummary{Name: task.Name}
	records := make([]models.ResultRecord, 0, len(task.Questions))
	for j, qa := range task.Questions {
		r.notifyProgress(ProgressEvent{
			EventType:      EventQuestionStart,
			TaskName:       task.Name,
			TaskNum:        taskNum,
			TotalTasks:     totalTasks,
			Question:       j + 1,
			TotalQuestions: len(task.Questions),
			Details:        map[string]any{"question": qa.Question},
		})

		qStart := time.Now()
		rec, err := r.loop.ProcessQuestion(ctx, task.Name, j+1, qa, r.preamble, skips)
		if err != nil {
			return ts, fmt.Errorf("task %s question %d: %w", task.Name, j+1, err)
		}

		records = append(records, rec)
		if err := results.SaveRecords(path, records); err != nil {
			return ts, err
		}
		ts.Counts.Add(rec.Outcome)
		summary.QuestionsRun++

		r.notifyProgress(ProgressEvent{
			EventType:      EventQuestionComplete,
			TaskName:       task.Name,
			TaskNum:        taskNum,
			TotalTasks:     totalTasks,
			Question:       j + 1,
			TotalQuestions: len(task.Questions),
			Outcome:        rec.Outcome,
			DurationMs:     time.Since(qStart).Milliseconds(),
			Details: map[string]any{
				"expected":   rec.Expected,
				"iterations": len(rec.Transcript),
			},
		})
	}

	durationMs := time.Since(taskStart).Milliseconds()
	session.Emit(r.session, session.EventTaskComplete, session.TaskCompleteData(task.Name, len(records), durationMs))
	r.notifyProgress(ProgressEvent{
		EventType:  EventTaskComplete,
		TaskName:   task.Name,
		TaskNum:    taskNum,
		TotalTasks: totalTasks,
		DurationMs: durationMs,
		Details: map[string]any{
			"answers":          ts.Counts.Answers,
			"api_errors":       ts.Counts.APIErrors,
			"iteration_limits": ts.Counts.IterationLimits,
		},
	})
	return ts, nil
}

func (r *TaskRunner) runStartData(taskCount int) map[string]any {
	if r.metadata == nil {
		return session.RunStartData("", r.loop.model, "", "", taskCount)
	}
	return session.RunStartData(r.metadata.InputFile, r.metadata.Model, r.metadata.Executor, r.metadata.Mask, taskCount)
}
