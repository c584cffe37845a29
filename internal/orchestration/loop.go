package orchestration

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/genegpt-go/genegpt/internal/execution"
	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/genegpt-go/genegpt/internal/ncbi"
	"github.com/genegpt-go/genegpt/internal/prompt"
	"github.com/genegpt-go/genegpt/internal/session"
	"github.com/genegpt-go/genegpt/internal/transcript"
)

// Loop defaults.
const (
	DefaultMaxIterations  = 10
	DefaultPromptCutoff   = 18000
	DefaultResultCutoff   = 10000
	DefaultPostQueryDelay = 500 * time.Millisecond
)

// urlPattern matches a bracketed http(s) URL that contains no brackets itself.
var urlPattern = regexp.MustCompile(`\[(https?://[^\[\]]+)\]`)

// DefaultLimits returns the standard loop bounds.
func DefaultLimits() models.LoopLimits {
	return models.LoopLimits{
		MaxIterations:    DefaultMaxIterations,
		PromptCutoff:     DefaultPromptCutoff,
		ResultCutoff:     DefaultResultCutoff,
		MaxTokens:        execution.DefaultMaxTokens,
		CompletedRecords: DefaultCompletedRecords,
	}
}

// Loop runs the query, parse, fetch, append cycle for one question at a time.
type Loop struct {
	engine    execution.Engine
	fetcher   prompt.Fetcher
	allowlist *ncbi.Allowlist
	sleep     ncbi.Sleeper
	audit     *transcript.Writer
	session   session.Logger
	notify    func(ProgressEvent)
	now       func() time.Time

	model          string
	limits         models.LoopLimits
	postQueryDelay time.Duration
	blastWait      time.Duration
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLimits overrides the loop bounds. Zero fields keep their defaults.
func WithLimits(l models.LoopLimits) LoopOption {
	return func(lp *Loop) {
		if l.MaxIterations > 0 {
			lp.limits.MaxIterations = l.MaxIterations
		}
		if l.PromptCutoff > 0 {
			lp.limits.PromptCutoff = l.PromptCutoff
		}
		if l.ResultCutoff > 0 {
			lp.limits.ResultCutoff = l.ResultCutoff
		}
		if l.MaxTokens > 0 {
			lp.limits.MaxTokens = l.MaxTokens
		}
		if l.CompletedRecords > 0 {
			lp.limits.CompletedRecords = l.CompletedRecords
		}
	}
}

// WithAllowlist replaces the set of services the loop may call.
func WithAllowlist(a *ncbi.Allowlist) LoopOption {
	return func(lp *Loop) {
		if a != nil {
			lp.allowlist = a
		}
	}
}

// WithLoopSleeper replaces the function used for fixed waits.
func WithLoopSleeper(s ncbi.Sleeper) LoopOption {
	return func(lp *Loop) {
		if s != nil {
			lp.sleep = s
		}
	}
}

// WithDelays sets the wait after each model query and before each BLAST
// result retrieval.
func WithDelays(postQuery, blastWait time.Duration) LoopOption {
	return func(lp *Loop) {
		lp.postQueryDelay = postQuery
		lp.blastWait = blastWait
	}
}

// WithAuditWriter stores every model call through w.
func WithAuditWriter(w *transcript.Writer) LoopOption {
	return func(lp *Loop) { lp.audit = w }
}

// WithSessionLogger records loop events to l.
func WithSessionLogger(l session.Logger) LoopOption {
	return func(lp *Loop) { lp.session = l }
}

// WithClock replaces the time source used for audit timestamps.
func WithClock(now func() time.Time) LoopOption {
	return func(lp *Loop) {
		if now != nil {
			lp.now = now
		}
	}
}

// NewLoop creates a Loop that queries model through engine and calls data
// services through fetcher.
func NewLoop(engine execution.Engine, fetcher prompt.Fetcher, model string, opts ...LoopOption) *Loop {
	lp := &Loop{
		engine:         engine,
		fetcher:        fetcher,
		allowlist:      ncbi.DefaultAllowlist(),
		sleep:          ncbi.Sleep,
		session:        session.NopLogger{},
		notify:         func(ProgressEvent) {},
		now:            time.Now,
		model:          model,
		limits:         DefaultLimits(),
		postQueryDelay: DefaultPostQueryDelay,
		blastWait:      prompt.DefaultBlastWait,
	}
	for _, o := range opts {
		o(lp)
	}
	return lp
}

// Limits returns the bounds in effect.
func (lp *Loop) Limits() models.LoopLimits {
	return lp.limits
}

// ProcessQuestion runs the loop for one question and returns its record.
// Model and service failures become outcomes and skip entries. The returned
// error is non-nil only when ctx is done or an audit record cannot be
// written, and the run should stop.
func (lp *Loop) ProcessQuestion(ctx context.Context, task string, questionNum int, qa models.QA, preamble string, skips *models.SkipLog) (models.ResultRecord, error) {
	rec := models.ResultRecord{Question: qa.Question, Expected: qa.Answer}
	running := preamble + "Question: " + qa.Question + "\n"
	log := slog.With("task", task, "question", questionNum)

	finish := func(outcome string, iterations int) (models.ResultRecord, error) {
		rec.Outcome = outcome
		session.Emit(lp.session, session.EventQuestionComplete,
			session.QuestionCompleteData(task, questionNum, iterations, string(models.KindOf(outcome))))
		return rec, nil
	}
	skip := func(url, reason string) {
		skips.Append(qa.Question, url, reason)
		log.Warn("skipping question", "reason", reason, "url", url)
		session.Emit(lp.session, session.EventURLSkipped, session.URLSkippedData(task, questionNum, url, reason))
	}

	for iter := 1; iter <= lp.limits.MaxIterations; iter++ {
		running = truncatePrompt(running, lp.limits.PromptCutoff)

		req := execution.NewCompletionRequest(lp.model, running, lp.limits.MaxTokens)
		start := lp.now()
		resp, err := lp.engine.Complete(ctx, req)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rec, ctxErr
		}
		// Rate-limit backoff follows every model call, failed ones included.
		if sleepErr := lp.sleep(ctx, lp.postQueryDelay); sleepErr != nil {
			return rec, sleepErr
		}
		if err != nil {
			log.Warn("model call failed", "iteration", iter, "error", err)
			session.Emit(lp.session, session.EventError,
				session.ErrorData(err.Error(), map[string]any{"task_name": task, "question": questionNum, "iteration": iter}))
			return finish(models.OutcomeAPIError, iter)
		}

		output := resp.Text()
		rec.Transcript = append(rec.Transcript, models.Exchange{Prompt: running, Output: output})
		log.Debug("model response", "iteration", iter, "output", output)
		session.Emit(lp.session, session.EventModelCall,
			session.ModelCallData(task, questionNum, iter, output, lp.now().Sub(start).Milliseconds()))
		lp.notify(ProgressEvent{
			EventType: EventModelResponse,
			TaskName:  task,
			Question:  questionNum,
			Iteration: iter,
			Details:   map[string]any{"output": output},
		})

		if lp.audit != nil {
			if _, err := lp.audit.Write(task, questionNum, iter, transcript.BuildAuditRecord(req, resp, lp.now())); err != nil {
				return rec, err
			}
		}

		url, ok := extractURL(output)
		if !ok {
			skip("", models.SkipReasonNoURL)
			return finish(output, iter)
		}
		if hasPlaceholder(url) {
			skip(url, models.SkipReasonPlaceholder)
			return finish(output, iter)
		}
		if err := lp.allowlist.Check(url); err != nil {
			skip(url, models.SkipReasonNotAllowed)
			return finish(output, iter)
		}

		action := ncbi.Classify(url)
		if action == ncbi.ActionBlastGet {
			if err := lp.sleep(ctx, lp.blastWait); err != nil {
				return rec, err
			}
		}

		body, err := lp.fetcher.Fetch(ctx, url)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rec, ctxErr
		}
		if err != nil {
			log.Warn("fetch failed", "iteration", iter, "url", url, "error", err)
			skip(url, models.SkipReasonFetchFailed)
			return finish(models.OutcomeAPIError, iter)
		}

		result := body
		if action == ncbi.ActionBlastPut {
			result = ncbi.ExtractRID(body)
		}
		result = truncateResult(result, lp.limits.ResultCutoff)

		session.Emit(lp.session, session.EventFetch,
			session.FetchData(task, questionNum, iter, url, string(action), len(result)))
		lp.notify(ProgressEvent{
			EventType: EventFetch,
			TaskName:  task,
			Question:  questionNum,
			Iteration: iter,
			Details:   map[string]any{"url": url, "action": string(action)},
		})

		running += output + "->[" + result + "]\n"
	}

	log.Warn("iteration limit reached", "limit", lp.limits.MaxIterations)
	return finish(models.OutcomeIterationLimit, lp.limits.MaxIterations)
}

// extractURL returns the first bracketed http(s) URL in s.
func extractURL(s string) (string, bool) {
	m := urlPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// hasPlaceholder reports whether url still contains template braces.
func hasPlaceholder(url string) bool {
	return strings.ContainsAny(url, "{}")
}

// truncatePrompt keeps the trailing limit characters of s. An invalid UTF-8
// byte counts as one character, so the result is always a suffix of s.
func truncatePrompt(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	end := len(s)
	for n := 0; n < limit && end > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(s[:end])
		end -= size
	}
	return s[end:]
}

// truncateResult keeps the leading limit characters of s. An invalid UTF-8
// byte counts as one character, so the result is always a prefix of s.
func truncateResult(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	start := 0
	for n := 0; n < limit && start < len(s); n++ {
		_, size := utf8.DecodeRuneInString(s[start:])
		start += size
	}
	return s[:start]
}
