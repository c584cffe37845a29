package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	data := map[string]any{"key": "value"}
	ev := NewEvent(EventRunStart, data)

	if ev.Type != EventRunStart {
		t.Errorf("Type = %q, want %q", ev.Type, EventRunStart)
	}
	if ev.Data["key"] != "value" {
		t.Errorf("Data[key] = %v, want %q", ev.Data["key"], "value")
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestEventJSON(t *testing.T) {
	ts := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	ev := Event{
		Timestamp: ts,
		Type:      EventTaskStart,
		Data:      TaskStartData("gene_alias", 1, 3, 50),
	}

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Type != EventTaskStart {
		t.Errorf("decoded.Type = %q, want %q", decoded.Type, EventTaskStart)
	}
	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("decoded.Timestamp = %v, want %v", decoded.Timestamp, ts)
	}
	if decoded.Data["task_name"] != "gene_alias" {
		t.Errorf("task_name = %v, want %q", decoded.Data["task_name"], "gene_alias")
	}
}

func TestRunStartData(t *testing.T) {
	d := RunStartData("tasks.json", "openai/gpt-4o", "mock", "111111", 5)
	if d["input_file"] != "tasks.json" {
		t.Errorf("input_file = %v", d["input_file"])
	}
	if d["mask"] != "111111" {
		t.Errorf("mask = %v", d["mask"])
	}
	if d["task_count"] != 5 {
		t.Errorf("task_count = %v", d["task_count"])
	}
}

func TestURLSkippedData(t *testing.T) {
	d := URLSkippedData("gene_alias", 2, "", "no valid URL in model output")
	if d["reason"] != "no valid URL in model output" {
		t.Errorf("reason = %v", d["reason"])
	}
	if d["question"] != 2 {
		t.Errorf("question = %v", d["question"])
	}
}

func TestErrorData(t *testing.T) {
	d := ErrorData("composition failed", map[string]any{"mask": "001000"})
	if d["message"] != "composition failed" {
		t.Errorf("message = %v", d["message"])
	}
	if d["mask"] != "001000" {
		t.Errorf("mask = %v", d["mask"])
	}
}

type failingLogger struct{ calls int }

func (f *failingLogger) Log(Event) error { f.calls++; return errors.New("disk full") }
func (f *failingLogger) Close() error    { return nil }

func TestEmit(t *testing.T) {
	Emit(nil, EventError, nil)

	fl := &failingLogger{}
	Emit(fl, EventError, ErrorData("x", nil))
	if fl.calls != 1 {
		t.Errorf("calls = %d, want 1", fl.calls)
	}
}

func TestJSONLogger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-session.jsonl")

	logger, err := NewJSONLogger(path)
	if err != nil {
		t.Fatalf("NewJSONLogger: %v", err)
	}

	events := []Event{
		NewEvent(EventRunStart, RunStartData("tasks.json", "openai/gpt-4o", "mock", "111111", 2)),
		NewEvent(EventTaskStart, TaskStartData("gene_alias", 1, 2, 1)),
		NewEvent(EventTaskComplete, TaskCompleteData("gene_alias", 1, 500)),
		NewEvent(EventRunComplete, RunCompleteData(2, 2, 0, 0, 0, 1000)),
	}

	for _, ev := range events {
		if err := logger.Log(ev); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Verify the file was written with one JSON object per line
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}

	// Parse first line
	var first Event
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatalf("Unmarshal line 0: %v", err)
	}
	if first.Type != EventRunStart {
		t.Errorf("first event type = %q, want %q", first.Type, EventRunStart)
	}
}

func TestJSONLoggerPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "test.jsonl")

	logger, err := NewJSONLogger(path)
	if err != nil {
		t.Fatalf("NewJSONLogger with subdirectory: %v", err)
	}
	defer logger.Close() //nolint:errcheck

	if logger.Path() != path {
		t.Errorf("Path() = %q, want %q", logger.Path(), path)
	}
}

func TestNopLogger(t *testing.T) {
	var logger Logger = NopLogger{}
	if err := logger.Log(NewEvent(EventRunStart, nil)); err != nil {
		t.Errorf("NopLogger.Log should not error: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("NopLogger.Close should not error: %v", err)
	}
}

func TestDefaultLogPath(t *testing.T) {
	p := DefaultLogPath("/tmp/sessions")
	if filepath.Dir(p) != "/tmp/sessions" {
		t.Errorf("dir = %q, want /tmp/sessions", filepath.Dir(p))
	}
	if ext := filepath.Ext(p); ext != ".jsonl" {
		t.Errorf("ext = %q, want .jsonl", ext)
	}
}

func TestListSessions(t *testing.T) {
	dir := t.TempDir()

	// Create some session files
	for _, name := range []string{
		"20250115T100000Z-session.jsonl",
		"20250116T100000Z-session.jsonl",
		"not-a-session.txt",
	} {
		os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0644) //nolint:errcheck
	}

	files, err := ListSessions(dir)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
}

func TestListSessionsEmptyDir(t *testing.T) {
	dir := t.TempDir()
	files, err := ListSessions(dir)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

func TestListSessionsNoDir(t *testing.T) {
	_, err := ListSessions("/nonexistent/dir")
	if err == nil {
		t.Error("expected error for nonexistent directory")
	}
}

func TestReadEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-session.jsonl")

	// Write NDJSON
	logger, err := NewJSONLogger(path)
	if err != nil {
		t.Fatalf("NewJSONLogger: %v", err)
	}
	logger.Log(NewEvent(EventRunStart, RunStartData("t.json", "m", "mock", "000000", 1))) //nolint:errcheck
	logger.Log(NewEvent(EventTaskStart, TaskStartData("t1", 1, 1, 1)))                    //nolint:errcheck
	logger.Log(NewEvent(EventTaskComplete, TaskCompleteData("t1", 1, 100)))               //nolint:errcheck
	logger.Log(NewEvent(EventRunComplete, RunCompleteData(1, 1, 0, 0, 0, 100)))           //nolint:errcheck
	logger.Close()                                                                        //nolint:errcheck

	events, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[0].Type != EventRunStart {
		t.Errorf("events[0].Type = %q", events[0].Type)
	}
	if events[3].Type != EventRunComplete {
		t.Errorf("events[3].Type = %q", events[3].Type)
	}
}

func TestReadEventsSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-session.jsonl")

	content := `{"timestamp":"2025-01-15T10:00:00Z","type":"run_start","data":{}}
not valid json
{"timestamp":"2025-01-15T10:00:01Z","type":"run_complete","data":{}}
`
	os.WriteFile(path, []byte(content), 0644) //nolint:errcheck

	events, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (malformed line skipped)", len(events))
	}
}

func TestRenderTimeline(t *testing.T) {
	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	at := func(ms int) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }
	events := []Event{
		{Timestamp: base, Type: EventRunStart, Data: RunStartData("tasks.json", "openai/gpt-4o", "mock", "110011", 2)},
		{Timestamp: at(100), Type: EventTaskStart, Data: TaskStartData("gene_alias", 1, 2, 1)},
		{Timestamp: at(150), Type: EventModelCall, Data: ModelCallData("gene_alias", 1, 1, "[https://eutils.ncbi.nlm.nih.gov/x]", 40)},
		{Timestamp: at(200), Type: EventFetch, Data: FetchData("gene_alias", 1, 1, "https://eutils.ncbi.nlm.nih.gov/x", "esearch", 120)},
		{Timestamp: at(250), Type: EventURLSkipped, Data: URLSkippedData("gene_alias", 1, "", "no valid URL in model output")},
		{Timestamp: at(260), Type: EventQuestionComplete, Data: QuestionCompleteData("gene_alias", 1, 2, "answer")},
		{Timestamp: at(300), Type: EventTaskComplete, Data: TaskCompleteData("gene_alias", 1, 200)},
		{Timestamp: at(350), Type: EventTaskSkipped, Data: TaskSkippedData("gene_disease_association", 50)},
		{Timestamp: at(400), Type: EventError, Data: ErrorData("something broke", nil)},
		{Timestamp: at(500), Type: EventRunComplete, Data: RunCompleteData(1, 1, 0, 0, 1, 500)},
	}

	var buf bytes.Buffer
	RenderTimeline(&buf, events)

	output := buf.String()
	for _, want := range []string{
		"RUN TIMELINE",
		"gene_alias",
		"openai/gpt-4o",
		"mask=110011",
		"esearch",
		"no valid URL in model output",
		"gene_disease_association (50 records)",
		"something broke",
		"1/1 answered",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q", want)
		}
	}
}

func TestOneLine(t *testing.T) {
	if got := oneLine("a\n\nb  c", 80); got != "a b c" {
		t.Errorf("oneLine() = %q", got)
	}
	if got := oneLine("abcdef", 4); got != "abc…" {
		t.Errorf("oneLine() = %q", got)
	}
}

func TestRenderTimelineEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderTimeline(&buf, nil)
	if !bytes.Contains(buf.Bytes(), []byte("No events found.")) {
		t.Error("empty events should print 'No events found.'")
	}
}
