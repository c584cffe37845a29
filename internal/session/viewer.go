package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SessionFile is a session log file on disk.
type SessionFile struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	NumEvents int
}

// ListSessions finds .jsonl session log files in dir.
func ListSessions(dir string) ([]SessionFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading session directory: %w", err)
	}

	var files []SessionFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), "-session.jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, e.Name())
		n, _ := countLines(path) //nolint:errcheck
		files = append(files, SessionFile{
			Path:      path,
			Name:      e.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			NumEvents: n,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close() //nolint:errcheck
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}

// ReadEvents parses all events from a session log file.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening session file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var events []Event
	scanner := bufio.NewScanner(f)
	// Increase buffer for large lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue // skip malformed lines
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	return events, nil
}

// RenderTimeline writes a human-readable run timeline to w.
//
//nolint:errcheck // display-only writes; errors are not actionable
func RenderTimeline(w io.Writer, events []Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w, " RUN TIMELINE")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	start := events[0].Timestamp
	for _, ev := range events {
		ts := formatDuration(ev.Timestamp.Sub(start))

		switch ev.Type {
		case EventRunStart:
			model, _ := ev.Data["model"].(string)       //nolint:errcheck
			executor, _ := ev.Data["executor"].(string) //nolint:errcheck
			mask, _ := ev.Data["mask"].(string)         //nolint:errcheck
			taskCount := jsonNumber(ev.Data["task_count"])
			fmt.Fprintf(w, "[%s] 🚀 Run started  model=%s  executor=%s  mask=%s  tasks=%d\n", ts, model, executor, mask, taskCount)

		case EventTaskStart:
			name, _ := ev.Data["task_name"].(string) //nolint:errcheck
			num := jsonNumber(ev.Data["task_num"])
			total := jsonNumber(ev.Data["total_tasks"])
			fmt.Fprintf(w, "[%s] ▶  Task %d/%d: %s\n", ts, num, total, name)

		case EventTaskSkipped:
			name, _ := ev.Data["task_name"].(string) //nolint:errcheck
			records := jsonNumber(ev.Data["records"])
			fmt.Fprintf(w, "[%s] ⏭  Task already complete: %s (%d records)\n", ts, name, records)

		case EventModelCall:
			q := jsonNumber(ev.Data["question"])
			it := jsonNumber(ev.Data["iteration"])
			output, _ := ev.Data["output"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s]    q%d #%d model: %s\n", ts, q, it, oneLine(output, 80))

		case EventFetch:
			url, _ := ev.Data["url"].(string)       //nolint:errcheck
			action, _ := ev.Data["action"].(string) //nolint:errcheck
			n := jsonNumber(ev.Data["result_len"])
			fmt.Fprintf(w, "[%s]    ↳ %s %s (%d chars)\n", ts, action, url, n)

		case EventURLSkipped:
			reason, _ := ev.Data["reason"].(string) //nolint:errcheck
			url, _ := ev.Data["url"].(string)       //nolint:errcheck
			if url == "" {
				fmt.Fprintf(w, "[%s]    ⚠ %s\n", ts, reason)
			} else {
				fmt.Fprintf(w, "[%s]    ⚠ %s: %s\n", ts, reason, url)
			}

		case EventQuestionComplete:
			q := jsonNumber(ev.Data["question"])
			kind, _ := ev.Data["kind"].(string) //nolint:errcheck
			iterations := jsonNumber(ev.Data["iterations"])
			icon := "✓"
			if kind != "answer" {
				icon = "✗"
			}
			fmt.Fprintf(w, "[%s]  %s q%d %s after %d call(s)\n", ts, icon, q, kind, iterations)

		case EventTaskComplete:
			name, _ := ev.Data["task_name"].(string) //nolint:errcheck
			questions := jsonNumber(ev.Data["questions"])
			dur := jsonNumber(ev.Data["duration_ms"])
			fmt.Fprintf(w, "[%s] ✓  Task complete: %s, %d question(s) (%dms)\n", ts, name, questions, dur)

		case EventError:
			msg, _ := ev.Data["message"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] ❌ Error: %s\n", ts, msg)

		case EventRunComplete:
			questions := jsonNumber(ev.Data["questions"])
			answers := jsonNumber(ev.Data["answers"])
			apiErrors := jsonNumber(ev.Data["api_errors"])
			limits := jsonNumber(ev.Data["iteration_limits"])
			dur := jsonNumber(ev.Data["duration_ms"])
			fmt.Fprintf(w, "[%s] 🏁 Run complete  %d/%d answered  %d api-error  %d iteration-limit  (%dms)\n",
				ts, answers, questions, apiErrors, limits, dur)

		default:
			fmt.Fprintf(w, "[%s] %s %v\n", ts, ev.Type, ev.Data)
		}
	}
	fmt.Fprintln(w)
}

// oneLine collapses newlines and shortens s to at most n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%6dms", d.Milliseconds())
	}
	return fmt.Sprintf("%6.1fs", d.Seconds())
}

// jsonNumber extracts a number from a JSON-decoded interface{} (float64 or json.Number).
func jsonNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64() //nolint:errcheck
		return int(i)
	}
	return 0
}
