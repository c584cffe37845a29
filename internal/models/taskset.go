package models

import (
	"fmt"
	"os"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/genegpt-go/genegpt/internal/validation"
)

// QA is one question with its expected answer. The answer is carried through
// to the result record for later grading and never drives control flow.
type QA struct {
	Question string
	Answer   string
}

// Task is one task category and its questions in file order.
type Task struct {
	Name      string
	Questions []QA
}

// TaskSet is the parsed input file. Categories and questions keep the order
// in which they appear in the file.
type TaskSet struct {
	Tasks []Task
}

// NumQuestions returns the total number of questions across all tasks.
func (ts *TaskSet) NumQuestions() int {
	n := 0
	for _, t := range ts.Tasks {
		n += len(t.Questions)
	}
	return n
}

// LoadTaskSet reads, validates, and parses a task file.
func LoadTaskSet(path string) (*TaskSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if errs := validation.ValidateTaskSetBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid task file %s:\n  %s", path, strings.Join(errs, "\n  "))
	}

	return ParseTaskSet(data)
}

// ParseTaskSet parses {"category": {"question": "answer", ...}, ...}.
// A key repeated within one object keeps its first position and its last value.
func ParseTaskSet(data []byte) (*TaskSet, error) {
	ts := &TaskSet{}
	seen := map[string]int{}

	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Object {
			return fmt.Errorf("task %q: expected an object of question/answer pairs", key)
		}
		name := string(key)
		questions, err := parseQuestions(name, value)
		if err != nil {
			return err
		}
		if i, ok := seen[name]; ok {
			ts.Tasks[i].Questions = questions
			return nil
		}
		seen[name] = len(ts.Tasks)
		ts.Tasks = append(ts.Tasks, Task{Name: name, Questions: questions})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing task set: %w", err)
	}

	return ts, nil
}

func parseQuestions(task string, data []byte) ([]QA, error) {
	var out []QA
	seen := map[string]int{}

	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.String {
			return fmt.Errorf("task %q, question %q: answer must be a string", task, key)
		}
		answer, err := jsonparser.ParseString(value)
		if err != nil {
			return fmt.Errorf("task %q, question %q: %w", task, key, err)
		}
		q := string(key)
		if i, ok := seen[q]; ok {
			out[i].Answer = answer
			return nil
		}
		seen[q] = len(out)
		out = append(out, QA{Question: q, Answer: answer})
		return nil
	})
	return out, err
}
