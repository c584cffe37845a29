package orchestration

import (
	"fmt"
	"path/filepath"

	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/genegpt-go/genegpt/internal/results"
)

// FilterTasks returns a task set holding only the categories whose name or
// pretty name matches at least one of the given glob patterns. Category
// order is preserved. An empty patterns slice returns ts unchanged.
func FilterTasks(ts *models.TaskSet, patterns []string) (*models.TaskSet, error) {
	if len(patterns) == 0 {
		return ts, nil
	}

	out := &models.TaskSet{}
	for _, task := range ts.Tasks {
		ok, err := matchesAny(task.Name, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			out.Tasks = append(out.Tasks, task)
		}
	}
	return out, nil
}

// matchesAny reports whether a category's name or pretty name matches any pattern.
func matchesAny(name string, patterns []string) (bool, error) {
	pretty := results.PrettyTaskName(name)
	for _, p := range patterns {
		nameMatch, err := filepath.Match(p, name)
		if err != nil {
			return false, fmt.Errorf("invalid task filter pattern %q: %w", p, err)
		}
		if nameMatch {
			return true, nil
		}
		prettyMatch, err := filepath.Match(p, pretty)
		if err != nil {
			return false, fmt.Errorf("invalid task filter pattern %q: %w", p, err)
		}
		if prettyMatch {
			return true, nil
		}
	}
	return false, nil
}
