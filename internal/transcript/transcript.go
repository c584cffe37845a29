// Package transcript writes the per-call audit trail of model exchanges.
package transcript

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/genegpt-go/genegpt/internal/execution"
	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/genegpt-go/genegpt/internal/results"
)

// Filename returns the audit file name for the iteration-th model call of
// the question-th question of a task. Both indexes are 1-based.
func Filename(question, iteration int) string {
	return fmt.Sprintf("q%03d_call%02d.json", question, iteration)
}

// Writer stores audit records under <dir>/<Title Task>/.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir, normally the run's raw_io directory.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Path returns where the record for (task, question, iteration) is written.
func (w *Writer) Path(task string, question, iteration int) string {
	return filepath.Join(w.dir, results.TitleTaskName(task), Filename(question, iteration))
}

// Write stores rec and returns its path.
func (w *Writer) Write(task string, question, iteration int, rec *models.AuditRecord) (string, error) {
	path := w.Path(task, question, iteration)
	if err := results.WriteJSON(path, rec, "  "); err != nil {
		return "", fmt.Errorf("write audit record: %w", err)
	}
	return path, nil
}

// BuildAuditRecord captures a model call. A response without usage
// accounting records an empty usage object.
func BuildAuditRecord(req *execution.CompletionRequest, resp *execution.CompletionResponse, at time.Time) *models.AuditRecord {
	usage := map[string]any{}
	if resp != nil && resp.RawUsage != nil {
		usage = resp.RawUsage
	}
	return &models.AuditRecord{
		Input:   req,
		Output:  resp.Text(),
		TimeUTC: models.UTCTimestamp(at),
		Usage:   usage,
	}
}
