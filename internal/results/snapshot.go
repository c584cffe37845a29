package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/genegpt-go/genegpt/internal/models"
)

// TaskResults holds one category result file. Name is the file stem, which
// is the category's display name.
type TaskResults struct {
	Name    string
	Records []models.ResultRecord
}

// Snapshot is everything a finished or interrupted run left in its output
// directory. Metadata and Skipped are empty when their files are absent.
type Snapshot struct {
	Dir      string
	Metadata *models.RunMetadata
	Tasks    []TaskResults
	Skipped  []models.SkipEntry
}

// Load reads the output directory. Category files are returned in file name
// order.
func (l Layout) Load() (*Snapshot, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading output directory: %w", err)
	}

	snap := &Snapshot{Dir: l.Dir}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, ".") {
			continue
		}
		if name == MetadataFile || name == SkipLogFile {
			continue
		}
		recs, err := LoadRecords(filepath.Join(l.Dir, name))
		if err != nil {
			return nil, err
		}
		snap.Tasks = append(snap.Tasks, TaskResults{
			Name:    strings.TrimSuffix(name, ".json"),
			Records: recs,
		})
	}

	meta := &models.RunMetadata{}
	found, err := readJSON(l.MetadataPath(), meta)
	if err != nil {
		return nil, err
	}
	if found {
		snap.Metadata = meta
	}

	if _, err := readJSON(l.SkipLogPath(), &snap.Skipped); err != nil {
		return nil, err
	}
	return snap, nil
}

// readJSON decodes path into v and reports whether the file existed.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return true, nil
}
