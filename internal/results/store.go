package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/genegpt-go/genegpt/internal/models"
)

// WriteJSON writes v to path with the given indent, creating parent
// directories. The file is replaced atomically so an interrupted run never
// leaves a truncated result file behind.
func WriteJSON(path string, v any, indent string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// LoadRecords reads a task result file. A missing file yields no records.
func LoadRecords(path string) ([]models.ResultRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var recs []models.ResultRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return recs, nil
}

// SaveRecords rewrites a task result file with recs.
func SaveRecords(path string, recs []models.ResultRecord) error {
	if recs == nil {
		recs = []models.ResultRecord{}
	}
	return WriteJSON(path, recs, "    ")
}

// WriteMetadata writes metadata.json.
func (l Layout) WriteMetadata(meta *models.RunMetadata) error {
	return WriteJSON(l.MetadataPath(), meta, "  ")
}

// WriteSkipLog writes the skip log. Nothing is written for an empty log.
func (l Layout) WriteSkipLog(entries []models.SkipEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return WriteJSON(l.SkipLogPath(), entries, "  ")
}
