package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "Gene alias.json")
	recs := []models.ResultRecord{
		{
			Question:   "What is X?",
			Expected:   "Y",
			Outcome:    "Answer: Y",
			Transcript: []models.Exchange{{Prompt: "Question: What is X?\n", Output: "Answer: Y"}},
		},
		{Question: "Q2", Expected: "A2", Outcome: models.OutcomeAPIError},
	}

	require.NoError(t, SaveRecords(path, recs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    [\n        \"What is X?\"")

	loaded, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, recs[0], loaded[0])
	assert.Equal(t, models.OutcomeAPIError, loaded[1].Outcome)
	assert.Empty(t, loaded[1].Transcript)
}

func TestSaveRecords_PreservesArrow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.json")
	require.NoError(t, SaveRecords(path, []models.ResultRecord{{Question: "q", Expected: "a", Outcome: "x->[y]"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"x->[y]"`)
}

func TestLoadRecords_Missing(t *testing.T) {
	recs, err := LoadRecords(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Nil(t, recs)
}

func TestLoadRecords_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("[1, 2"), 0o644))

	_, err := LoadRecords(path)
	require.Error(t, err)
}

func TestWriteJSON_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteJSON(filepath.Join(dir, "a.json"), map[string]int{"a": 1}, "  "))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}

func TestWriteSkipLog(t *testing.T) {
	l := NewLayout(t.TempDir())

	require.NoError(t, l.WriteSkipLog(nil))
	_, err := os.Stat(l.SkipLogPath())
	assert.True(t, os.IsNotExist(err), "empty skip log should not be written")

	var log models.SkipLog
	log.Append("What is X?", "", models.SkipReasonNoURL)
	require.NoError(t, l.WriteSkipLog(log.Entries()))

	data, err := os.ReadFile(l.SkipLogPath())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"question": "What is X?", "url": null, "reason": "no valid URL in model output"}]`, string(data))
}

func TestWriteMetadata(t *testing.T) {
	l := NewLayout(t.TempDir())
	m, err := models.ParseMask("110011")
	require.NoError(t, err)

	require.NoError(t, l.WriteMetadata(&models.RunMetadata{
		RunID:           "run-1",
		InputFile:       "tasks.json",
		Model:           "openai/gpt-4o",
		Mask:            m.String(),
		MaskLegend:      m.Legend(),
		MaskTranslation: m.Translation(),
	}))

	data, err := os.ReadFile(l.MetadataPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"BLAST alignment example": true`)
	assert.Contains(t, string(data), `"Gene alias example": false`)
}
