package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutLoad(t *testing.T) {
	layout := NewLayout(t.TempDir())

	require.NoError(t, SaveRecords(layout.TaskFile("gene_alias"), []models.ResultRecord{
		{Question: "q1", Expected: "PSMB10", Outcome: "Answer: PSMB10"},
		{Question: "q2", Expected: "SLC38A6", Outcome: models.OutcomeAPIError},
	}))
	require.NoError(t, SaveRecords(layout.TaskFile("snp_location"), []models.ResultRecord{
		{Question: "q3", Expected: "chr1", Outcome: models.OutcomeIterationLimit},
	}))
	require.NoError(t, layout.WriteMetadata(&models.RunMetadata{RunID: "r1", Mask: "110011"}))
	require.NoError(t, layout.WriteSkipLog([]models.SkipEntry{{Question: "q1", Reason: models.SkipReasonNoURL}}))
	require.NoError(t, os.MkdirAll(layout.RawIOPath(), 0o755))

	snap, err := layout.Load()
	require.NoError(t, err)

	require.Len(t, snap.Tasks, 2)
	assert.Equal(t, "Gene alias", snap.Tasks[0].Name)
	assert.Len(t, snap.Tasks[0].Records, 2)
	assert.Equal(t, "SNP location", snap.Tasks[1].Name)

	require.NotNil(t, snap.Metadata)
	assert.Equal(t, "r1", snap.Metadata.RunID)
	require.Len(t, snap.Skipped, 1)
	assert.Nil(t, snap.Skipped[0].URL)
}

func TestLayoutLoad_OnlyResults(t *testing.T) {
	layout := NewLayout(t.TempDir())
	require.NoError(t, SaveRecords(layout.TaskFile("gene_alias"), nil))

	snap, err := layout.Load()
	require.NoError(t, err)
	assert.Nil(t, snap.Metadata)
	assert.Empty(t, snap.Skipped)
	require.Len(t, snap.Tasks, 1)
	assert.Empty(t, snap.Tasks[0].Records)
}

func TestLayoutLoad_MissingDir(t *testing.T) {
	_, err := NewLayout(filepath.Join(t.TempDir(), "nope")).Load()
	assert.Error(t, err)
}

func TestLayoutLoad_CorruptMetadata(t *testing.T) {
	layout := NewLayout(t.TempDir())
	require.NoError(t, os.WriteFile(layout.MetadataPath(), []byte("{"), 0o644))

	_, err := layout.Load()
	assert.Error(t, err)
}
