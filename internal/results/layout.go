// Package results owns the on-disk layout of a run: one directory per
// (model, input file, mask) holding per-task result arrays, run metadata,
// the skip log, and raw model exchanges.
package results

import (
	"path/filepath"
	"strings"

	"github.com/genegpt-go/genegpt/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MetadataFile = "metadata.json"
	SkipLogFile  = "skipped_urls.json"
	RawIODir     = "raw_io"
)

// taskNames maps known task keys to the file names used for their results.
var taskNames = map[string]string{
	"gene_alias":                  "Gene alias",
	"gene_name_conversion":        "Gene name conversion",
	"gene_location":               "Gene location",
	"snp_location":                "SNP location",
	"gene_disease_association":    "Gene disease association",
	"protein_coding_genes":        "Protein-coding genes",
	"gene_snp_association":        "Gene SNP association",
	"human_genome_dna_alignment":  "Human genome DNA alignment",
	"multi_species_dna_alignment": "Multi-species DNA alignment",
}

var titleCaser = cases.Title(language.English)

// TitleTaskName turns "gene_snp_association" into "Gene Snp Association".
func TitleTaskName(task string) string {
	return titleCaser.String(strings.ReplaceAll(task, "_", " "))
}

// PrettyTaskName returns the display name for a task key, falling back to
// TitleTaskName for keys outside the known set.
func PrettyTaskName(task string) string {
	if name, ok := taskNames[task]; ok {
		return name
	}
	return TitleTaskName(task)
}

// DirFor returns root/model=<model>/file=<input stem>/mask=<mask>.
func DirFor(root, model, inputFile string, mask models.Mask) string {
	stem := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	return filepath.Join(root,
		"model="+strings.ReplaceAll(model, "/", "_"),
		"file="+stem,
		"mask="+mask.String(),
	)
}

// Layout resolves file paths inside one output directory.
type Layout struct {
	Dir string
}

// NewLayout returns the layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{Dir: dir}
}

// TaskFile is the result array file for task.
func (l Layout) TaskFile(task string) string {
	return filepath.Join(l.Dir, PrettyTaskName(task)+".json")
}

// MetadataPath is the run metadata file.
func (l Layout) MetadataPath() string {
	return filepath.Join(l.Dir, MetadataFile)
}

// SkipLogPath is the skipped URL log.
func (l Layout) SkipLogPath() string {
	return filepath.Join(l.Dir, SkipLogFile)
}

// RawIOPath is the directory holding per-call audit records.
func (l Layout) RawIOPath() string {
	return filepath.Join(l.Dir, RawIODir)
}
