// Package prompt builds the instruction and worked-example preamble that is
// prepended to every question.
package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/genegpt-go/genegpt/internal/ncbi"
)

// DefaultBlastWait is how long to wait between submitting a BLAST job and
// retrieving its result.
const DefaultBlastWait = 30 * time.Second

// Fetcher retrieves the raw body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Composer assembles preambles. Worked examples embed live responses, so
// composing may block on network calls.
type Composer struct {
	fetcher   Fetcher
	sleep     ncbi.Sleeper
	blastWait time.Duration
}

// Option configures a Composer.
type Option func(*Composer)

// WithSleeper replaces the function used for the BLAST wait.
func WithSleeper(s ncbi.Sleeper) Option {
	return func(c *Composer) {
		if s != nil {
			c.sleep = s
		}
	}
}

// WithBlastWait sets the wait before retrieving the example BLAST job.
func WithBlastWait(d time.Duration) Option {
	return func(c *Composer) { c.blastWait = d }
}

// NewComposer creates a Composer that fetches example responses with f.
func NewComposer(f Fetcher, opts ...Option) *Composer {
	c := &Composer{fetcher: f, sleep: ncbi.Sleep, blastWait: DefaultBlastWait}
	for _, o := range opts {
		o(c)
	}
	return c
}

var plainExamples = []example{
	{
		toggle:   models.ToggleGeneAliasExample,
		question: "What is the official gene symbol of LMP10?",
		urls:     []string{geneAliasSearchURL, geneAliasFetchURL},
		answer:   AnswerGeneAlias,
	},
	{
		toggle:   models.ToggleSNPGeneExample,
		question: "Which gene is SNP rs1217074595 associated with?",
		urls:     []string{snpSummaryURL},
		answer:   AnswerSNPGene,
	},
	{
		toggle:   models.ToggleGeneDiseaseExample,
		question: "What are genes related to Meesmann corneal dystrophy?",
		urls:     []string{diseaseSearchURL, diseaseSummaryURL},
		answer:   AnswerGeneDisease,
	},
}

// Compose returns the preamble for mask. Blocks are emitted in fixed order:
// opening, enabled instructions, the examples header when any example is
// enabled, then enabled examples. Any fetch error aborts composition.
func (c *Composer) Compose(ctx context.Context, mask models.Mask) (string, error) {
	var b strings.Builder
	b.WriteString(opening)

	if mask[models.ToggleEutilsInstructions] {
		b.WriteString(eutilsInstructions)
	}
	if mask[models.ToggleBlastInstructions] {
		b.WriteString(blastInstructions)
	}
	if mask.Any(models.ToggleGeneAliasExample) {
		b.WriteString(examplesHeader)
	}

	for _, ex := range plainExamples {
		if !mask[ex.toggle] {
			continue
		}
		if err := c.writePlainExample(ctx, &b, ex); err != nil {
			return "", err
		}
	}

	if mask[models.ToggleBlastAlignmentExample] {
		if err := c.writeBlastExample(ctx, &b); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

func (c *Composer) writePlainExample(ctx context.Context, b *strings.Builder, ex example) error {
	fmt.Fprintf(b, "Question: %s\n", ex.question)
	for _, u := range ex.urls {
		result, err := c.fetch(ctx, u)
		if err != nil {
			return err
		}
		writeAnnotation(b, u, result)
	}
	fmt.Fprintf(b, "Answer: %s\n\n", ex.answer)
	return nil
}

// writeBlastExample submits the example sequence, shows the job identifier
// as the submission's result, waits, then embeds the retrieved alignment.
func (c *Composer) writeBlastExample(ctx context.Context, b *strings.Builder) error {
	body, err := c.fetch(ctx, blastSubmitURL)
	if err != nil {
		return err
	}
	rid := ncbi.ExtractRID(body)
	if rid == ncbi.NoRID {
		return fmt.Errorf("composing BLAST example: submission response has no RID")
	}

	resultURL := ncbi.BlastResultURL(rid)
	slog.Debug("Waiting for example BLAST job", "rid", rid, "wait", c.blastWait)
	if err := c.sleep(ctx, c.blastWait); err != nil {
		return err
	}
	result, err := c.fetch(ctx, resultURL)
	if err != nil {
		return err
	}

	b.WriteString("Question: Align the DNA sequence to the human genome:ATTCTGC...\n")
	writeAnnotation(b, blastSubmitURL, rid)
	writeAnnotation(b, resultURL, result)
	fmt.Fprintf(b, "Answer: %s\n\n", AnswerBlastAlignment)
	return nil
}

func (c *Composer) fetch(ctx context.Context, u string) (string, error) {
	slog.Debug("Fetching example response", "url", u)
	body, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		return "", fmt.Errorf("composing preamble: fetching %s: %w", u, err)
	}
	return body, nil
}

func writeAnnotation(b *strings.Builder, u, result string) {
	fmt.Fprintf(b, "[%s]->[%s]\n", u, result)
}
