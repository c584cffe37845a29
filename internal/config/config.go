// Package config holds the resolved settings of a single run.
package config

import (
	"time"

	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/genegpt-go/genegpt/internal/results"
)

// Delays are the fixed waits applied during a run.
type Delays struct {
	Fetch       time.Duration
	PostQuery   time.Duration
	BlastResult time.Duration
}

// RunConfig is the resolved configuration for one run. It is built once by
// the CLI and passed explicitly to the components that need it.
type RunConfig struct {
	inputFile      string
	mask           models.Mask
	model          string
	executor       string
	outputRoot     string
	baseURL        string
	apiTimeout     time.Duration
	limits         models.LoopLimits
	delays         Delays
	allowedHosts   []string
	taskFilters    []string
	verbose        bool
	sessionLogPath string
}

// Option configures a RunConfig.
type Option func(*RunConfig)

// NewRunConfig creates a RunConfig for inputFile and mask.
func NewRunConfig(inputFile string, mask models.Mask, opts ...Option) *RunConfig {
	c := &RunConfig{
		inputFile: inputFile,
		mask:      mask,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithModel sets the model identifier sent to the model API.
func WithModel(model string) Option {
	return func(c *RunConfig) { c.model = model }
}

// WithExecutor selects the engine implementation ("openrouter" or "mock").
func WithExecutor(executor string) Option {
	return func(c *RunConfig) { c.executor = executor }
}

// WithOutputRoot sets the directory under which run output directories are created.
func WithOutputRoot(root string) Option {
	return func(c *RunConfig) { c.outputRoot = root }
}

// WithAPI sets the model API base URL and request timeout.
func WithAPI(baseURL string, timeout time.Duration) Option {
	return func(c *RunConfig) {
		c.baseURL = baseURL
		c.apiTimeout = timeout
	}
}

// WithLimits sets the loop bounds.
func WithLimits(l models.LoopLimits) Option {
	return func(c *RunConfig) { c.limits = l }
}

// WithDelays sets the fixed waits.
func WithDelays(d Delays) Option {
	return func(c *RunConfig) { c.delays = d }
}

// WithAllowedHosts sets the hosts the model may direct requests to.
func WithAllowedHosts(hosts ...string) Option {
	return func(c *RunConfig) { c.allowedHosts = hosts }
}

// WithTaskFilters restricts the run to task categories matching the glob patterns.
func WithTaskFilters(patterns ...string) Option {
	return func(c *RunConfig) { c.taskFilters = patterns }
}

// WithVerbose enables detailed progress output.
func WithVerbose(v bool) Option {
	return func(c *RunConfig) { c.verbose = v }
}

// WithSessionLogPath enables the NDJSON session log at path.
func WithSessionLogPath(path string) Option {
	return func(c *RunConfig) { c.sessionLogPath = path }
}

// InputFile returns the task file path.
func (c *RunConfig) InputFile() string {
	return c.inputFile
}

func (c *RunConfig) Mask() models.Mask {
	return c.mask
}

func (c *RunConfig) Model() string {
	return c.model
}

func (c *RunConfig) Executor() string {
	return c.executor
}

func (c *RunConfig) OutputRoot() string {
	return c.outputRoot
}

func (c *RunConfig) BaseURL() string {
	return c.baseURL
}

func (c *RunConfig) APITimeout() time.Duration {
	return c.apiTimeout
}

func (c *RunConfig) Limits() models.LoopLimits {
	return c.limits
}

func (c *RunConfig) Delays() Delays {
	return c.delays
}

func (c *RunConfig) AllowedHosts() []string {
	return c.allowedHosts
}

func (c *RunConfig) TaskFilters() []string {
	return c.taskFilters
}

func (c *RunConfig) Verbose() bool {
	return c.verbose
}

func (c *RunConfig) SessionLogPath() string {
	return c.sessionLogPath
}

// OutputDir is the directory holding this run's results.
func (c *RunConfig) OutputDir() string {
	return results.DirFor(c.outputRoot, c.model, c.inputFile, c.mask)
}

// Metadata describes the run for metadata.json.
func (c *RunConfig) Metadata(runID string, startedAt time.Time) *models.RunMetadata {
	return &models.RunMetadata{
		RunID:           runID,
		InputFile:       c.inputFile,
		Model:           c.model,
		Executor:        c.executor,
		Mask:            c.mask.String(),
		StartedAt:       models.UTCTimestamp(startedAt),
		MaskLegend:      c.mask.Legend(),
		MaskTranslation: c.mask.Translation(),
		Limits:          c.limits,
	}
}
