// Package projectconfig provides the ProjectConfig struct and loader for
// .genegpt.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/genegpt-go/genegpt/internal/execution"
	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/genegpt-go/genegpt/internal/ncbi"
	"github.com/genegpt-go/genegpt/internal/orchestration"
	"github.com/genegpt-go/genegpt/internal/prompt"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up from the working
// directory upwards.
const FileName = ".genegpt.yaml"

// Default values for project configuration.
const (
	DefaultModel      = "openai/gpt-4o"
	DefaultExecutor   = "openrouter"
	DefaultOutputRoot = "outputs"

	DefaultOpenRouterTimeout = 120
)

// DefaultsConfig holds default run parameters.
type DefaultsConfig struct {
	Model      string `yaml:"model,omitempty"`
	Executor   string `yaml:"executor,omitempty"`
	OutputRoot string `yaml:"output_root,omitempty"`
	Verbose    *bool  `yaml:"verbose,omitempty"`
	SessionLog *bool  `yaml:"session_log,omitempty"`
}

// OpenRouterConfig holds model API settings.
type OpenRouterConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout,omitempty"`
}

// DelaysConfig holds the fixed waits of a run. Values are Go durations
// such as "500ms" or "30s".
type DelaysConfig struct {
	Fetch       time.Duration `yaml:"fetch,omitempty"`
	PostQuery   time.Duration `yaml:"post_query,omitempty"`
	BlastResult time.Duration `yaml:"blast_result,omitempty"`
}

// ServicesConfig restricts which hosts the model may direct requests to.
type ServicesConfig struct {
	AllowedHosts []string `yaml:"allowed_hosts,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .genegpt.yaml.
type ProjectConfig struct {
	Defaults   DefaultsConfig    `yaml:"defaults,omitempty"`
	OpenRouter OpenRouterConfig  `yaml:"openrouter,omitempty"`
	Limits     models.LoopLimits `yaml:"limits,omitempty"`
	Delays     DelaysConfig      `yaml:"delays,omitempty"`
	Services   ServicesConfig    `yaml:"services,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Defaults: DefaultsConfig{
			Model:      DefaultModel,
			Executor:   DefaultExecutor,
			OutputRoot: DefaultOutputRoot,
			Verbose:    boolPtr(false),
			SessionLog: boolPtr(false),
		},
		OpenRouter: OpenRouterConfig{
			BaseURL: execution.DefaultOpenRouterBaseURL,
			Timeout: DefaultOpenRouterTimeout,
		},
		Limits: orchestration.DefaultLimits(),
		Delays: DelaysConfig{
			Fetch:       ncbi.DefaultFetchDelay,
			PostQuery:   orchestration.DefaultPostQueryDelay,
			BlastResult: prompt.DefaultBlastWait,
		},
		Services: ServicesConfig{
			AllowedHosts: []string{ncbi.EutilsHost, ncbi.BlastHost},
		},
	}
}

// Load finds .genegpt.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .genegpt.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range 10 {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Defaults
	if src.Defaults.Model != "" {
		dst.Defaults.Model = src.Defaults.Model
	}
	if src.Defaults.Executor != "" {
		dst.Defaults.Executor = src.Defaults.Executor
	}
	if src.Defaults.OutputRoot != "" {
		dst.Defaults.OutputRoot = src.Defaults.OutputRoot
	}
	if src.Defaults.Verbose != nil {
		dst.Defaults.Verbose = src.Defaults.Verbose
	}
	if src.Defaults.SessionLog != nil {
		dst.Defaults.SessionLog = src.Defaults.SessionLog
	}

	// OpenRouter
	if src.OpenRouter.BaseURL != "" {
		dst.OpenRouter.BaseURL = src.OpenRouter.BaseURL
	}
	if src.OpenRouter.Timeout != 0 {
		dst.OpenRouter.Timeout = src.OpenRouter.Timeout
	}

	// Limits
	if src.Limits.MaxIterations != 0 {
		dst.Limits.MaxIterations = src.Limits.MaxIterations
	}
	if src.Limits.PromptCutoff != 0 {
		dst.Limits.PromptCutoff = src.Limits.PromptCutoff
	}
	if src.Limits.ResultCutoff != 0 {
		dst.Limits.ResultCutoff = src.Limits.ResultCutoff
	}
	if src.Limits.MaxTokens != 0 {
		dst.Limits.MaxTokens = src.Limits.MaxTokens
	}
	if src.Limits.CompletedRecords != 0 {
		dst.Limits.CompletedRecords = src.Limits.CompletedRecords
	}

	// Delays
	if src.Delays.Fetch != 0 {
		dst.Delays.Fetch = src.Delays.Fetch
	}
	if src.Delays.PostQuery != 0 {
		dst.Delays.PostQuery = src.Delays.PostQuery
	}
	if src.Delays.BlastResult != 0 {
		dst.Delays.BlastResult = src.Delays.BlastResult
	}

	// Services
	if len(src.Services.AllowedHosts) > 0 {
		dst.Services.AllowedHosts = src.Services.AllowedHosts
	}
}

// OpenRouterTimeout returns the model API timeout as a duration.
func (c *ProjectConfig) OpenRouterTimeout() time.Duration {
	return time.Duration(c.OpenRouter.Timeout) * time.Second
}

func boolPtr(b bool) *bool {
	return &b
}
