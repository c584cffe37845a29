package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/genegpt-go/genegpt/internal/models"
)

func mustMask(t *testing.T, s string) models.Mask {
	t.Helper()
	m, err := models.ParseMask(s)
	if err != nil {
		t.Fatalf("ParseMask(%q): %v", s, err)
	}
	return m
}

func TestNewRunConfig_DefaultValues(t *testing.T) {
	cfg := NewRunConfig("tasks.json", mustMask(t, "111111"))

	if cfg.InputFile() != "tasks.json" {
		t.Fatalf("InputFile() = %q, want %q", cfg.InputFile(), "tasks.json")
	}
	if cfg.Mask().String() != "111111" {
		t.Fatalf("Mask() = %q, want %q", cfg.Mask(), "111111")
	}
	if cfg.Model() != "" {
		t.Fatalf("Model() = %q, want empty", cfg.Model())
	}
	if cfg.Verbose() {
		t.Fatalf("Verbose() = true, want false")
	}
	if cfg.SessionLogPath() != "" {
		t.Fatalf("SessionLogPath() = %q, want empty", cfg.SessionLogPath())
	}
	if cfg.TaskFilters() != nil {
		t.Fatalf("TaskFilters() = %v, want nil", cfg.TaskFilters())
	}
}

func TestNewRunConfig_AppliesFunctionalOptions(t *testing.T) {
	limits := models.LoopLimits{MaxIterations: 4, PromptCutoff: 100, ResultCutoff: 50, MaxTokens: 64, CompletedRecords: 2}
	delays := Delays{Fetch: time.Second, PostQuery: time.Millisecond, BlastResult: time.Minute}

	cfg := NewRunConfig(
		"data/tasks.json",
		mustMask(t, "001000"),
		WithModel("openai/gpt-4o"),
		WithExecutor("mock"),
		WithOutputRoot("out"),
		WithAPI("http://localhost/v1", 5*time.Second),
		WithLimits(limits),
		WithDelays(delays),
		WithAllowedHosts("localhost"),
		WithTaskFilters("gene_*"),
		WithVerbose(true),
		WithSessionLogPath("logs/session.jsonl"),
	)

	if cfg.Model() != "openai/gpt-4o" {
		t.Fatalf("Model() = %q", cfg.Model())
	}
	if cfg.Executor() != "mock" {
		t.Fatalf("Executor() = %q", cfg.Executor())
	}
	if cfg.OutputRoot() != "out" {
		t.Fatalf("OutputRoot() = %q", cfg.OutputRoot())
	}
	if cfg.BaseURL() != "http://localhost/v1" || cfg.APITimeout() != 5*time.Second {
		t.Fatalf("API = %q %v", cfg.BaseURL(), cfg.APITimeout())
	}
	if cfg.Limits() != limits {
		t.Fatalf("Limits() = %+v, want %+v", cfg.Limits(), limits)
	}
	if cfg.Delays() != delays {
		t.Fatalf("Delays() = %+v, want %+v", cfg.Delays(), delays)
	}
	if len(cfg.AllowedHosts()) != 1 || cfg.AllowedHosts()[0] != "localhost" {
		t.Fatalf("AllowedHosts() = %v", cfg.AllowedHosts())
	}
	if len(cfg.TaskFilters()) != 1 || cfg.TaskFilters()[0] != "gene_*" {
		t.Fatalf("TaskFilters() = %v", cfg.TaskFilters())
	}
	if !cfg.Verbose() {
		t.Fatalf("Verbose() = false, want true")
	}
	if cfg.SessionLogPath() != "logs/session.jsonl" {
		t.Fatalf("SessionLogPath() = %q", cfg.SessionLogPath())
	}

	want := filepath.Join("out", "model=openai_gpt-4o", "file=tasks", "mask=001000")
	if cfg.OutputDir() != want {
		t.Fatalf("OutputDir() = %q, want %q", cfg.OutputDir(), want)
	}
}

func TestRunConfig_Metadata(t *testing.T) {
	cfg := NewRunConfig("tasks.json", mustMask(t, "110011"),
		WithModel("openai/gpt-4o"),
		WithExecutor("openrouter"),
		WithLimits(models.LoopLimits{MaxIterations: 10}))

	started := time.Date(2025, 5, 2, 9, 15, 30, 123456000, time.UTC)
	meta := cfg.Metadata("run-42", started)

	if meta.RunID != "run-42" {
		t.Errorf("RunID = %q", meta.RunID)
	}
	if meta.Mask != "110011" {
		t.Errorf("Mask = %q", meta.Mask)
	}
	if meta.StartedAt != "2025-05-02T09:15:30.123456" {
		t.Errorf("StartedAt = %q", meta.StartedAt)
	}
	if meta.Executor != "openrouter" {
		t.Errorf("Executor = %q", meta.Executor)
	}
	if len(meta.MaskLegend) != models.MaskSize || len(meta.MaskTranslation) != models.MaskSize {
		t.Errorf("legend/translation sizes = %d/%d", len(meta.MaskLegend), len(meta.MaskTranslation))
	}
	if meta.Limits.MaxIterations != 10 {
		t.Errorf("Limits.MaxIterations = %d", meta.Limits.MaxIterations)
	}
}

func fakeEnv(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestLoadCredentials_FromEnvironment(t *testing.T) {
	creds, err := LoadCredentials("", fakeEnv(map[string]string{
		EnvOpenRouterAPIKey: " sk-or-123 ",
		EnvOpenAIAPIKey:     "sk-openai",
	}))
	if err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	if creds.OpenRouterAPIKey != "sk-or-123" {
		t.Errorf("OpenRouterAPIKey = %q", creds.OpenRouterAPIKey)
	}
	if !creds.OpenAIKeyPresent {
		t.Error("OpenAIKeyPresent = false, want true")
	}
	if err := creds.RequireOpenRouter(); err != nil {
		t.Errorf("RequireOpenRouter() error: %v", err)
	}
}

func TestLoadCredentials_EnvFileFallback(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("OPENROUTER_API_KEY=from-file\nOPENAI_API_KEY=x\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	creds, err := LoadCredentials(envFile, fakeEnv(nil))
	if err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	if creds.OpenRouterAPIKey != "from-file" {
		t.Errorf("OpenRouterAPIKey = %q, want from-file", creds.OpenRouterAPIKey)
	}
	if !creds.OpenAIKeyPresent {
		t.Error("OpenAIKeyPresent = false, want true")
	}

	creds, err = LoadCredentials(envFile, fakeEnv(map[string]string{EnvOpenRouterAPIKey: "from-env"}))
	if err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	if creds.OpenRouterAPIKey != "from-env" {
		t.Errorf("OpenRouterAPIKey = %q, environment should win", creds.OpenRouterAPIKey)
	}
}

func TestLoadCredentials_MissingEnvFileIsIgnored(t *testing.T) {
	creds, err := LoadCredentials(filepath.Join(t.TempDir(), ".env"), fakeEnv(nil))
	if err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	err = creds.RequireOpenRouter()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("RequireOpenRouter() = %v, want ErrMissingAPIKey", err)
	}
}
