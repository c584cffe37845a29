package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables holding API credentials.
const (
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
)

// DefaultEnvFile is read for credentials when present.
const DefaultEnvFile = ".env"

// ErrMissingAPIKey is returned when a required credential is not set.
var ErrMissingAPIKey = errors.New("missing API key")

// Credentials are the API keys available to a run. Values never leave this
// struct except in the Authorization header of model requests.
type Credentials struct {
	OpenRouterAPIKey string
	// OpenAIKeyPresent records whether OPENAI_API_KEY is set. The key itself
	// is never used.
	OpenAIKeyPresent bool
}

// LoadCredentials reads API keys from the environment through getenv,
// falling back to envFile when it exists. Process environment wins over the
// file. An empty envFile skips the file.
func LoadCredentials(envFile string, getenv func(string) string) (Credentials, error) {
	fileEnv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileEnv = m
		case errors.Is(err, os.ErrNotExist):
		default:
			return Credentials{}, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	lookup := func(key string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(fileEnv[key])
	}

	return Credentials{
		OpenRouterAPIKey: lookup(EnvOpenRouterAPIKey),
		OpenAIKeyPresent: lookup(EnvOpenAIAPIKey) != "",
	}, nil
}

// RequireOpenRouter returns ErrMissingAPIKey when no OpenRouter key is set.
func (c Credentials) RequireOpenRouter() error {
	if c.OpenRouterAPIKey == "" {
		return fmt.Errorf("%w: set %s in the environment or %s", ErrMissingAPIKey, EnvOpenRouterAPIKey, DefaultEnvFile)
	}
	return nil
}
