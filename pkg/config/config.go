// Package config loads pipeline settings from the environment and .env files.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"reasoning-eval/pkg/acquire"
	"reasoning-eval/pkg/llm"
	"reasoning-eval/pkg/workspace"
)

// ErrMissingKey is returned by Validate when the selected provider has no API key.
var ErrMissingKey = errors.New("api key not set")

type Config struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	ArkAPIKey    string `env:"ARK_API_KEY"`

	Provider string `env:"LLM_PROVIDER" envDefault:"gemini"`
	Model    string `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`

	DataDir    string `env:"DATA_DIR" envDefault:"data"`
	PromptsDir string `env:"PROMPTS_DIR" envDefault:"prompts"`
	OutputsDir string `env:"OUTPUTS_DIR" envDefault:"models_outputs"`

	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	MinWords    int           `env:"MIN_WORDS" envDefault:"30"`
	BackoffBase float64       `env:"BACKOFF_BASE" envDefault:"1.5"`
	RetryPause  time.Duration `env:"RETRY_PAUSE" envDefault:"600ms"`

	// CallTimeout bounds each generation request; zero leaves it unbounded.
	CallTimeout time.Duration `env:"CALL_TIMEOUT" envDefault:"0s"`
}

// Load reads the given .env files (default ".env"; missing files are ignored)
// and then parses the process environment. Variables already set in the
// environment take precedence over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// APIKey returns the key for the configured provider. The Gemini providers
// fall back to GOOGLE_API_KEY.
func (c *Config) APIKey() string {
	switch c.Provider {
	case llm.ProviderVolcengine:
		return c.ArkAPIKey
	default:
		if c.GeminiAPIKey != "" {
			return c.GeminiAPIKey
		}
		return c.GoogleAPIKey
	}
}

func (c *Config) Validate() error {
	switch c.Provider {
	case llm.ProviderGemini, llm.ProviderGoogleAI, llm.ProviderVolcengine:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}
	if c.APIKey() == "" {
		return fmt.Errorf("%s: %w", c.Provider, ErrMissingKey)
	}
	if c.Model == "" {
		return errors.New("LLM_MODEL is empty")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	if c.MinWords < 1 {
		return fmt.Errorf("MIN_WORDS must be at least 1, got %d", c.MinWords)
	}
	if c.BackoffBase < 1 {
		return fmt.Errorf("BACKOFF_BASE must be at least 1, got %v", c.BackoffBase)
	}
	return nil
}

func (c *Config) Workspace() workspace.Config {
	return workspace.Config{
		DataDir:    c.DataDir,
		PromptsDir: c.PromptsDir,
		OutputsDir: c.OutputsDir,
	}
}

func (c *Config) Delay() acquire.Delay {
	return acquire.ExponentialDelay(c.BackoffBase, c.RetryPause)
}

// NewClient builds the configured provider's client, bounded by CallTimeout.
func (c *Config) NewClient(ctx context.Context) (llm.Client, error) {
	client, err := llm.New(ctx, c.Provider, c.APIKey())
	if err != nil {
		return nil, err
	}
	return llm.WithTimeout(client, c.CallTimeout), nil
}
