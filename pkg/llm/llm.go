package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Prompt is one input part of a generation request.
type Prompt interface {
	prompt()
}

// TextPrompt is a plain text input part.
type TextPrompt string

func (TextPrompt) prompt() {}

// Client issues a single generation request and returns the model's text.
// Implementations never retry and never inspect the content; a reply with no
// text yields "" and a nil error.
type Client interface {
	Generate(ctx context.Context, model string, prompts ...Prompt) (string, error)
}

// GenerationError reports that the generation backend failed or was unreachable.
type GenerationError struct {
	Provider string
	Model    string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generate (model %s): %v", e.Provider, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsGenerationError reports whether err wraps a *GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

// Provider names accepted by New.
const (
	ProviderGemini     = "gemini"
	ProviderGoogleAI   = "googleai"
	ProviderVolcengine = "volcengine"
)

// New returns the client for the named provider.
func New(ctx context.Context, provider, apiKey string) (Client, error) {
	var (
		c   Client
		err error
	)
	switch provider {
	case ProviderGemini, "":
		c, err = NewGeminiClient(ctx, apiKey)
	case ProviderGoogleAI:
		c, err = NewGoogleAIClient(ctx, apiKey)
	case ProviderVolcengine:
		c, err = NewVolcengineClient(apiKey)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

type timeoutClient struct {
	Client
	timeout time.Duration
}

// WithTimeout bounds every Generate call on c. A non-positive timeout returns c unchanged.
func WithTimeout(c Client, timeout time.Duration) Client {
	if timeout <= 0 {
		return c
	}
	return &timeoutClient{Client: c, timeout: timeout}
}

func (c *timeoutClient) Generate(ctx context.Context, model string, prompts ...Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.Client.Generate(ctx, model, prompts...)
}
