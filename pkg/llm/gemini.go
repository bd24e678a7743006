package llm

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// GeminiClient talks to the Gemini API through google.golang.org/genai.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, model string, prompts ...Prompt) (string, error) {
	var parts []*genai.Part
	for _, p := range prompts {
		switch v := p.(type) {
		case TextPrompt:
			parts = append(parts, genai.NewPartFromText(string(v)))
		default:
			return "", fmt.Errorf("unsupported prompt type %T for gemini client", p)
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, []*genai.Content{{Parts: parts}}, nil)
	if err != nil {
		return "", &GenerationError{Provider: ProviderGemini, Model: model, Err: err}
	}

	if usage := resp.UsageMetadata; usage != nil {
		slog.Debug("LLM Usage",
			slog.String("model", model),
			slog.Int("prompt_tokens", int(usage.PromptTokenCount)),
			slog.Int("output_tokens", int(usage.CandidatesTokenCount)),
			slog.Int("total_tokens", int(usage.TotalTokenCount)))
	}

	return resp.Text(), nil
}
