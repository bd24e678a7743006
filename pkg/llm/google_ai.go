package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GoogleAIClient uses the older generative-ai-go SDK. Kept for environments
// pinned to it; selected with LLM_PROVIDER=googleai.
type GoogleAIClient struct {
	client *genai.Client
}

func NewGoogleAIClient(ctx context.Context, apiKey string) (*GoogleAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google ai api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create google ai client: %w", err)
	}
	return &GoogleAIClient{client: client}, nil
}

func (c *GoogleAIClient) Generate(ctx context.Context, model string, prompts ...Prompt) (string, error) {
	var parts []genai.Part
	for _, p := range prompts {
		switch v := p.(type) {
		case TextPrompt:
			parts = append(parts, genai.Text(v))
		default:
			return "", fmt.Errorf("unsupported prompt type %T for google ai client", p)
		}
	}

	resp, err := c.client.GenerativeModel(model).GenerateContent(ctx, parts...)
	if err != nil {
		return "", &GenerationError{Provider: ProviderGoogleAI, Model: model, Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			result += string(txt)
		}
	}
	return result, nil
}
