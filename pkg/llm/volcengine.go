package llm

import (
	"context"
	"fmt"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model/responses"
)

// VolcengineClient calls the Ark responses API.
type VolcengineClient struct {
	client *arkruntime.Client
}

func NewVolcengineClient(apiKey string) (*VolcengineClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("volcengine api key is empty")
	}
	return &VolcengineClient{client: arkruntime.NewClientWithApiKey(apiKey)}, nil
}

func (c *VolcengineClient) Generate(ctx context.Context, model string, prompts ...Prompt) (string, error) {
	var content []*responses.ContentItem
	for _, p := range prompts {
		switch v := p.(type) {
		case TextPrompt:
			content = append(content, &responses.ContentItem{
				Union: &responses.ContentItem_Text{
					Text: &responses.ContentItemText{
						Type: responses.ContentItemType_input_text,
						Text: string(v),
					},
				},
			})
		default:
			return "", fmt.Errorf("unsupported prompt type %T for volcengine client", p)
		}
	}

	req := &responses.ResponsesRequest{
		Model: model,
		Input: &responses.ResponsesInput{
			Union: &responses.ResponsesInput_ListValue{
				ListValue: &responses.InputItemList{ListValue: []*responses.InputItem{{
					Union: &responses.InputItem_InputMessage{
						InputMessage: &responses.ItemInputMessage{
							Role:    responses.MessageRole_user,
							Content: content,
						},
					},
				}}},
			},
		},
	}

	resp, err := c.client.CreateResponses(ctx, req, arkruntime.WithProjectName("reasoning-eval"))
	if err != nil {
		return "", &GenerationError{Provider: ProviderVolcengine, Model: model, Err: err}
	}

	for _, item := range resp.Output {
		if msg := item.GetOutputMessage(); msg != nil && len(msg.Content) > 0 {
			if text := msg.Content[0].GetText(); text != nil {
				return text.Text, nil
			}
		}
	}
	return "", nil
}
