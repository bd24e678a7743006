// Package golden produces reference answers for a video's prompts.
package golden

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"reasoning-eval/pkg/dataset"
	"reasoning-eval/pkg/llm"
)

var referenceTemplate = template.Must(template.New("golden").Parse(`
You are generating a **gold-standard reference answer** for a reasoning dataset.

PROMPT:
{{.Prompt}}

GUIDANCE:
{{.Guidance}}

Write a **concise, 3–6 sentence** answer that:
- follows the guidance exactly
- includes multi-step reasoning
- states causal relationships
- avoids fluff or emotional tone
- is deterministic and unambiguous
`))

func buildReferencePrompt(item dataset.PromptItem) (string, error) {
	var buf bytes.Buffer
	if err := referenceTemplate.Execute(&buf, item); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type Generator struct {
	client llm.Client
	now    func() time.Time
}

func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client, now: time.Now}
}

// Generate requests one reference answer per prompt. A failed or empty reply
// leaves that prompt's answer empty; it does not fail the set.
func (g *Generator) Generate(ctx context.Context, set *dataset.PromptSet, model string) ([]dataset.GoldenRecord, error) {
	if set == nil || len(set.Prompts) == 0 {
		return nil, dataset.ErrNoPrompts
	}

	records := make([]dataset.GoldenRecord, 0, len(set.Prompts))
	for _, item := range set.Prompts {
		log := slog.With("unit", set.VideoID, "prompt_id", item.PromptID)

		p, err := buildReferencePrompt(item)
		if err != nil {
			return nil, fmt.Errorf("build golden prompt %s: %w", item.PromptID, err)
		}

		answer, err := g.client.Generate(ctx, model, llm.TextPrompt(p))
		if err != nil {
			log.Error("golden answer generation failed", "error", err)
			answer = ""
		}
		answer = strings.TrimSpace(answer)
		if answer == "" && err == nil {
			log.Warn("empty golden answer returned")
		}

		records = append(records, dataset.GoldenRecord{
			PromptID:     item.PromptID,
			Prompt:       item.Prompt,
			Domain:       item.Domain,
			Difficulty:   item.Difficulty,
			GoldenAnswer: answer,
			GeneratedAt:  g.now().UTC().Format(time.RFC3339Nano),
			Model:        model,
		})
	}
	return records, nil
}
