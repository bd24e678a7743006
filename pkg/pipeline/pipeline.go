// Package pipeline wires the workspace files to golden answer generation and
// evaluation for one unit at a time.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"reasoning-eval/pkg/acquire"
	"reasoning-eval/pkg/evaluate"
	"reasoning-eval/pkg/golden"
	"reasoning-eval/pkg/llm"
	"reasoning-eval/pkg/score"
	"reasoning-eval/pkg/workspace"
)

type Pipeline struct {
	ws        *workspace.Workspace
	generator *golden.Generator
	evaluator *evaluate.Evaluator
}

func New(ws *workspace.Workspace, client llm.Client, delay acquire.Delay) *Pipeline {
	return &Pipeline{
		ws:        ws,
		generator: golden.NewGenerator(client),
		evaluator: evaluate.NewEvaluator(acquire.New(client, delay)),
	}
}

// Golden generates and saves reference answers for id.
func (p *Pipeline) Golden(ctx context.Context, id, model string) (string, error) {
	set, err := p.ws.LoadPromptSet(id)
	if err != nil {
		return "", err
	}
	records, err := p.generator.Generate(ctx, set, model)
	if err != nil {
		return "", fmt.Errorf("golden answers for %s: %w", id, err)
	}
	if err := p.ws.SaveGolden(id, records); err != nil {
		return "", err
	}
	path := p.ws.Config.GoldenPath(id)
	slog.Info("golden answers saved", "unit", id, "path", path, "count", len(records))
	return path, nil
}

type EvaluateOptions struct {
	Model       string
	MaxAttempts int
	MinWords    int
	XLSX        bool
}

type Result struct {
	RunID       string
	RawPath     string
	ResultsPath string
	Summary     score.Summary
}

// Evaluate runs the evaluator over id's prompt set and replaces its raw
// output log and score table.
func (p *Pipeline) Evaluate(ctx context.Context, id string, opts EvaluateOptions) (*Result, error) {
	set, err := p.ws.LoadPromptSet(id)
	if err != nil {
		return nil, err
	}
	segments, err := p.ws.LoadSegments(id, set)
	if err != nil {
		return nil, err
	}
	gold, err := p.ws.LoadGolden(id)
	if err != nil {
		return nil, err
	}

	run, err := p.evaluator.Evaluate(ctx, evaluate.Unit{
		ID:          id,
		Items:       set.Prompts,
		Golden:      gold,
		Segments:    segments,
		Keywords:    set.Keywords,
		Model:       opts.Model,
		MaxAttempts: opts.MaxAttempts,
		MinWords:    opts.MinWords,
	})
	if err != nil {
		return nil, err
	}

	if err := p.ws.SaveRawRecords(id, run.Records); err != nil {
		return nil, err
	}
	if err := p.ws.SaveScores(id, run.Rows); err != nil {
		return nil, err
	}
	if opts.XLSX {
		if err := p.ws.SaveScoresXLSX(id, run.Rows); err != nil {
			return nil, err
		}
	}

	return &Result{
		RunID:       run.ID,
		RawPath:     p.ws.Config.RawOutputPath(id),
		ResultsPath: p.ws.Config.ResultsPath(id),
		Summary:     score.Summarize(run.Rows),
	}, nil
}
