package evaluate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reasoning-eval/pkg/acquire"
	"reasoning-eval/pkg/dataset"
	"reasoning-eval/pkg/llm"
	"reasoning-eval/pkg/score"
)

const (
	// ExcerptSegments is how many leading transcript segments ground each request.
	ExcerptSegments = 6
	// ExcerptLimit bounds the excerpt stored in each raw record, in characters.
	ExcerptLimit = 1000
)

// Acquirer is the retry controller used for each prompt.
type Acquirer interface {
	Acquire(ctx context.Context, req acquire.Request) (string, error)
}

// Unit is one video's worth of evaluation input.
type Unit struct {
	ID       string
	Items    []dataset.PromptItem
	Golden   map[string]string // prompt_id -> golden answer; may be nil
	Segments []dataset.Segment
	Keywords []string

	Model       string
	MaxAttempts int
	MinWords    int
}

// Run is the output of evaluating one Unit. Records and Rows are index-aligned
// with the Unit's Items.
type Run struct {
	ID      string
	Records []dataset.RawRecord
	Rows    []score.Row
}

type Evaluator struct {
	acq Acquirer
	now func() time.Time
}

func NewEvaluator(acq Acquirer) *Evaluator {
	return &Evaluator{acq: acq, now: time.Now}
}

// Evaluate answers and scores every prompt of u in order. A prompt whose
// generation fails entirely gets an empty response; only an empty prompt set
// fails the run.
func (e *Evaluator) Evaluate(ctx context.Context, u Unit) (*Run, error) {
	if len(u.Items) == 0 {
		return nil, fmt.Errorf("evaluate %s: %w", u.ID, dataset.ErrNoPrompts)
	}

	run := &Run{
		ID:      uuid.NewString(),
		Records: make([]dataset.RawRecord, 0, len(u.Items)),
		Rows:    make([]score.Row, 0, len(u.Items)),
	}
	log := slog.With("unit", u.ID, "run_id", run.ID, "model", u.Model)
	log.Info("evaluation started", "prompts", len(u.Items))

	excerpt := dataset.Excerpt(u.Segments, ExcerptSegments)

	for i, item := range u.Items {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", u.ID, err)
		}

		p, err := buildAnswerPrompt(answerPromptData{
			Excerpt:  excerpt,
			Prompt:   item.Prompt,
			Guidance: item.Guidance,
		})
		if err != nil {
			return nil, fmt.Errorf("build prompt %s: %w", item.PromptID, err)
		}

		response, err := e.acq.Acquire(ctx, acquire.Request{
			Prompt:      p,
			Model:       u.Model,
			MaxAttempts: u.MaxAttempts,
			MinWords:    u.MinWords,
		})
		if err != nil {
			log.Warn("model call failed", "prompt_id", item.PromptID,
				"generation_error", llm.IsGenerationError(err), "error", err)
			response = ""
		}

		run.Records = append(run.Records, dataset.RawRecord{
			VideoID:     u.ID,
			PromptID:    item.PromptID,
			Prompt:      item.Prompt,
			Domain:      item.Domain,
			Difficulty:  item.Difficulty,
			Model:       u.Model,
			Response:    response,
			Keywords:    keywordsOrEmpty(u.Keywords),
			Excerpt:     dataset.Truncate(excerpt, ExcerptLimit),
			GeneratedAt: e.now().UTC().Format(time.RFC3339Nano),
			RunID:       run.ID,
		})

		gold, ok := u.Golden[item.PromptID]
		if !ok {
			log.Debug("no golden answer", "prompt_id", item.PromptID)
		}
		row := score.Compute(u.ID, item.PromptID, u.Model, response, gold)
		run.Rows = append(run.Rows, row)

		log.Info("prompt scored",
			"index", i+1,
			"prompt_id", item.PromptID,
			"reasoning_depth", row.ReasoningDepth,
			"factual_accuracy", row.FactualAccuracy,
			"coherence", row.Coherence)
	}

	return run, nil
}

func keywordsOrEmpty(k []string) []string {
	if k == nil {
		return []string{}
	}
	return k
}
