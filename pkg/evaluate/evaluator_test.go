package evaluate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"reasoning-eval/pkg/acquire"
	"reasoning-eval/pkg/dataset"
	"reasoning-eval/pkg/llm/llmtest"
	"reasoning-eval/pkg/score"
)

var fixedNow = time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

const goodAnswer = "Sunlight drives photosynthesis because chlorophyll absorbs light energy. " +
	"Therefore the plant converts carbon dioxide and water into glucose and oxygen. " +
	"This stored chemical energy then fuels growth, so the whole process links light to biomass " +
	"through several explicit steps that any careful reader can follow from start to finish."

func newTestEvaluator(fake *llmtest.Scripted) *Evaluator {
	e := NewEvaluator(acquire.New(fake, acquire.NoDelay))
	e.now = func() time.Time { return fixedNow }
	return e
}

func testUnit() Unit {
	return Unit{
		ID: "vid123",
		Items: []dataset.PromptItem{
			{PromptID: "vid123_prompt_1", Prompt: "Why do plants need light?", Domain: "science", Difficulty: "easy", Guidance: "Mention photosynthesis."},
			{PromptID: "vid123_prompt_2", Prompt: "Explain glucose production.", Domain: "science", Difficulty: "medium", Guidance: "Mention carbon dioxide."},
			{PromptID: "vid123_prompt_3", Prompt: "Link light to growth.", Domain: "science", Difficulty: "hard", Guidance: "Mention biomass."},
		},
		Golden: map[string]string{
			"vid123_prompt_1": goodAnswer,
			"vid123_prompt_3": "Completely unrelated reference about volcanoes erupting magma",
		},
		Segments: []dataset.Segment{{Text: "plants"}, {Text: "need"}, {Text: "light"}},
		Keywords: []string{"plants", "light"},
		Model:    "gemini-2.5-flash",
	}
}

func TestEvaluateScoresEveryPrompt(t *testing.T) {
	fake := llmtest.New()
	fake.Respond = func(string) llmtest.Reply { return llmtest.Reply{Text: goodAnswer} }

	u := testUnit()
	run, err := newTestEvaluator(fake).Evaluate(context.Background(), u)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(run.Records) != 3 || len(run.Rows) != 3 {
		t.Fatalf("got %d records, %d rows; want 3 and 3", len(run.Records), len(run.Rows))
	}
	if len(fake.Calls) != 3 {
		t.Errorf("calls = %d, want one accepted call per prompt", len(fake.Calls))
	}

	depth := score.ReasoningDepth(goodAnswer)
	coh := score.Coherence(goodAnswer)
	want := []score.Row{
		{VideoID: "vid123", PromptID: "vid123_prompt_1", Model: "gemini-2.5-flash", ReasoningDepth: depth, FactualAccuracy: 5, Coherence: coh},
		{VideoID: "vid123", PromptID: "vid123_prompt_2", Model: "gemini-2.5-flash", ReasoningDepth: depth, FactualAccuracy: 3, Coherence: coh},
		{VideoID: "vid123", PromptID: "vid123_prompt_3", Model: "gemini-2.5-flash", ReasoningDepth: depth, FactualAccuracy: 1, Coherence: coh},
	}
	if diff := cmp.Diff(want, run.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	for i, rec := range run.Records {
		if rec.PromptID != u.Items[i].PromptID || rec.PromptID != run.Rows[i].PromptID {
			t.Errorf("record %d prompt_id = %q, want %q", i, rec.PromptID, u.Items[i].PromptID)
		}
	}
	wantFirst := dataset.RawRecord{
		VideoID:     "vid123",
		PromptID:    "vid123_prompt_1",
		Prompt:      "Why do plants need light?",
		Domain:      "science",
		Difficulty:  "easy",
		Model:       "gemini-2.5-flash",
		Response:    goodAnswer,
		Keywords:    []string{"plants", "light"},
		Excerpt:     "plants need light",
		GeneratedAt: "2025-03-01T12:30:00Z",
		RunID:       run.ID,
	}
	if diff := cmp.Diff(wantFirst, run.Records[0]); diff != "" {
		t.Errorf("first record mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateCompositePrompt(t *testing.T) {
	fake := llmtest.New()
	fake.Respond = func(string) llmtest.Reply { return llmtest.Reply{Text: goodAnswer} }

	u := testUnit()
	u.Items = u.Items[:1]
	if _, err := newTestEvaluator(fake).Evaluate(context.Background(), u); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	want := "Context excerpt: plants need light\n\n" +
		"Task prompt: Why do plants need light?\n\n" +
		"Guidance (what golden answer should include): Mention photosynthesis.\n\n" +
		"Provide a concise paragraph answer (3-6 sentences) that addresses the task with clear multi-step reasoning."
	if diff := cmp.Diff(want, fake.Calls[0].Prompt); diff != "" {
		t.Errorf("composite prompt mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateIsolatesFailedPrompt(t *testing.T) {
	fake := llmtest.New()
	fake.Respond = func(p string) llmtest.Reply {
		if strings.Contains(p, "glucose production") {
			return llmtest.Reply{Err: errors.New("quota exceeded")}
		}
		return llmtest.Reply{Text: goodAnswer}
	}

	u := testUnit()
	u.MaxAttempts = 2
	run, err := newTestEvaluator(fake).Evaluate(context.Background(), u)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(run.Rows) != 3 || len(run.Records) != 3 {
		t.Fatalf("got %d rows, %d records; want 3 and 3", len(run.Rows), len(run.Records))
	}

	failed := run.Records[1]
	if failed.Response != "" {
		t.Errorf("failed prompt response = %q, want empty", failed.Response)
	}
	wantRow := score.Row{VideoID: "vid123", PromptID: "vid123_prompt_2", Model: "gemini-2.5-flash", ReasoningDepth: 1, FactualAccuracy: 3, Coherence: 1}
	if diff := cmp.Diff(wantRow, run.Rows[1]); diff != "" {
		t.Errorf("failed prompt row mismatch (-want +got):\n%s", diff)
	}
	if run.Records[2].Response != goodAnswer {
		t.Errorf("prompt after failure was not evaluated")
	}
	// 1 + (2 attempts + 1 correction) + 1
	if len(fake.Calls) != 5 {
		t.Errorf("calls = %d, want 5", len(fake.Calls))
	}
}

func TestEvaluateNoPrompts(t *testing.T) {
	u := testUnit()
	u.Items = nil
	_, err := newTestEvaluator(llmtest.New()).Evaluate(context.Background(), u)
	if !errors.Is(err, dataset.ErrNoPrompts) {
		t.Errorf("Evaluate() error = %v, want ErrNoPrompts", err)
	}
}

func TestEvaluateBoundsExcerpt(t *testing.T) {
	fake := llmtest.New()
	fake.Respond = func(string) llmtest.Reply { return llmtest.Reply{Text: goodAnswer} }

	u := testUnit()
	u.Items = u.Items[:1]
	u.Keywords = nil
	u.Segments = nil
	for i := 0; i < 10; i++ {
		u.Segments = append(u.Segments, dataset.Segment{Text: strings.Repeat("x", 300)})
	}
	run, err := newTestEvaluator(fake).Evaluate(context.Background(), u)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	rec := run.Records[0]
	if n := len([]rune(rec.Excerpt)); n != ExcerptLimit {
		t.Errorf("excerpt length = %d, want %d", n, ExcerptLimit)
	}
	if rec.Keywords == nil {
		t.Errorf("keywords = nil, want empty list")
	}
	// Only the first six segments ground the request.
	if got := strings.Count(fake.Calls[0].Prompt, strings.Repeat("x", 300)); got != ExcerptSegments {
		t.Errorf("prompt carries %d segments, want %d", got, ExcerptSegments)
	}
}

func TestEvaluateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestEvaluator(llmtest.New()).Evaluate(ctx, testUnit())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Evaluate() error = %v, want context.Canceled", err)
	}
}
