package acquire

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"reasoning-eval/pkg/llm"
	"reasoning-eval/pkg/llm/llmtest"
)

func words(n int, w string) string {
	return strings.TrimSpace(strings.Repeat(w+" ", n))
}

func TestAccept(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		minWords int
		want     bool
	}{
		{"long enough", words(30, "fact"), 30, true},
		{"too short", words(29, "fact"), 30, false},
		{"surrounding space ignored", "  " + words(30, "fact") + "\n", 30, true},
		{"placeholder", words(30, "fact") + " I'm Not Sure", 30, false},
		{"cannot determine", "We cannot determine " + words(30, "x"), 30, false},
		{"no data", words(30, "x") + " there is no data", 30, false},
		{"unable to", "Unable to answer " + words(30, "x"), 30, false},
		{"i do not know", "I do not know " + words(30, "x"), 30, false},
		{"empty", "", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accept(tt.text, tt.minWords); got != tt.want {
				t.Errorf("Accept() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAcquireReturnsFirstAccepted(t *testing.T) {
	good := words(40, "because")
	for accepted := 1; accepted <= 3; accepted++ {
		replies := make([]llmtest.Reply, 0, 5)
		for i := 1; i < accepted; i++ {
			replies = append(replies, llmtest.Reply{Text: "too short"})
		}
		replies = append(replies, llmtest.Reply{Text: "  " + good + "  "}, llmtest.Reply{Text: "unused"})

		fake := llmtest.New(replies...)
		got, err := New(fake, NoDelay).Acquire(context.Background(), Request{
			Prompt: "Explain X", Model: "m", MaxAttempts: 3, MinWords: 30,
		})
		if err != nil {
			t.Fatalf("accepted=%d: Acquire() error = %v", accepted, err)
		}
		if got != good {
			t.Errorf("accepted=%d: Acquire() = %q, want trimmed accepted text", accepted, got)
		}
		if len(fake.Calls) != accepted {
			t.Errorf("accepted=%d: calls = %d, want %d", accepted, len(fake.Calls), accepted)
		}
	}
}

func TestAcquireRefinesOnPreviousOutput(t *testing.T) {
	short := "a five word short answer"
	long := words(49, "step") + " therefore"
	fake := llmtest.New(llmtest.Reply{Text: short}, llmtest.Reply{Text: long})

	got, err := New(fake, NoDelay).Acquire(context.Background(), Request{
		Prompt: "Explain X", Model: "gemini-2.5-flash", MaxAttempts: 3, MinWords: 30,
	})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got != long {
		t.Errorf("Acquire() = %q, want attempt 2 text", got)
	}
	if len(fake.Calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(fake.Calls))
	}
	if fake.Calls[0].Prompt != "Explain X" {
		t.Errorf("first prompt = %q, want original prompt", fake.Calls[0].Prompt)
	}
	if diff := cmp.Diff(refinePrompt(short, "Explain X"), fake.Calls[1].Prompt); diff != "" {
		t.Errorf("refinement prompt mismatch (-want +got):\n%s", diff)
	}
	for _, c := range fake.Calls {
		if c.Model != "gemini-2.5-flash" {
			t.Errorf("model = %q, want gemini-2.5-flash", c.Model)
		}
	}
}

func TestAcquireFallsBackToSelfCorrection(t *testing.T) {
	fake := llmtest.New(
		llmtest.Reply{Text: "short one"},
		llmtest.Reply{Text: "short two"},
		llmtest.Reply{Text: "short three"},
		llmtest.Reply{Text: "  corrected answer  "},
	)
	got, err := New(fake, NoDelay).Acquire(context.Background(), Request{Prompt: "P", MaxAttempts: 3, MinWords: 30})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got != "corrected answer" {
		t.Errorf("Acquire() = %q, want %q", got, "corrected answer")
	}
	if len(fake.Calls) != 4 {
		t.Fatalf("calls = %d, want max_attempts+1 = 4", len(fake.Calls))
	}
	if want := correctionPrompt("P"); fake.Calls[3].Prompt != want {
		t.Errorf("terminal prompt = %q, want %q", fake.Calls[3].Prompt, want)
	}
	if !strings.Contains(fake.Calls[3].Prompt, "SELF-CORRECTION INSTRUCTION") {
		t.Errorf("terminal prompt lacks self-correction instruction")
	}
	if diff := cmp.Diff(refinePrompt("short two", "P"), fake.Calls[2].Prompt); diff != "" {
		t.Errorf("third attempt should refine the second (-want +got):\n%s", diff)
	}
}

func TestAcquireEmptyCorrectionReturnsLastText(t *testing.T) {
	fake := llmtest.New(
		llmtest.Reply{Text: "first short"},
		llmtest.Reply{Text: "second short "},
		llmtest.Reply{Text: "   "},
	)
	got, err := New(fake, NoDelay).Acquire(context.Background(), Request{Prompt: "P", MaxAttempts: 2, MinWords: 30})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got != "second short " {
		t.Errorf("Acquire() = %q, want last raw response", got)
	}
}

func TestAcquireAllAttemptsFailButCorrectionAnswers(t *testing.T) {
	boom := errors.New("unavailable")
	fake := llmtest.New(
		llmtest.Reply{Err: boom},
		llmtest.Reply{Err: boom},
		llmtest.Reply{Err: boom},
		llmtest.Reply{Text: "finally"},
	)
	got, err := New(fake, NoDelay).Acquire(context.Background(), Request{Prompt: "P", MaxAttempts: 3, MinWords: 30})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got != "finally" {
		t.Errorf("Acquire() = %q, want %q", got, "finally")
	}
	// A failed first attempt leaves nothing to refine on.
	if diff := cmp.Diff(refinePrompt("", "P"), fake.Calls[1].Prompt); diff != "" {
		t.Errorf("refinement prompt mismatch (-want +got):\n%s", diff)
	}
}

func TestAcquireCorrectionFailsAfterSomeText(t *testing.T) {
	boom := errors.New("unavailable")
	fake := llmtest.New(
		llmtest.Reply{Text: "partial"},
		llmtest.Reply{Err: boom},
		llmtest.Reply{Err: boom},
	)
	got, err := New(fake, NoDelay).Acquire(context.Background(), Request{Prompt: "P", MaxAttempts: 2, MinWords: 30})
	if err != nil {
		t.Fatalf("Acquire() error = %v, want nil", err)
	}
	if got != "partial" {
		t.Errorf("Acquire() = %q, want %q", got, "partial")
	}
}

func TestAcquireEverythingFails(t *testing.T) {
	boom := errors.New("unavailable")
	fake := llmtest.New(
		llmtest.Reply{Err: boom},
		llmtest.Reply{Err: boom},
		llmtest.Reply{Err: boom},
	)
	_, err := New(fake, NoDelay).Acquire(context.Background(), Request{Prompt: "P", MaxAttempts: 2, MinWords: 30})
	if !llm.IsGenerationError(err) {
		t.Fatalf("Acquire() error = %v, want GenerationError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("errors.Is(err, boom) = false, want true")
	}
	if len(fake.Calls) != 3 {
		t.Errorf("calls = %d, want 3", len(fake.Calls))
	}
}

func TestAcquireEmptyEverywhereReturnsEmpty(t *testing.T) {
	fake := llmtest.New(llmtest.Reply{}, llmtest.Reply{})
	got, err := New(fake, NoDelay).Acquire(context.Background(), Request{Prompt: "P", MaxAttempts: 1, MinWords: 30})
	if err != nil || got != "" {
		t.Errorf("Acquire() = %q, %v; want empty, nil", got, err)
	}
}

func TestAcquireDelaysOnlyBetweenAttempts(t *testing.T) {
	var delays []int
	record := func(_ context.Context, attempt int) { delays = append(delays, attempt) }

	fake := llmtest.New(
		llmtest.Reply{Text: "a"}, llmtest.Reply{Text: "b"}, llmtest.Reply{Text: "c"}, llmtest.Reply{Text: "d"},
	)
	if _, err := New(fake, record).Acquire(context.Background(), Request{Prompt: "P", MaxAttempts: 3, MinWords: 30}); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if diff := cmp.Diff([]int{1, 2}, delays); diff != "" {
		t.Errorf("delays mismatch (-want +got):\n%s", diff)
	}
}

func TestAcquireDefaults(t *testing.T) {
	fake := llmtest.New(
		llmtest.Reply{Text: words(29, "x")},
		llmtest.Reply{Text: words(29, "x")},
		llmtest.Reply{Text: words(30, "x")},
	)
	got, err := New(fake, NoDelay).Acquire(context.Background(), Request{Prompt: "P"})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got != words(30, "x") || len(fake.Calls) != DefaultMaxAttempts {
		t.Errorf("Acquire() = %q after %d calls; want 30 words after %d calls", got, len(fake.Calls), DefaultMaxAttempts)
	}
}

func TestExponentialDelayHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	ExponentialDelay(10, time.Hour)(ctx, 3)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("ExponentialDelay blocked for %v on a cancelled context", elapsed)
	}
}
