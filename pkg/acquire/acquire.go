// Package acquire obtains an answer from a language model under a bounded
// retry budget, refining each retry on the previous output and falling back
// to a single self-correction request when no attempt passes the quality gate.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"reasoning-eval/pkg/llm"
)

const (
	DefaultMaxAttempts = 3
	DefaultMinWords    = 30
)

// placeholders mark a reply in which the model declined to answer.
var placeholders = []string{
	"i'm not sure",
	"i do not know",
	"cannot determine",
	"no data",
	"unable to",
}

// errRejected is recorded for attempts that returned text failing Accept.
var errRejected = errors.New("response too short or placeholder")

// Request describes one acquisition. Zero MaxAttempts and MinWords take the defaults.
type Request struct {
	Prompt      string
	Model       string
	MaxAttempts int
	MinWords    int
}

type Acquirer struct {
	client llm.Client
	delay  Delay
}

// New returns an Acquirer. A nil delay waits with DefaultDelay.
func New(client llm.Client, delay Delay) *Acquirer {
	if delay == nil {
		delay = DefaultDelay()
	}
	return &Acquirer{client: client, delay: delay}
}

// Accept reports whether text is long enough and free of placeholder phrases.
func Accept(text string, minWords int) bool {
	cleaned := strings.TrimSpace(text)
	if len(strings.Fields(cleaned)) < minWords {
		return false
	}
	lower := strings.ToLower(cleaned)
	for _, p := range placeholders {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}

// Acquire returns the first accepted response, trimmed. When every attempt
// is rejected or fails it issues one self-correction request and returns its
// trimmed text, or else the last non-empty raw response seen. A
// *llm.GenerationError is returned only if no call ever produced text and the
// self-correction request failed.
func (a *Acquirer) Acquire(ctx context.Context, req Request) (string, error) {
	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	minWords := req.MinWords
	if minWords <= 0 {
		minWords = DefaultMinWords
	}

	var (
		prev     string // raw output of the most recent successful call
		lastText string // most recent non-empty raw output
		lastErr  error
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		prompt := req.Prompt
		if attempt > 1 {
			prompt = refinePrompt(prev, req.Prompt)
		}

		out, err := a.client.Generate(ctx, req.Model, llm.TextPrompt(prompt))
		switch {
		case err != nil:
			lastErr = err
			slog.Warn("generation attempt failed", "model", req.Model, "attempt", attempt, "error", err)
		default:
			prev = out
			if strings.TrimSpace(out) != "" {
				lastText = out
			}
			if Accept(out, minWords) {
				slog.Debug("response accepted", "model", req.Model, "attempt", attempt)
				return strings.TrimSpace(out), nil
			}
			lastErr = errRejected
			slog.Debug("response rejected", "model", req.Model, "attempt", attempt,
				"words", len(strings.Fields(out)))
		}

		if attempt < maxAttempts {
			a.delay(ctx, attempt)
		}
	}

	slog.Info("retry budget exhausted, requesting self-correction",
		"model", req.Model, "attempts", maxAttempts, "last_error", lastErr)

	corrected, err := a.client.Generate(ctx, req.Model, llm.TextPrompt(correctionPrompt(req.Prompt)))
	if err != nil {
		if lastText != "" {
			slog.Warn("self-correction failed, using last response", "model", req.Model, "error", err)
			return lastText, nil
		}
		if llm.IsGenerationError(err) {
			return "", err
		}
		return "", &llm.GenerationError{Provider: "acquire", Model: req.Model, Err: fmt.Errorf("self-correction: %w", err)}
	}
	if c := strings.TrimSpace(corrected); c != "" {
		return c, nil
	}
	return lastText, nil
}
