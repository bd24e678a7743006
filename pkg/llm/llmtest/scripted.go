// Package llmtest provides a deterministic llm.Client for tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"reasoning-eval/pkg/llm"
)

// Reply is one scripted outcome. A non-nil Err is returned as a *llm.GenerationError.
type Reply struct {
	Text string
	Err  error
}

// Call records one Generate invocation.
type Call struct {
	Model  string
	Prompt string
}

// ErrExhausted is returned once the script has no replies left.
var ErrExhausted = errors.New("llmtest: script exhausted")

// Scripted replays Replies in order and records every call.
type Scripted struct {
	mu      sync.Mutex
	Replies []Reply
	Calls   []Call

	// Respond, when set, is consulted instead of Replies.
	Respond func(prompt string) Reply
}

func New(replies ...Reply) *Scripted {
	return &Scripted{Replies: replies}
}

func (s *Scripted) Generate(_ context.Context, model string, prompts ...llm.Prompt) (string, error) {
	var b strings.Builder
	for _, p := range prompts {
		if t, ok := p.(llm.TextPrompt); ok {
			b.WriteString(string(t))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, Call{Model: model, Prompt: b.String()})

	var r Reply
	switch {
	case s.Respond != nil:
		r = s.Respond(b.String())
	case len(s.Replies) == 0:
		r = Reply{Err: ErrExhausted}
	default:
		r, s.Replies = s.Replies[0], s.Replies[1:]
	}
	if r.Err != nil {
		return "", &llm.GenerationError{Provider: "scripted", Model: model, Err: r.Err}
	}
	return r.Text, nil
}

// Prompts returns the prompt text of every recorded call.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		out[i] = c.Prompt
	}
	return out
}
