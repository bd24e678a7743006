package dataset

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoPrompts is returned when a unit of work has no prompt items to evaluate.
var ErrNoPrompts = errors.New("no prompts for unit")

// PromptItem is one reasoning task generated for a video.
type PromptItem struct {
	PromptID   string `json:"prompt_id"`
	Prompt     string `json:"prompt"`
	Domain     string `json:"domain"`
	Difficulty string `json:"difficulty"`
	Guidance   string `json:"golden_answer_guidance"`
}

// PromptSet is the content of prompts/[id].json.
type PromptSet struct {
	VideoID  string       `json:"video_id"`
	Title    string       `json:"title,omitempty"`
	Channel  string       `json:"channel,omitempty"`
	Keywords []string     `json:"keywords"`
	Prompts  []PromptItem `json:"prompts"`

	// Transcript is only present when the upstream generator embedded it.
	Transcript []Segment `json:"transcript,omitempty"`
}

// Segment is a single transcript cue. Upstream files store either objects
// with a "text" field or bare strings.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

func (s *Segment) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		*s = Segment{Text: text}
		return nil
	}
	type plain Segment
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = Segment(p)
	return nil
}

// Transcript is the content of data/raw/[id].json.
type Transcript struct {
	VideoID  string    `json:"video_id"`
	Title    string    `json:"title,omitempty"`
	Channel  string    `json:"channel,omitempty"`
	Segments []Segment `json:"transcript"`
}

// GoldenRecord is one line of prompts/[id]_gold.jsonl.
type GoldenRecord struct {
	PromptID     string `json:"prompt_id"`
	Prompt       string `json:"prompt"`
	Domain       string `json:"domain"`
	Difficulty   string `json:"difficulty"`
	GoldenAnswer string `json:"golden_answer"`
	GeneratedAt  string `json:"generated_at"`
	Model        string `json:"model"`
}

// RawRecord is one line of models_outputs/[id]_gemini.jsonl.
type RawRecord struct {
	VideoID     string   `json:"video_id"`
	PromptID    string   `json:"prompt_id"`
	Prompt      string   `json:"prompt"`
	Domain      string   `json:"domain"`
	Difficulty  string   `json:"difficulty"`
	Model       string   `json:"model"`
	Response    string   `json:"response"`
	Keywords    []string `json:"keywords"`
	Excerpt     string   `json:"excerpt"`
	GeneratedAt string   `json:"generated_at"`
	RunID       string   `json:"run_id,omitempty"`
}

// Excerpt joins the text of the first n segments with single spaces.
func Excerpt(segments []Segment, n int) string {
	if n > len(segments) {
		n = len(segments)
	}
	parts := make([]string, 0, n)
	for _, s := range segments[:n] {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// VideoID accepts either a bare id or a YouTube watch/short URL.
func VideoID(s string) string {
	if _, rest, ok := strings.Cut(s, "v="); ok {
		id, _, _ := strings.Cut(rest, "&")
		return id
	}
	if _, rest, ok := strings.Cut(s, "youtu.be/"); ok {
		id, _, _ := strings.Cut(rest, "?")
		return id
	}
	return s
}

// GoldenIndex maps prompt ids to golden answers. The first record for an id wins.
func GoldenIndex(records []GoldenRecord) map[string]string {
	m := make(map[string]string, len(records))
	for _, r := range records {
		if _, ok := m[r.PromptID]; ok {
			continue
		}
		m[r.PromptID] = r.GoldenAnswer
	}
	return m
}
