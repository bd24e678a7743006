// Package score turns a model response and an optional reference answer into
// three coarse 1-5 scores. The heuristics are lexical proxies; their counting
// rules and thresholds are fixed so results stay comparable across runs.
package score

import (
	"strings"
	"unicode/utf8"
)

const (
	Min = 1
	Max = 5

	// Neutral is returned by FactualAccuracy when there is nothing to compare.
	Neutral = 3
)

var connectors = []string{"because", "therefore", "thus", "hence", "so", "thereby", "inference", "imply"}

// tokenTrim is stripped from both ends of each word before overlap matching.
const tokenTrim = ".,;:()\"'"

// Row is the score table line for one prompt.
type Row struct {
	VideoID         string `json:"video_id"`
	PromptID        string `json:"prompt_id"`
	Model           string `json:"model"`
	ReasoningDepth  int    `json:"reasoning_depth"`
	FactualAccuracy int    `json:"factual_accuracy"`
	Coherence       int    `json:"coherence"`
}

// Compute scores response against reference, which may be empty.
func Compute(videoID, promptID, model, response, reference string) Row {
	return Row{
		VideoID:         videoID,
		PromptID:        promptID,
		Model:           model,
		ReasoningDepth:  ReasoningDepth(response),
		FactualAccuracy: FactualAccuracy(response, reference),
		Coherence:       Coherence(response),
	}
}

func clamp(v int) int {
	return max(Min, min(Max, v))
}

// sentenceCount counts non-blank period-delimited segments.
func sentenceCount(text string) int {
	n := 0
	for _, s := range strings.Split(text, ".") {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

// ReasoningDepth counts connective substrings plus one point per sentence
// beyond the first.
func ReasoningDepth(text string) int {
	if text == "" {
		return Min
	}
	lower := strings.ToLower(text)
	n := 0
	for _, c := range connectors {
		n += strings.Count(lower, c)
	}
	sentences := max(1, sentenceCount(text))
	return clamp(1 + min(4, n+sentences-1))
}

func tokens(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		if utf8.RuneCountInString(w) <= 3 {
			continue
		}
		set[strings.ToLower(strings.Trim(w, tokenTrim))] = struct{}{}
	}
	return set
}

// FactualAccuracy buckets the share of reference tokens (words longer than
// three characters) that also appear in text.
func FactualAccuracy(text, reference string) int {
	if text == "" || reference == "" {
		return Neutral
	}
	ref := tokens(reference)
	if len(ref) == 0 {
		return Neutral
	}
	out := tokens(text)
	hits := 0
	for tok := range ref {
		if _, ok := out[tok]; ok {
			hits++
		}
	}
	ratio := float64(hits) / float64(len(ref))
	switch {
	case ratio > 0.6:
		return 5
	case ratio > 0.4:
		return 4
	case ratio > 0.25:
		return 3
	case ratio > 0.1:
		return 2
	default:
		return 1
	}
}

// Coherence rates structure from sentence and word counts.
func Coherence(text string) int {
	if text == "" {
		return Min
	}
	sentences := sentenceCount(text)
	words := len(strings.Fields(text))
	switch {
	case sentences >= 3 && words > 40:
		return 5
	case sentences >= 2 && words > 20:
		return 4
	case sentences == 1 && words > 10:
		return 3
	case words > 5:
		return 2
	default:
		return 1
	}
}

// Summary holds per-metric means over a score table.
type Summary struct {
	Count           int     `json:"count"`
	ReasoningDepth  float64 `json:"reasoning_depth"`
	FactualAccuracy float64 `json:"factual_accuracy"`
	Coherence       float64 `json:"coherence"`
}

func Summarize(rows []Row) Summary {
	s := Summary{Count: len(rows)}
	if len(rows) == 0 {
		return s
	}
	for _, r := range rows {
		s.ReasoningDepth += float64(r.ReasoningDepth)
		s.FactualAccuracy += float64(r.FactualAccuracy)
		s.Coherence += float64(r.Coherence)
	}
	n := float64(len(rows))
	s.ReasoningDepth /= n
	s.FactualAccuracy /= n
	s.Coherence /= n
	return s
}
