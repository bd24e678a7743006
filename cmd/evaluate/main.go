package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"reasoning-eval/pkg/config"
	"reasoning-eval/pkg/dataset"
	"reasoning-eval/pkg/pipeline"
	"reasoning-eval/pkg/workspace"
)

func main() {
	videoID := flag.String("video-id", "", "Video ID or URL to evaluate")
	model := flag.String("model", "", "Model to evaluate (default LLM_MODEL)")
	maxAttempts := flag.Int("max-attempts", 0, "Attempts per prompt before the correction request (default MAX_ATTEMPTS)")
	minWords := flag.Int("min-words", 0, "Minimum words for an accepted answer (default MIN_WORDS)")
	xlsx := flag.Bool("xlsx", false, "Also write the score table as .xlsx")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	id := dataset.VideoID(*videoID)
	if id == "" {
		log.Fatal("-video-id is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *maxAttempts > 0 {
		cfg.MaxAttempts = *maxAttempts
	}
	if *minWords > 0 {
		cfg.MinWords = *minWords
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := cfg.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	p := pipeline.New(workspace.New(cfg.Workspace()), client, cfg.Delay())
	res, err := p.Evaluate(ctx, id, pipeline.EvaluateOptions{
		Model:       cfg.Model,
		MaxAttempts: cfg.MaxAttempts,
		MinWords:    cfg.MinWords,
		XLSX:        *xlsx,
	})
	if err != nil {
		log.Fatalf("Evaluation of %s failed: %v", id, err)
	}

	log.Printf("Wrote raw outputs to %s", res.RawPath)
	log.Printf("Wrote scores to %s", res.ResultsPath)
	log.Printf("Run %s: %d prompts, mean reasoning_depth=%.2f factual_accuracy=%.2f coherence=%.2f",
		res.RunID, res.Summary.Count, res.Summary.ReasoningDepth, res.Summary.FactualAccuracy, res.Summary.Coherence)
}
