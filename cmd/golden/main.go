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
	videoID := flag.String("video-id", "", "Video ID or URL to generate golden answers for")
	model := flag.String("model", "", "Model that writes the reference answers (default LLM_MODEL)")
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
	path, err := p.Golden(ctx, id, cfg.Model)
	if err != nil {
		log.Fatalf("Golden answers for %s failed: %v", id, err)
	}
	log.Printf("Saved golden answers to %s", path)
}
