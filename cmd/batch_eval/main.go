package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"reasoning-eval/pkg/config"
	"reasoning-eval/pkg/dataset"
	"reasoning-eval/pkg/pipeline"
	"reasoning-eval/pkg/workspace"
)

func main() {
	idsFile := flag.String("file", "", "File with one video ID or URL per line (default: every prompt set)")
	model := flag.String("model", "", "Model to evaluate (default LLM_MODEL)")
	concurrency := flag.Int("concurrency", 4, "Number of units evaluated concurrently")
	skipGolden := flag.Bool("skip-golden", false, "Do not generate missing golden answers")
	xlsx := flag.Bool("xlsx", false, "Also write each score table as .xlsx")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
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

	ws := workspace.New(cfg.Workspace())
	ids, err := unitIDs(ws, *idsFile, flag.Args())
	if err != nil {
		log.Fatalf("Failed to list units: %v", err)
	}
	log.Printf("Found %d units to evaluate", len(ids))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := cfg.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	p := pipeline.New(ws, client, cfg.Delay())

	var (
		mu     sync.Mutex
		done   int
		failed []string
	)
	var g errgroup.Group
	g.SetLimit(max(*concurrency, 1))
	for _, id := range ids {
		g.Go(func() error {
			if !*skipGolden && !ws.HasGolden(id) {
				if _, err := p.Golden(ctx, id, cfg.Model); err != nil {
					// Evaluation still runs; missing references score neutral.
					log.Printf("[%s] Golden answers failed: %v", id, err)
				}
			}
			res, err := p.Evaluate(ctx, id, pipeline.EvaluateOptions{
				Model:       cfg.Model,
				MaxAttempts: cfg.MaxAttempts,
				MinWords:    cfg.MinWords,
				XLSX:        *xlsx,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[%s] Evaluation failed: %v", id, err)
				failed = append(failed, id)
				return nil
			}
			done++
			log.Printf("[%s] Saved %d scores to %s", id, res.Summary.Count, res.ResultsPath)
			return nil
		})
	}
	g.Wait()

	log.Printf("Done. Evaluated %d of %d units.", done, len(ids))
	if len(failed) > 0 {
		log.Printf("Failed: %s", strings.Join(failed, ", "))
		os.Exit(1)
	}
}

// unitIDs returns the IDs named on the command line or in file, falling back
// to every prompt set in the workspace.
func unitIDs(ws *workspace.Workspace, file string, args []string) ([]string, error) {
	var ids []string
	for _, a := range args {
		if id := dataset.VideoID(a); id != "" {
			ids = append(ids, id)
		}
	}
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if id := dataset.VideoID(line); id != "" {
				ids = append(ids, id)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}
	if len(ids) > 0 {
		return ids, nil
	}
	return ws.ListUnits()
}
