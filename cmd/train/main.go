package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"hardestai/internal/config"
	"hardestai/internal/eval"
	"hardestai/internal/ga"
	"hardestai/internal/logging"
	"hardestai/internal/store"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file (empty = embedded defaults)")
	generations := flag.Int("generations", 1000, "number of generations to run")
	outputDir := flag.String("output-dir", "", "directory for logs, artifacts and run history (empty = paths from config)")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		relocate(cfg, *outputDir)
	}

	logger := logging.NewSlogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *generations); err != nil {
		slog.Error("training failed", "error", err)
		os.Exit(1)
	}
}

// relocate moves every output path under dir.
func relocate(cfg *config.Config, dir string) {
	cfg.Logging.CSVPath = filepath.Join(dir, filepath.Base(cfg.Logging.CSVPath))
	cfg.Logging.JSONPath = filepath.Join(dir, filepath.Base(cfg.Logging.JSONPath))
	cfg.Logging.ArtifactsDir = filepath.Join(dir, "artifacts")
	cfg.Store.Path = filepath.Join(dir, filepath.Base(cfg.Store.Path))
}

func run(ctx context.Context, cfg *config.Config, generations int) error {
	evaluator, err := eval.NewEvaluator(cfg)
	if err != nil {
		return err
	}
	shape := evaluator.Shape()
	params := cfg.GAParams()

	slog.Info("trainer starting",
		"generations", generations,
		"population", params.Population,
		"elites", params.Elites,
		"tournament_k", params.TournamentK,
		"observation", cfg.Episode.Observation,
		"hidden", []int{shape.Hidden1, shape.Hidden2},
		"genome_size", shape.GenomeSize(),
		"budget", cfg.Episode.Budget.Mode,
	)

	// Run history. Writes outlive cancellation so the interrupted generation
	// and the final champion are still recorded.
	storeCtx := context.WithoutCancel(ctx)
	history, err := store.NewStore(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return err
	}
	if err := history.Init(storeCtx); err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	defer func() {
		if err := store.CloseIfSupported(history); err != nil {
			slog.Warn("closing store", "error", err)
		}
	}()

	snapshot, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	runID := store.NewRunID()
	if err := history.SaveRun(storeCtx, store.Run{
		ID:         runID,
		StartedAt:  time.Now().UTC(),
		Seed:       cfg.Seed,
		Population: params.Population,
		Config:     string(snapshot),
	}); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	artifacts := cfg.Logging.ArtifactsDir
	if err := cfg.WriteYAML(filepath.Join(artifacts, "config.yaml")); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	// Per-generation output
	output, err := logging.NewLogger(cfg.Logging.CSVPath, cfg.Logging.JSONPath, slog.Default())
	if err != nil {
		return err
	}
	if err := output.Init(); err != nil {
		return err
	}
	defer output.Close()

	rng := rand.New(rand.NewSource(cfg.Seed))
	pop := ga.NewPopulation(params.Population, shape.GenomeSize(), rng)

	// Track best ever so a later regression does not lose the champion
	var best logging.Champion
	haveBest := false

	startTime := time.Now()
	evaluated := 0
	for gen := 0; gen < generations; gen++ {
		// 1. Evaluate the population in one shared episode
		res, err := evaluator.EvaluateGeneration(ctx, pop, gen, nil)
		if err != nil {
			return err
		}

		// 2. Report the generation, interrupted or not
		evaluated++
		summary := logging.Summarize(pop, res)
		summary.RunID = runID
		if cfg.Logging.EveryGenSummary {
			if err := output.LogGeneration(summary); err != nil {
				slog.Warn("failed to write generation summary", "error", err)
			}
		}
		if err := history.SaveGeneration(storeCtx, runID, summary); err != nil {
			slog.Warn("failed to store generation", "generation", gen, "error", err)
		}

		// 3. Update best ever
		if champ := pop.Best(); champ != nil && (!haveBest || champ.Fitness() > best.Fitness) {
			best = logging.NewChampion(champ, gen, shape)
			haveBest = true
		}

		if res.Interrupted {
			slog.Info("training interrupted", "generation", gen, "ticks", res.Ticks)
			break
		}

		// 4. Debug: log top-N
		if gen%10 == 0 && cfg.Logging.TopNDebug > 0 {
			output.LogTopK(pop.TopK(cfg.Logging.TopNDebug), cfg.Logging.TopNDebug)
		}

		// 5. Save champion
		if every := cfg.Logging.SaveChampionEvery; every > 0 && gen > 0 && gen%every == 0 {
			champ := logging.NewChampion(pop.Best(), gen, shape)
			saveChampion(storeCtx, history, runID, filepath.Join(artifacts, fmt.Sprintf("champion_gen%d.json", gen)), champ)
		}

		// 6. Save replay
		if every := cfg.Logging.ReplayEvery; every > 0 && gen > 0 && gen%every == 0 {
			saveReplay(ctx, evaluator, pop.Best(), gen, filepath.Join(artifacts, fmt.Sprintf("replay_gen%d.json", gen)))
		}

		// 7. Create next generation
		ga.NextGeneration(pop, params, rng)
	}

	slog.Info("training complete",
		"generations", evaluated,
		"elapsed", time.Since(startTime).Round(time.Millisecond),
		"run_id", runID,
	)
	if !haveBest {
		return nil
	}

	slog.Info("best ever",
		"generation", best.Generation,
		"agent", best.AgentID,
		"fitness", best.Fitness,
		"reason", best.Outcome.Reason,
		"finished", best.Outcome.Finished,
	)
	saveChampion(storeCtx, history, runID, filepath.Join(artifacts, "champion_final.json"), best)
	return nil
}

func saveChampion(ctx context.Context, history store.Store, runID, path string, champ logging.Champion) {
	if err := logging.SaveChampion(path, champ); err != nil {
		slog.Warn("failed to save champion", "path", path, "error", err)
		return
	}
	if err := history.SaveChampion(ctx, runID, champ); err != nil {
		slog.Warn("failed to store champion", "generation", champ.Generation, "error", err)
	}
	slog.Info("champion saved", "path", path, "generation", champ.Generation, "fitness", champ.Fitness)
}

func saveReplay(ctx context.Context, evaluator *eval.Evaluator, agent *ga.Agent, gen int, path string) {
	replay, err := evaluator.EvaluateWithReplay(ctx, agent, gen)
	if err != nil {
		slog.Warn("failed to record replay", "generation", gen, "error", err)
		return
	}
	if err := replay.Save(path); err != nil {
		slog.Warn("failed to save replay", "path", path, "error", err)
		return
	}
	slog.Info("replay saved", "path", path, "moves", len(replay.Moves), "reason", replay.Outcome.Reason)
}
