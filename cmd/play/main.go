package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"hardestai/internal/config"
	"hardestai/internal/env"
	"hardestai/internal/episode"
	"hardestai/internal/eval"
	"hardestai/internal/ga"
	"hardestai/internal/logging"
	"hardestai/internal/render"
	"hardestai/internal/store"
)

// Play modes.
const (
	modeHuman    = "human"
	modeChampion = "champion"
	modeReplay   = "replay"
	modeWatch    = "watch"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "path to config file (empty = embedded defaults)")
	mode := flag.String("mode", modeHuman, "human | champion | replay | watch")
	championPath := flag.String("champion", "artifacts/champion_final.json", "champion JSON for -mode champion")
	runID := flag.String("run", "", "load the latest champion of this run from the run store instead of -champion")
	replayPath := flag.String("replay", "", "replay JSON for -mode replay")
	tps := flag.Int("tps", 0, "ticks per second (0 = render.tps from config)")
	noTimeout := flag.Bool("no-timeout", false, "disable the tick budget in champion mode")
	noStall := flag.Bool("no-stall", false, "disable stall-culling in champion and watch modes")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *tps > 0 {
		cfg.Render.TPS = *tps
	}
	if *noStall {
		cfg.Episode.StallEvery = 0
	}

	slog.SetDefault(logging.NewSlogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))

	evaluator, err := eval.NewEvaluator(cfg)
	if err != nil {
		slog.Error("failed to build level", "error", err)
		os.Exit(1)
	}

	var s *session
	switch *mode {
	case modeHuman:
		s = humanSession(cfg, evaluator)
	case modeChampion:
		var champ *logging.Champion
		if *runID != "" {
			champ, err = storedChampion(cfg, *runID)
		} else {
			champ, err = logging.LoadChampion(*championPath)
		}
		if err == nil {
			s, err = championSession(cfg, evaluator, champ, *noTimeout)
		}
	case modeReplay:
		s, err = replaySession(evaluator, *replayPath)
	case modeWatch:
		s = watchSession(cfg, evaluator)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		slog.Error("failed to start", "mode", *mode, "error", err)
		os.Exit(1)
	}
	if err := s.restart(); err != nil {
		slog.Error("failed to start episode", "mode", *mode, "error", err)
		os.Exit(1)
	}

	level := evaluator.Level()
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(level.Width), int32(level.Height), "World's Hardest Game")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	renderer := render.NewRenderer(level, render.DefaultPalette())
	interval := float32(1) / float32(cfg.Render.TPS)
	var acc float32

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyR) {
			if err := s.restart(); err != nil {
				slog.Error("restart failed", "error", err)
				break
			}
			acc = 0
		}

		// Logical ticks are paced independently of the frame rate
		acc += rl.GetFrameTime()
		for acc >= interval {
			acc -= interval
			if err := s.tick(); err != nil {
				slog.Error("episode failed", "error", err)
				return
			}
		}

		snap := s.ep.Snapshot()
		hud := render.NewHUDData(snap)
		hud.Status = s.status
		hud.Controls = s.controls

		rl.BeginDrawing()
		renderer.Frame(snap, hud)
		rl.EndDrawing()
	}

	// Window closed: end the running episode between ticks
	if !s.ep.Done() {
		s.ep.Interrupt()
		s.finish(s.ep.Finish())
	}
}

// session owns the episode on screen and what happens when it ends.
type session struct {
	name     string
	controls string

	// begin starts a fresh episode
	begin func() (*episode.Episode, error)
	// end, if set, sees every finished episode and reports whether a new
	// one starts right away
	end func(episode.Result) bool

	ep     *episode.Episode
	status string
}

func (s *session) restart() error {
	ep, err := s.begin()
	if err != nil {
		return err
	}
	s.ep = ep
	s.status = ""
	return nil
}

func (s *session) tick() error {
	if s.ep.Done() {
		return nil
	}
	s.ep.Step()
	if !s.ep.Done() {
		return nil
	}
	if !s.finish(s.ep.Finish()) {
		return nil
	}
	status := s.status
	if err := s.restart(); err != nil {
		return err
	}
	s.status = status
	return nil
}

func (s *session) finish(res episode.Result) bool {
	if len(res.Outcomes) == 1 {
		o := res.Outcomes[0]
		s.status = fmt.Sprintf("%s after %d moves, fitness %.1f", o.Reason, o.Steps, o.Fitness)
		if o.Finished {
			s.status = fmt.Sprintf("finished in %d moves, fitness %.1f", o.Steps, o.Fitness)
		}
		slog.Info("episode over",
			"mode", s.name,
			"reason", o.Reason,
			"steps", o.Steps,
			"fitness", o.Fitness,
			"finished", o.Finished,
		)
	}
	if s.end != nil {
		return s.end(res)
	}
	return false
}

// keyboard steers with the arrow keys or WASD. Opposite keys cancel out.
func keyboard([]float64) env.Move {
	var m env.Move
	if rl.IsKeyDown(rl.KeyLeft) || rl.IsKeyDown(rl.KeyA) {
		m.DX--
	}
	if rl.IsKeyDown(rl.KeyRight) || rl.IsKeyDown(rl.KeyD) {
		m.DX++
	}
	if rl.IsKeyDown(rl.KeyUp) || rl.IsKeyDown(rl.KeyW) {
		m.DY--
	}
	if rl.IsKeyDown(rl.KeyDown) || rl.IsKeyDown(rl.KeyS) {
		m.DY++
	}
	return m
}

func humanSession(cfg *config.Config, evaluator *eval.Evaluator) *session {
	opts := cfg.EpisodeOptions(0)
	opts.Budget = 0
	opts.StallEvery = 0
	return &session{
		name:     modeHuman,
		controls: "Arrows/WASD move | R restart | Esc quit",
		begin: func() (*episode.Episode, error) {
			return evaluator.Solo(0, episode.SteerFunc(keyboard), opts), nil
		},
	}
}

// storedChampion reads the latest champion of a run from the configured store.
func storedChampion(cfg *config.Config, runID string) (*logging.Champion, error) {
	ctx := context.Background()
	history, err := store.NewStore(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := history.Init(ctx); err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	defer store.CloseIfSupported(history)

	h, err := store.LoadHistory(ctx, history, runID)
	if err != nil {
		return nil, err
	}
	attrs := []any{"run", runID, "started", h.Run.StartedAt, "seed", h.Run.Seed, "generations", len(h.Generations)}
	if best, ok := h.Best(); ok {
		attrs = append(attrs, "best_generation", best.Generation, "best_fitness", best.BestFitness)
	}
	slog.Info("loaded run", attrs...)
	return &h.Champion, nil
}

func championSession(cfg *config.Config, evaluator *eval.Evaluator, champ *logging.Champion, noTimeout bool) (*session, error) {
	if champ.Shape.Inputs != evaluator.Shape().Inputs {
		return nil, fmt.Errorf("champion expects %d inputs, observation %q gives %d",
			champ.Shape.Inputs, cfg.Episode.Observation, evaluator.Shape().Inputs)
	}
	slog.Info("loaded champion",
		"generation", champ.Generation,
		"agent", champ.AgentID,
		"fitness", champ.Fitness,
	)

	opts := cfg.EpisodeOptions(champ.Generation)
	if noTimeout {
		opts.Budget = 0
	}
	return &session{
		name:     modeChampion,
		controls: "R restart | Esc quit",
		begin: func() (*episode.Episode, error) {
			net, err := champ.Network()
			if err != nil {
				return nil, err
			}
			return evaluator.Solo(champ.AgentID, net, opts), nil
		},
	}, nil
}

func replaySession(evaluator *eval.Evaluator, path string) (*session, error) {
	if path == "" {
		return nil, errors.New("-replay is required")
	}
	replay, err := env.LoadReplay(path)
	if err != nil {
		return nil, fmt.Errorf("loading replay: %w", err)
	}
	slog.Info("loaded replay",
		"path", path,
		"generation", replay.Generation,
		"agent", replay.AgentID,
		"moves", len(replay.Moves),
		"recorded_reason", replay.Outcome.Reason,
	)
	return &session{
		name:     modeReplay,
		controls: "R restart | Esc quit",
		begin: func() (*episode.Episode, error) {
			return evaluator.Replayer(replay), nil
		},
	}, nil
}

// watchSession trains a population one rendered generation at a time.
func watchSession(cfg *config.Config, evaluator *eval.Evaluator) *session {
	params := cfg.GAParams()
	rng := rand.New(rand.NewSource(cfg.Seed))
	pop := ga.NewPopulation(params.Population, evaluator.Shape().GenomeSize(), rng)
	gen := 0

	s := &session{
		name:     modeWatch,
		controls: "R restart generation | Esc quit",
		begin: func() (*episode.Episode, error) {
			return evaluator.Begin(pop, gen)
		},
	}
	s.end = func(res episode.Result) bool {
		evaluator.Complete(pop, res)
		summary := logging.Summarize(pop, res)
		slog.Info("generation", "summary", summary)
		s.status = fmt.Sprintf("gen %d: best %.1f, %d finished", gen, summary.BestFitness, summary.Finishers)
		if res.Interrupted {
			return false
		}
		ga.NextGeneration(pop, params, rng)
		gen++
		return true
	}
	return s
}
