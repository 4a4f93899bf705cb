package logging

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"hardestai/internal/env"
	"hardestai/internal/episode"
	"hardestai/internal/ga"
)

// GenerationSummary holds per-generation statistics
type GenerationSummary struct {
	RunID       string  `csv:"run_id" json:"run_id,omitempty"`
	Generation  int     `csv:"generation" json:"generation"`
	Budget      int     `csv:"budget" json:"budget"`
	Ticks       int     `csv:"ticks" json:"ticks"`
	Population  int     `csv:"population" json:"population"`
	Alive       int     `csv:"alive" json:"alive"` // live when the episode ended
	BestAgent   int     `csv:"best_agent" json:"best_agent"`
	BestFitness float64 `csv:"best_fitness" json:"best_fitness"`
	MeanFitness float64 `csv:"mean_fitness" json:"mean_fitness"`
	StdFitness  float64 `csv:"std_fitness" json:"std_fitness"`
	P50Fitness  float64 `csv:"p50_fitness" json:"p50_fitness"`
	P90Fitness  float64 `csv:"p90_fitness" json:"p90_fitness"`
	Finishers   int     `csv:"finishers" json:"finishers"`
	Collided    int     `csv:"collided" json:"collided"`
	Stalled     int     `csv:"stalled" json:"stalled"`
	TimedOut    int     `csv:"timed_out" json:"timed_out"`
	Interrupted int     `csv:"interrupted" json:"interrupted"`
}

// Summarize computes the summary of an evaluated generation.
func Summarize(pop *ga.Population, res episode.Result) GenerationSummary {
	s := GenerationSummary{
		Generation: res.Generation,
		Budget:     res.Budget,
		Ticks:      res.Ticks,
		Population: pop.Size(),
		Finishers:  env.CountFinished(res.Outcomes),
	}

	counts := env.CountReasons(res.Outcomes)
	s.Collided = counts[env.ReasonCollided]
	s.Stalled = counts[env.ReasonStalled]
	s.TimedOut = counts[env.ReasonTimeout]
	s.Interrupted = counts[env.ReasonInterrupted]
	s.Alive = s.TimedOut + s.Interrupted

	if best := pop.Best(); best != nil {
		s.BestAgent = best.ID
		s.BestFitness = best.Fitness()
	}

	fitness := pop.Fitnesses()
	if len(fitness) == 0 {
		return s
	}
	s.MeanFitness = stat.Mean(fitness, nil)
	if len(fitness) > 1 {
		s.StdFitness = stat.StdDev(fitness, nil)
	}
	sort.Float64s(fitness)
	s.P50Fitness = stat.Quantile(0.5, stat.Empirical, fitness, nil)
	s.P90Fitness = stat.Quantile(0.9, stat.Empirical, fitness, nil)
	return s
}

// LogValue renders the summary as slog attributes.
func (s GenerationSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("gen", s.Generation),
		slog.Int("budget", s.Budget),
		slog.Int("ticks", s.Ticks),
		slog.Int("alive", s.Alive),
		slog.Int("best_agent", s.BestAgent),
		slog.Float64("best", s.BestFitness),
		slog.Float64("mean", s.MeanFitness),
		slog.Float64("std", s.StdFitness),
		slog.Float64("p50", s.P50Fitness),
		slog.Float64("p90", s.P90Fitness),
		slog.Int("finishers", s.Finishers),
		slog.Int("collided", s.Collided),
		slog.Int("stalled", s.Stalled),
		slog.Int("timed_out", s.TimedOut),
		slog.Int("interrupted", s.Interrupted),
	)
}
