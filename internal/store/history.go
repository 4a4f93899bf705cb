package store

import (
	"context"
	"fmt"

	"hardestai/internal/logging"
)

// History is everything recorded for one run.
type History struct {
	Run         Run
	Generations []logging.GenerationSummary
	Champion    logging.Champion // latest saved champion
}

// LoadHistory reads a run, its generation summaries and its latest champion.
// A run without a saved champion returns ErrNotFound.
func LoadHistory(ctx context.Context, s Store, runID string) (History, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return History{}, fmt.Errorf("run %s: %w", runID, err)
	}
	gens, err := s.ListGenerations(ctx, runID)
	if err != nil {
		return History{}, fmt.Errorf("run %s generations: %w", runID, err)
	}
	champ, err := s.GetChampion(ctx, runID)
	if err != nil {
		return History{}, fmt.Errorf("run %s champion: %w", runID, err)
	}
	return History{Run: run, Generations: gens, Champion: champ}, nil
}

// Best returns the generation summary with the highest best fitness.
func (h History) Best() (logging.GenerationSummary, bool) {
	if len(h.Generations) == 0 {
		return logging.GenerationSummary{}, false
	}
	best := h.Generations[0]
	for _, g := range h.Generations[1:] {
		if g.BestFitness > best.BestFitness {
			best = g
		}
	}
	return best, true
}
