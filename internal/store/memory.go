package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"hardestai/internal/logging"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
	generations map[string]map[int]logging.GenerationSummary
	champions   map[string]map[int]logging.Champion
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	s.generations = make(map[string]map[int]logging.GenerationSummary)
	s.champions = make(map[string]map[int]logging.Champion)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, runID string, summary logging.GenerationSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	gens, ok := s.generations[runID]
	if !ok {
		gens = make(map[int]logging.GenerationSummary)
		s.generations[runID] = gens
	}
	summary.RunID = runID
	gens[summary.Generation] = summary
	return nil
}

func (s *MemoryStore) ListGenerations(_ context.Context, runID string) ([]logging.GenerationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gens := s.generations[runID]
	out := make([]logging.GenerationSummary, 0, len(gens))
	for _, g := range gens {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}

func (s *MemoryStore) SaveChampion(_ context.Context, runID string, champion logging.Champion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	champs, ok := s.champions[runID]
	if !ok {
		champs = make(map[int]logging.Champion)
		s.champions[runID] = champs
	}
	champs[champion.Generation] = champion
	return nil
}

func (s *MemoryStore) GetChampion(_ context.Context, runID string) (logging.Champion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest, found := logging.Champion{}, false
	for gen, c := range s.champions[runID] {
		if !found || gen > latest.Generation {
			latest, found = c, true
		}
	}
	if !found {
		return logging.Champion{}, fmt.Errorf("champion for run %s: %w", runID, ErrNotFound)
	}
	return latest, nil
}
