package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardestai/internal/env"
	"hardestai/internal/logging"
	"hardestai/internal/nn"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewStore("sqlite", filepath.Join(t.TempDir(), "runs", "history.db"))
	require.NoError(t, err)
	memory, err := NewStore("memory", "")
	require.NoError(t, err)
	return map[string]Store{"memory": memory, "sqlite": sqlite}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Init(ctx))
			defer func() { require.NoError(t, CloseIfSupported(s)) }()

			runID := NewRunID()
			run := Run{ID: runID, StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Seed: 1337, Population: 50, Config: "seed: 1337\n"}
			require.NoError(t, s.SaveRun(ctx, run))
			got, err := s.GetRun(ctx, runID)
			require.NoError(t, err)
			assert.Equal(t, run, got)

			for _, gen := range []int{2, 0, 1} {
				require.NoError(t, s.SaveGeneration(ctx, runID, logging.GenerationSummary{Generation: gen, BestFitness: float64(gen * 10)}))
			}
			// saving a generation twice replaces it
			require.NoError(t, s.SaveGeneration(ctx, runID, logging.GenerationSummary{Generation: 1, BestFitness: 99, TimedOut: 3}))

			gens, err := s.ListGenerations(ctx, runID)
			require.NoError(t, err)
			require.Len(t, gens, 3)
			assert.Equal(t, []int{0, 1, 2}, []int{gens[0].Generation, gens[1].Generation, gens[2].Generation})
			assert.Equal(t, 99.0, gens[1].BestFitness)
			assert.Equal(t, 3, gens[1].TimedOut)
			assert.Equal(t, runID, gens[0].RunID)

			shape := nn.Shape{Inputs: 3, Hidden1: 1, Outputs: 1, Activation: nn.ReLU}
			for _, gen := range []int{5, 9, 7} {
				require.NoError(t, s.SaveChampion(ctx, runID, logging.Champion{
					Generation: gen,
					AgentID:    gen * 100,
					Fitness:    float64(gen),
					Outcome:    env.Outcome{Reason: env.ReasonCollided},
					Shape:      shape,
					Genome:     make([]float64, shape.GenomeSize()),
				}))
			}
			champ, err := s.GetChampion(ctx, runID)
			require.NoError(t, err)
			assert.Equal(t, 9, champ.Generation)
			assert.Equal(t, 900, champ.AgentID)
			assert.Equal(t, env.ReasonCollided, champ.Outcome.Reason)
			assert.Equal(t, shape, champ.Shape)
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Init(ctx))
			defer CloseIfSupported(s)

			_, err := s.GetRun(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.GetChampion(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			gens, err := s.ListGenerations(ctx, "missing")
			require.NoError(t, err)
			assert.Empty(t, gens)
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	first := NewSQLiteStore(path)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.SaveGeneration(ctx, "run-1", logging.GenerationSummary{Generation: 4, MeanFitness: 12.5}))
	require.NoError(t, first.Close())

	second := NewSQLiteStore(path)
	require.NoError(t, second.Init(ctx))
	defer second.Close()
	gens, err := second.ListGenerations(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, 12.5, gens[0].MeanFitness)
}

func TestUninitializedStoreErrors(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, NewSQLiteStore(filepath.Join(t.TempDir(), "x.db")).SaveRun(ctx, Run{ID: "a"}))
	assert.Error(t, NewMemoryStore().SaveRun(ctx, Run{ID: "a"}))
	assert.Error(t, NewSQLiteStore("").Init(ctx))
}

func TestNewStoreRejectsUnknownKind(t *testing.T) {
	_, err := NewStore("redis", "")
	assert.Error(t, err)
}

func TestLoadHistory(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Init(ctx))
			defer CloseIfSupported(s)

			runID := NewRunID()
			require.NoError(t, s.SaveRun(ctx, Run{ID: runID, StartedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Seed: 7, Population: 10}))

			_, err := LoadHistory(ctx, s, runID)
			assert.ErrorIs(t, err, ErrNotFound, "no champion saved yet")

			for gen, best := range []float64{3, 11, 8} {
				require.NoError(t, s.SaveGeneration(ctx, runID, logging.GenerationSummary{Generation: gen, BestFitness: best}))
			}
			shape := nn.Shape{Inputs: 3, Hidden1: 2, Outputs: 1, Activation: nn.Tanh}
			for _, gen := range []int{1, 2} {
				require.NoError(t, s.SaveChampion(ctx, runID, logging.Champion{
					Generation: gen,
					AgentID:    gen,
					Shape:      shape,
					Genome:     make([]float64, shape.GenomeSize()),
				}))
			}

			h, err := LoadHistory(ctx, s, runID)
			require.NoError(t, err)
			assert.Equal(t, int64(7), h.Run.Seed)
			assert.Len(t, h.Generations, 3)
			assert.Equal(t, 2, h.Champion.Generation)

			best, ok := h.Best()
			require.True(t, ok)
			assert.Equal(t, 1, best.Generation)

			_, err = h.Champion.Network()
			assert.NoError(t, err)

			_, err = LoadHistory(ctx, s, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestHistoryBestWithoutGenerations(t *testing.T) {
	_, ok := History{}.Best()
	assert.False(t, ok)
}
