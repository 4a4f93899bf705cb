// Package store persists run history: runs, generation summaries, and champions.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hardestai/internal/logging"
)

// ErrNotFound is returned when a run has no matching record.
var ErrNotFound = errors.New("not found")

// Run describes one training run.
type Run struct {
	ID         string
	StartedAt  time.Time
	Seed       int64
	Population int
	Config     string // effective configuration as YAML
}

// Store defines persistence operations for training history.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	SaveGeneration(ctx context.Context, runID string, summary logging.GenerationSummary) error
	ListGenerations(ctx context.Context, runID string) ([]logging.GenerationSummary, error)
	SaveChampion(ctx context.Context, runID string, champion logging.Champion) error
	// GetChampion returns the champion of the latest generation saved for the run.
	GetChampion(ctx context.Context, runID string) (logging.Champion, error)
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewStore opens the backend named by kind. Callers must Init it.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes backends that hold resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
