package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"hardestai/internal/logging"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, seed, population, config)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			seed = excluded.seed,
			population = excluded.population,
			config = excluded.config
	`, run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano), run.Seed, run.Population, run.Config)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, err
	}

	run := Run{ID: id}
	var startedAt string
	err = db.QueryRowContext(ctx, `SELECT started_at, seed, population, config FROM runs WHERE id = ?`, id).
		Scan(&startedAt, &run.Seed, &run.Population, &run.Config)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return Run{}, err
	}
	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("decode run %s start time: %w", id, err)
	}
	return run, nil
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, runID string, summary logging.GenerationSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	summary.RunID = runID
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode generation %d: %w", summary.Generation, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (run_id, generation, best_fitness, mean_fitness, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			payload = excluded.payload
	`, runID, summary.Generation, summary.BestFitness, summary.MeanFitness, payload)
	return err
}

func (s *SQLiteStore) ListGenerations(ctx context.Context, runID string) ([]logging.GenerationSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM generations WHERE run_id = ? ORDER BY generation`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []logging.GenerationSummary
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var summary logging.GenerationSummary
		if err := json.Unmarshal(payload, &summary); err != nil {
			return nil, fmt.Errorf("decode generation for run %s: %w", runID, err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveChampion(ctx context.Context, runID string, champion logging.Champion) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(champion)
	if err != nil {
		return fmt.Errorf("encode champion: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO champions (run_id, generation, agent_id, fitness, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			agent_id = excluded.agent_id,
			fitness = excluded.fitness,
			payload = excluded.payload
	`, runID, champion.Generation, champion.AgentID, champion.Fitness, payload)
	return err
}

func (s *SQLiteStore) GetChampion(ctx context.Context, runID string) (logging.Champion, error) {
	db, err := s.getDB()
	if err != nil {
		return logging.Champion{}, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `
		SELECT payload FROM champions WHERE run_id = ?
		ORDER BY generation DESC LIMIT 1
	`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return logging.Champion{}, fmt.Errorf("champion for run %s: %w", runID, ErrNotFound)
		}
		return logging.Champion{}, err
	}

	var champion logging.Champion
	if err := json.Unmarshal(payload, &champion); err != nil {
		return logging.Champion{}, fmt.Errorf("decode champion for run %s: %w", runID, err)
	}
	return champion, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			seed INTEGER NOT NULL,
			population INTEGER NOT NULL,
			config TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
		CREATE TABLE IF NOT EXISTS champions (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			agent_id INTEGER NOT NULL,
			fitness REAL NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
