package logging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"hardestai/internal/ga"
)

// Logger handles all training output and artifact saving
type Logger struct {
	csvPath  string
	jsonPath string
	csvFile  *os.File
	jsonFile *os.File
	log      *slog.Logger

	csvHeaderWritten bool
}

// NewLogger creates a new logger. Summaries also go to log.
func NewLogger(csvPath, jsonPath string, log *slog.Logger) (*Logger, error) {
	l := &Logger{
		csvPath:  csvPath,
		jsonPath: jsonPath,
		log:      log,
	}

	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
		return nil, fmt.Errorf("creating csv directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(jsonPath), 0755); err != nil {
		return nil, fmt.Errorf("creating json directory: %w", err)
	}

	return l, nil
}

// Init truncates and opens the log files
func (l *Logger) Init() error {
	var err error

	l.csvFile, err = os.Create(l.csvPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", l.csvPath, err)
	}

	l.jsonFile, err = os.OpenFile(l.jsonPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		l.csvFile.Close()
		return fmt.Errorf("creating %s: %w", l.jsonPath, err)
	}

	return nil
}

// Close closes all log files
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	var firstErr error
	if l.csvFile != nil {
		if err := l.csvFile.Close(); err != nil {
			firstErr = err
		}
	}
	if l.jsonFile != nil {
		if err := l.jsonFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LogGeneration writes a generation summary to slog, the CSV file, and the JSONL file.
func (l *Logger) LogGeneration(s GenerationSummary) error {
	if l == nil {
		return nil
	}
	l.log.Info("generation", "summary", s)

	if l.csvFile != nil {
		records := []GenerationSummary{s}
		write := gocsv.MarshalWithoutHeaders
		if !l.csvHeaderWritten {
			write = gocsv.Marshal
		}
		if err := write(records, l.csvFile); err != nil {
			return fmt.Errorf("writing csv summary: %w", err)
		}
		l.csvHeaderWritten = true
	}

	if l.jsonFile != nil {
		line, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encoding json summary: %w", err)
		}
		if _, err := l.jsonFile.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing json summary: %w", err)
		}
	}
	return nil
}

// LogTopK logs debug info for the first k agents, which should be sorted by fitness.
func (l *Logger) LogTopK(agents []*ga.Agent, k int) {
	if l == nil {
		return
	}
	if k > len(agents) {
		k = len(agents)
	}
	for i := 0; i < k; i++ {
		a := agents[i]
		l.log.Debug("top agent",
			"rank", i+1,
			"id", a.ID,
			"fitness", a.Fitness(),
			"reason", a.Outcome.Reason,
			"tick", a.Outcome.Tick,
			"x", a.Outcome.X,
			"y", a.Outcome.Y,
			"finished", a.Outcome.Finished,
		)
	}
}
