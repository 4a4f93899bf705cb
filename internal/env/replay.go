package env

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Replay stores a deterministic move trace for playback.
// Enemies ignore the player, so the trace alone reproduces the episode.
type Replay struct {
	Generation int     `json:"generation"`
	AgentID    int     `json:"agent_id"`
	Budget     int     `json:"budget"` // tick budget the trace was recorded under
	Moves      []Move  `json:"moves"`
	Outcome    Outcome `json:"outcome"`
}

// NewReplay creates a new replay recorder.
func NewReplay(generation, agentID, budget int) *Replay {
	return &Replay{
		Generation: generation,
		AgentID:    agentID,
		Budget:     budget,
		Moves:      make([]Move, 0, 256),
	}
}

// Record adds a move to the replay.
func (r *Replay) Record(m Move) {
	r.Moves = append(r.Moves, m)
}

// SetOutcome sets the final episode outcome.
func (r *Replay) SetOutcome(o Outcome) {
	r.Outcome = o
}

// Save writes the replay to a file.
func (r *Replay) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadReplay loads a replay from a file.
func LoadReplay(path string) (*Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Replay
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Cursor returns a steering policy that plays the recorded moves in order and
// stays put once they run out.
func (r *Replay) Cursor() *ReplayCursor {
	return &ReplayCursor{moves: r.Moves}
}

// ReplayCursor plays back a recorded trace.
type ReplayCursor struct {
	moves []Move
	next  int
}

// Steer returns the next recorded move.
func (c *ReplayCursor) Steer([]float64) Move {
	if c.next >= len(c.moves) {
		return Stay
	}
	m := c.moves[c.next]
	c.next++
	return m
}

// Activate has no network output; Steer drives the player.
func (c *ReplayCursor) Activate([]float64) []float64 {
	return nil
}

// Done reports whether every recorded move has been played.
func (c *ReplayCursor) Done() bool {
	return c.next >= len(c.moves)
}
