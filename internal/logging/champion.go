package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"hardestai/internal/env"
	"hardestai/internal/ga"
	"hardestai/internal/nn"
)

// Champion is a saved agent with the network shape needed to rebuild it.
type Champion struct {
	Generation int         `json:"generation"`
	AgentID    int         `json:"agent_id"`
	Fitness    float64     `json:"fitness"`
	Outcome    env.Outcome `json:"outcome"`
	Shape      nn.Shape    `json:"shape"`
	Genome     []float64   `json:"genome"`
}

// NewChampion captures agent as evaluated in generation gen.
func NewChampion(agent *ga.Agent, gen int, shape nn.Shape) Champion {
	return Champion{
		Generation: gen,
		AgentID:    agent.ID,
		Fitness:    agent.Fitness(),
		Outcome:    agent.Outcome,
		Shape:      shape,
		Genome:     nn.CloneGenome(agent.Genome),
	}
}

// Network rebuilds the champion's MLP.
func (c Champion) Network() (*nn.MLP, error) {
	return nn.FromGenome(c.Shape, c.Genome)
}

// SaveChampion saves the champion genome to a file
func SaveChampion(path string, c Champion) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating champion directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding champion: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// LoadChampion loads a champion from a file
func LoadChampion(path string) (*Champion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Champion
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding champion %s: %w", path, err)
	}
	if len(c.Genome) != c.Shape.GenomeSize() {
		return nil, fmt.Errorf("champion %s: genome has %d weights, shape needs %d", path, len(c.Genome), c.Shape.GenomeSize())
	}
	return &c, nil
}
