package ga

import (
	"math/rand"
	"sort"

	"hardestai/internal/env"
	"hardestai/internal/nn"
)

// Agent represents an individual in the population.
// It is the fitness handle the episode writes to.
type Agent struct {
	ID      int
	Genome  []float64
	Outcome env.Outcome // how its last episode ended

	fitness float64
}

// Fitness returns the agent's current fitness.
func (a *Agent) Fitness() float64 { return a.fitness }

// SetFitness overwrites the agent's fitness.
func (a *Agent) SetFitness(f float64) { a.fitness = f }

// Population manages the collection of agents
type Population struct {
	Agents     []*Agent
	GenomeSize int
	rng        *rand.Rand
	nextID     int
}

// NewPopulation creates a new random population
func NewPopulation(size, genomeSize int, rng *rand.Rand) *Population {
	p := &Population{
		Agents:     make([]*Agent, size),
		GenomeSize: genomeSize,
		rng:        rng,
	}

	for i := 0; i < size; i++ {
		p.Agents[i] = &Agent{
			ID:     p.NextID(),
			Genome: nn.RandomGenome(genomeSize, rng),
		}
	}

	return p
}

// NextID hands out a fresh agent id.
func (p *Population) NextID() int {
	id := p.nextID
	p.nextID++
	return id
}

// Size returns the population size
func (p *Population) Size() int {
	return len(p.Agents)
}

// SortByFitness sorts agents by fitness (descending). Ties keep id order.
func (p *Population) SortByFitness() {
	sort.SliceStable(p.Agents, func(i, j int) bool {
		return p.Agents[i].fitness > p.Agents[j].fitness
	})
}

// TopK returns the top K agents by fitness
func (p *Population) TopK(k int) []*Agent {
	p.SortByFitness()
	if k > len(p.Agents) {
		k = len(p.Agents)
	}
	return p.Agents[:k]
}

// Best returns the agent with highest fitness
func (p *Population) Best() *Agent {
	if len(p.Agents) == 0 {
		return nil
	}
	best := p.Agents[0]
	for _, a := range p.Agents[1:] {
		if a.fitness > best.fitness {
			best = a
		}
	}
	return best
}

// Fitnesses returns every agent's fitness in population order.
func (p *Population) Fitnesses() []float64 {
	out := make([]float64, len(p.Agents))
	for i, a := range p.Agents {
		out[i] = a.fitness
	}
	return out
}

// Clone creates a deep copy of an agent, id included.
func (a *Agent) Clone() *Agent {
	return &Agent{
		ID:      a.ID,
		Genome:  nn.CloneGenome(a.Genome),
		Outcome: a.Outcome,
		fitness: a.fitness,
	}
}

// GetRNG returns the population's random number generator
func (p *Population) GetRNG() *rand.Rand {
	return p.rng
}

// ResetFitness resets all agents' fitness to 0
func (p *Population) ResetFitness() {
	for _, a := range p.Agents {
		a.fitness = 0
	}
}
