package ga

import (
	"errors"
	"fmt"
	"math/rand"
)

// Params controls how the next generation is bred.
type Params struct {
	Population     int
	Elites         int
	SelectionPool  int
	TournamentK    int
	Crossover      string // uniform|single_point|blend
	CrossoverRate  float64
	MutationRate   float64
	MutationSigma  float64
	ResetMutationP float64
	ResetFraction  float64 // share of the worst offspring reinitialized
	ResetChance    float64 // per-generation probability of that reset
}

// Validate checks that the parameters can breed a population.
func (p Params) Validate() error {
	if p.Population <= 0 {
		return fmt.Errorf("population %d must be positive", p.Population)
	}
	if p.Elites < 0 || p.Elites > p.Population {
		return fmt.Errorf("elites %d out of range [0, %d]", p.Elites, p.Population)
	}
	if p.TournamentK <= 0 {
		return errors.New("tournament_k must be positive")
	}
	if err := validCrossover(p.Crossover); err != nil {
		return err
	}
	rates := []struct {
		name string
		v    float64
	}{
		{"crossover_rate", p.CrossoverRate},
		{"mutation_rate", p.MutationRate},
		{"reset_mutation_p", p.ResetMutationP},
		{"reset_fraction", p.ResetFraction},
		{"reset_chance", p.ResetChance},
	}
	for _, r := range rates {
		if r.v < 0 || r.v > 1 {
			return fmt.Errorf("%s %.3f out of range [0, 1]", r.name, r.v)
		}
	}
	if p.MutationSigma < 0 {
		return errors.New("mutation_sigma must not be negative")
	}
	return nil
}

// NextGeneration replaces pop's agents via elitism, selection, crossover, and mutation.
// Elites keep their ids; offspring get fresh ones.
func NextGeneration(pop *Population, params Params, rng *rand.Rand) {
	newAgents := make([]*Agent, params.Population)

	// 1. Keep elites
	pop.SortByFitness()
	elites := min(params.Elites, len(pop.Agents), params.Population)
	for i := 0; i < elites; i++ {
		newAgents[i] = pop.Agents[i].Clone()
	}

	// 2. Create selection pool
	pool := SelectionPool(pop, params.SelectionPool)

	// 3. Fill rest with offspring
	for i := elites; i < params.Population; i++ {
		var genome []float64
		if len(pool) == 0 {
			genome = make([]float64, pop.GenomeSize)
			Reinitialize(genome, rng)
		} else {
			p1, p2 := SelectParents(pool, params.TournamentK, rng)
			genome = CreateChild(p1, p2, params.Crossover, params.CrossoverRate, rng)
			MutateWithReset(genome, params.MutationRate, params.MutationSigma, params.ResetMutationP, rng)
		}
		newAgents[i] = &Agent{ID: pop.NextID(), Genome: genome}
	}

	// 4. Optionally reset worst fraction
	if params.ResetFraction > 0 && rng.Float64() < params.ResetChance {
		numReset := int(float64(params.Population) * params.ResetFraction)
		for i := max(params.Population-numReset, elites); i < params.Population; i++ {
			Reinitialize(newAgents[i].Genome, rng)
		}
	}

	pop.Agents = newAgents
	pop.ResetFitness()
}
