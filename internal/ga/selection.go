package ga

import (
	"math/rand"
)

// TournamentSelect returns the fittest of k distinct agents drawn from agents.
// Ties go to the agent drawn first.
func TournamentSelect(agents []*Agent, k int, rng *rand.Rand) *Agent {
	n := len(agents)
	if n == 0 {
		return nil
	}
	k = max(1, min(k, n))

	// partial Fisher-Yates over the indices
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	var best *Agent
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
		if a := agents[idx[i]]; best == nil || a.fitness > best.fitness {
			best = a
		}
	}
	return best
}

// SelectionPool sorts pop and returns its fittest poolSize agents.
// A non-positive size selects everyone.
func SelectionPool(pop *Population, poolSize int) []*Agent {
	pop.SortByFitness()
	if poolSize <= 0 || poolSize > len(pop.Agents) {
		poolSize = len(pop.Agents)
	}
	return pop.Agents[:poolSize]
}

// SelectParents runs two tournaments. When the pool has more than one agent
// the second tournament excludes the first winner.
func SelectParents(pool []*Agent, k int, rng *rand.Rand) (*Agent, *Agent) {
	p1 := TournamentSelect(pool, k, rng)
	if len(pool) < 2 {
		return p1, p1
	}

	rest := make([]*Agent, 0, len(pool)-1)
	for _, a := range pool {
		if a != p1 {
			rest = append(rest, a)
		}
	}
	return p1, TournamentSelect(rest, k, rng)
}
