package ga

import (
	"fmt"
	"math/rand"

	"hardestai/internal/nn"
)

// Crossover operators.
const (
	CrossoverUniform     = "uniform"
	CrossoverSinglePoint = "single_point"
	CrossoverBlend       = "blend"
)

func validCrossover(kind string) error {
	switch kind {
	case "", CrossoverUniform, CrossoverSinglePoint, CrossoverBlend:
		return nil
	default:
		return fmt.Errorf("unknown crossover %q", kind)
	}
}

// UniformCrossover swaps each gene between the parents with probability swap
// and returns both children.
func UniformCrossover(p1, p2 []float64, swap float64, rng *rand.Rand) ([]float64, []float64) {
	c1 := nn.CloneGenome(p1)
	c2 := nn.CloneGenome(p2)
	for i := range c1 {
		if rng.Float64() < swap {
			c1[i], c2[i] = c2[i], c1[i]
		}
	}
	return c1, c2
}

// SinglePointCrossover cuts both parents at one point strictly inside the
// genome and exchanges the tails.
func SinglePointCrossover(p1, p2 []float64, rng *rand.Rand) ([]float64, []float64) {
	c1 := nn.CloneGenome(p1)
	c2 := nn.CloneGenome(p2)
	if len(c1) < 2 {
		return c1, c2
	}
	point := 1 + rng.Intn(len(c1)-1)
	copy(c1[point:], p2[point:])
	copy(c2[point:], p1[point:])
	return c1, c2
}

// BlendCrossover places every gene at a uniform random point between the
// parents' genes.
func BlendCrossover(p1, p2 []float64, rng *rand.Rand) []float64 {
	child := make([]float64, len(p1))
	for i := range child {
		child[i] = p1[i] + rng.Float64()*(p2[i]-p1[i])
	}
	return child
}

// CreateChild breeds one genome from two parents. With probability
// 1-crossoverRate the child is a copy of a random parent.
func CreateChild(p1, p2 *Agent, kind string, crossoverRate float64, rng *rand.Rand) []float64 {
	if rng.Float64() >= crossoverRate {
		if rng.Intn(2) == 0 {
			return nn.CloneGenome(p1.Genome)
		}
		return nn.CloneGenome(p2.Genome)
	}

	switch kind {
	case CrossoverSinglePoint:
		c, _ := SinglePointCrossover(p1.Genome, p2.Genome, rng)
		return c
	case CrossoverBlend:
		return BlendCrossover(p1.Genome, p2.Genome, rng)
	default:
		c, _ := UniformCrossover(p1.Genome, p2.Genome, 0.5, rng)
		return c
	}
}
