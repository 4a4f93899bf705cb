package ga

import (
	"math/rand"
)

// Mutate applies Gaussian mutation to a genome in-place
func Mutate(genome []float64, rate, sigma float64, rng *rand.Rand) {
	for i := range genome {
		if rng.Float64() < rate {
			genome[i] += rng.NormFloat64() * sigma
		}
	}
}

// MutateWithReset applies mutation with occasional random reset
func MutateWithReset(genome []float64, rate, sigma, resetP float64, rng *rand.Rand) {
	for i := range genome {
		if rng.Float64() < resetP {
			genome[i] = rng.NormFloat64() * 0.5
		} else if rng.Float64() < rate {
			genome[i] += rng.NormFloat64() * sigma
		}
	}
}

// Reinitialize replaces a genome with fresh random weights.
func Reinitialize(genome []float64, rng *rand.Rand) {
	for j := range genome {
		genome[j] = rng.NormFloat64() * 0.5
	}
}
