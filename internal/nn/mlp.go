package nn

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Activation functions for the hidden layers.
const (
	ReLU    = "relu"
	Tanh    = "tanh"
	Sigmoid = "sigmoid"
)

// Shape describes an MLP architecture.
type Shape struct {
	Inputs     int    `json:"inputs"`
	Hidden1    int    `json:"hidden1"`
	Hidden2    int    `json:"hidden2"` // 0 means no second hidden layer
	Outputs    int    `json:"outputs"`
	Activation string `json:"activation"`
}

// GenomeSize returns the total number of weights (including biases)
func (s Shape) GenomeSize() int {
	size := (s.Inputs + 1) * s.Hidden1
	if s.Hidden2 > 0 {
		size += (s.Hidden1 + 1) * s.Hidden2
		size += (s.Hidden2 + 1) * s.Outputs
	} else {
		size += (s.Hidden1 + 1) * s.Outputs
	}
	return size
}

// Validate checks that every layer has at least one unit.
func (s Shape) Validate() error {
	if s.Inputs <= 0 || s.Hidden1 <= 0 || s.Outputs <= 0 || s.Hidden2 < 0 {
		return fmt.Errorf("invalid network shape %d-%d-%d-%d", s.Inputs, s.Hidden1, s.Hidden2, s.Outputs)
	}
	if _, err := activation(s.Activation); err != nil {
		return err
	}
	return nil
}

// MLP is a feedforward network with linear outputs.
// Each unit's bias is stored first, followed by its input weights.
type MLP struct {
	Shape
	Weights []float64

	act func(float64) float64

	// Pre-allocated buffers for the forward pass
	h1  []float64
	h2  []float64
	out []float64
}

// NewMLP creates a zero-weight network with the given shape.
func NewMLP(shape Shape) (*MLP, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	act, _ := activation(shape.Activation)
	m := &MLP{
		Shape:   shape,
		Weights: make([]float64, shape.GenomeSize()),
		act:     act,
		h1:      make([]float64, shape.Hidden1),
		out:     make([]float64, shape.Outputs),
	}
	if shape.Hidden2 > 0 {
		m.h2 = make([]float64, shape.Hidden2)
	}
	return m, nil
}

// FromGenome creates a network and loads genome into it.
func FromGenome(shape Shape, genome []float64) (*MLP, error) {
	m, err := NewMLP(shape)
	if err != nil {
		return nil, err
	}
	if err := m.SetWeights(genome); err != nil {
		return nil, err
	}
	return m, nil
}

// SetWeights copies genome into the network weights
func (m *MLP) SetWeights(genome []float64) error {
	if len(genome) != len(m.Weights) {
		return fmt.Errorf("genome has %d weights, network needs %d", len(genome), len(m.Weights))
	}
	copy(m.Weights, genome)
	return nil
}

// Activate runs a forward pass. The returned slice is reused by the next call.
func (m *MLP) Activate(input []float64) []float64 {
	offset := m.layer(input[:m.Inputs], m.h1, 0, m.act)

	last := m.h1
	if m.Hidden2 > 0 {
		offset = m.layer(m.h1, m.h2, offset, m.act)
		last = m.h2
	}

	m.layer(last, m.out, offset, nil)
	return m.out
}

// layer computes dst from src using the weights at offset and returns the
// offset of the next layer. A nil act leaves the units linear.
func (m *MLP) layer(src, dst []float64, offset int, act func(float64) float64) int {
	n := len(src)
	for j := range dst {
		sum := m.Weights[offset] + floats.Dot(src, m.Weights[offset+1:offset+1+n])
		if act != nil {
			sum = act(sum)
		}
		dst[j] = sum
		offset += n + 1
	}
	return offset
}

func activation(name string) (func(float64) float64, error) {
	switch name {
	case ReLU, "":
		return relu, nil
	case Tanh:
		return math.Tanh, nil
	case Sigmoid:
		return sigmoid, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// RandomGenome generates a random genome for the network
func RandomGenome(size int, rng *rand.Rand) []float64 {
	genome := make([]float64, size)
	// Xavier-like initialization
	scale := math.Sqrt(2.0 / float64(size))
	for i := range genome {
		genome[i] = rng.NormFloat64() * scale
	}
	return genome
}

// CloneGenome makes a copy of a genome
func CloneGenome(src []float64) []float64 {
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}
