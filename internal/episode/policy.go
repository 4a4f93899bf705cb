package episode

import "hardestai/internal/env"

// Policy is an agent's decision function. The first output selects a compass
// direction.
type Policy interface {
	Activate(obs []float64) []float64
}

// Steering is implemented by policies that pick a move directly, including
// staying in place. Human input and replay playback use it.
type Steering interface {
	Steer(obs []float64) env.Move
}

// FitnessHandle is the external fitness field the evolution process reads
// after an episode.
type FitnessHandle interface {
	Fitness() float64
	SetFitness(f float64)
}

// Candidate binds an agent's policy to its fitness handle.
type Candidate struct {
	ID     int
	Policy Policy
	Handle FitnessHandle
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(obs []float64) []float64

func (f PolicyFunc) Activate(obs []float64) []float64 { return f(obs) }

// SteerFunc adapts a plain function to a steering Policy.
type SteerFunc func(obs []float64) env.Move

func (f SteerFunc) Activate([]float64) []float64 { return nil }

func (f SteerFunc) Steer(obs []float64) env.Move { return f(obs) }

// Decide returns the move chosen by p for obs.
func Decide(p Policy, obs []float64) env.Move {
	if s, ok := p.(Steering); ok {
		return s.Steer(obs).Clamp()
	}
	out := p.Activate(obs)
	if len(out) == 0 {
		return env.Compass[len(env.Compass)-1]
	}
	return env.DirectionFromOutput(out[0])
}

// Score is a standalone FitnessHandle for callers without a genome.
type Score struct {
	value float64
}

func (s *Score) Fitness() float64 { return s.value }

func (s *Score) SetFitness(f float64) { s.value = f }
