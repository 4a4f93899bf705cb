package eval

import (
	"context"
	"fmt"

	"hardestai/internal/config"
	"hardestai/internal/env"
	"hardestai/internal/episode"
	"hardestai/internal/ga"
	"hardestai/internal/nn"
)

// Evaluator runs populations through the level and writes the results back
type Evaluator struct {
	cfg   *config.Config
	level *env.Level
	shape nn.Shape
}

// NewEvaluator builds the level once for every episode it will run
func NewEvaluator(cfg *config.Config) (*Evaluator, error) {
	level, err := env.NewLevel(cfg.LevelSpec())
	if err != nil {
		return nil, err
	}
	return &Evaluator{
		cfg:   cfg,
		level: level,
		shape: cfg.NNShape(),
	}, nil
}

// Level returns the level episodes are played on.
func (e *Evaluator) Level() *env.Level { return e.level }

// Shape returns the network architecture of every agent.
func (e *Evaluator) Shape() nn.Shape { return e.shape }

// Policy builds the decision network for an agent.
func (e *Evaluator) Policy(agent *ga.Agent) (*nn.MLP, error) {
	m, err := nn.FromGenome(e.shape, agent.Genome)
	if err != nil {
		return nil, fmt.Errorf("agent %d: %w", agent.ID, err)
	}
	return m, nil
}

// Begin sets up the episode for one generation. Every agent's fitness is
// reset and then synced by the episode as it runs.
func (e *Evaluator) Begin(pop *ga.Population, gen int) (*episode.Episode, error) {
	candidates := make([]episode.Candidate, len(pop.Agents))
	for i, agent := range pop.Agents {
		policy, err := e.Policy(agent)
		if err != nil {
			return nil, err
		}
		candidates[i] = episode.Candidate{ID: agent.ID, Policy: policy, Handle: agent}
	}
	return episode.New(e.level, e.cfg.EpisodeOptions(gen), candidates), nil
}

// Complete copies each agent's outcome from a finished episode begun with pop.
func (e *Evaluator) Complete(pop *ga.Population, res episode.Result) {
	for i, agent := range pop.Agents {
		if i < len(res.Outcomes) {
			agent.Outcome = res.Outcomes[i]
		}
	}
}

// EvaluateGeneration runs one full episode for the population.
// Cancelling ctx ends it between ticks with the fitness gathered so far.
func (e *Evaluator) EvaluateGeneration(ctx context.Context, pop *ga.Population, gen int, observer func(episode.Snapshot)) (episode.Result, error) {
	ep, err := e.Begin(pop, gen)
	if err != nil {
		return episode.Result{}, err
	}
	res := ep.Run(ctx, observer)
	e.Complete(pop, res)
	return res, nil
}

// recorder wraps a policy and records every move it makes.
type recorder struct {
	policy episode.Policy
	replay *env.Replay
}

func (r *recorder) Activate(obs []float64) []float64 {
	return r.policy.Activate(obs)
}

func (r *recorder) Steer(obs []float64) env.Move {
	m := episode.Decide(r.policy, obs)
	r.replay.Record(m)
	return m
}

// EvaluateWithReplay runs a solo episode for agent and records its moves.
// Enemies ignore players, so the solo run matches the agent's run in the
// population episode of the same generation.
func (e *Evaluator) EvaluateWithReplay(ctx context.Context, agent *ga.Agent, gen int) (*env.Replay, error) {
	policy, err := e.Policy(agent)
	if err != nil {
		return nil, err
	}

	opts := e.cfg.EpisodeOptions(gen)
	replay := env.NewReplay(gen, agent.ID, opts.Budget)
	ep := e.Solo(agent.ID, &recorder{policy: policy, replay: replay}, opts)

	res := ep.Run(ctx, nil)
	replay.SetOutcome(res.Outcomes[0])
	return replay, nil
}

// PlayReplay runs a recorded trace back through the level.
func (e *Evaluator) PlayReplay(ctx context.Context, replay *env.Replay, observer func(episode.Snapshot)) episode.Result {
	return e.Replayer(replay).Run(ctx, observer)
}

// Replayer sets up an episode that plays replay back.
func (e *Evaluator) Replayer(replay *env.Replay) *episode.Episode {
	opts := e.cfg.EpisodeOptions(replay.Generation)
	opts.Budget = replay.Budget
	return e.Solo(replay.AgentID, replay.Cursor(), opts)
}

// Solo sets up a single-agent episode for policy, as used for human play and
// champion playback. The agent's fitness is reported in the result outcome.
func (e *Evaluator) Solo(id int, policy episode.Policy, opts episode.Options) *episode.Episode {
	return episode.New(e.level, opts, []episode.Candidate{{ID: id, Policy: policy, Handle: new(episode.Score)}})
}
