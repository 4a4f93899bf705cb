// Package episode runs one generation of agents through the level.
//
// Live agents are ECS entities carrying a player and its binding, so a
// removed agent takes its player, policy and fitness handle with it. An
// ordered roster of entities gives the stable decision order.
package episode

import (
	"context"

	"github.com/mlange-42/ark/ecs"

	"hardestai/internal/env"
)

// Options configures one episode.
type Options struct {
	Generation  int
	Budget      int     // ticks; 0 means no cap
	StallEvery  int     // stall-culling period in ticks; 0 disables it
	Penalty     float64 // subtracted from the handle on enemy collision
	Observation string  // env.ObsBasic or env.ObsEnemy
}

// DefaultOptions returns the options of the original training runs.
func DefaultOptions() Options {
	return Options{
		Budget:      100,
		StallEvery:  30,
		Penalty:     1,
		Observation: env.ObsBasic,
	}
}

// binding is the agent half of a live entity.
type binding struct {
	index  int // position in the candidate list
	id     int
	policy Policy
	handle FitnessHandle
}

// Episode is the simulation state of one generation.
type Episode struct {
	level    *env.Level
	opts     Options
	features *env.FeatureExtractor

	world  *ecs.World
	agents *ecs.Map2[env.Player, binding]
	live   *ecs.Filter2[env.Player, binding]
	roster []ecs.Entity

	enemies     []env.Enemy
	tick        int
	outcomes    []env.Outcome
	interrupted bool
}

// Result is the final state of a finished episode.
type Result struct {
	Generation  int
	Ticks       int
	Budget      int
	Outcomes    []env.Outcome // one per candidate, in input order
	Interrupted bool
}

// New sets up an episode: fresh enemies, one player per candidate at the
// spawn point, and every handle's fitness reset to zero.
func New(level *env.Level, opts Options, candidates []Candidate) *Episode {
	world := ecs.NewWorld()
	e := &Episode{
		level:    level,
		opts:     opts,
		features: env.NewFeatureExtractor(opts.Observation, level),
		world:    world,
		agents:   ecs.NewMap2[env.Player, binding](world),
		live:     ecs.NewFilter2[env.Player, binding](world),
		roster:   make([]ecs.Entity, 0, len(candidates)),
		enemies:  level.NewEnemies(),
		outcomes: make([]env.Outcome, len(candidates)),
	}

	for i, c := range candidates {
		c.Handle.SetFitness(0)
		p := level.NewPlayer()
		b := binding{index: i, id: c.ID, policy: c.Policy, handle: c.Handle}
		e.roster = append(e.roster, e.agents.NewEntity(&p, &b))
		e.outcomes[i] = env.Outcome{AgentID: c.ID, X: p.X, Y: p.Y}
	}
	return e
}

// Done reports whether the episode is over.
func (e *Episode) Done() bool {
	if len(e.roster) == 0 {
		return true
	}
	return e.opts.Budget > 0 && e.tick >= e.opts.Budget
}

// Step advances the episode by one tick.
func (e *Episode) Step() {
	if e.Done() {
		return
	}

	// 1. Every live agent decides and moves, in input order
	for _, entity := range e.roster {
		p, b := e.agents.Get(entity)
		obs := e.features.Extract(e.tick, p, e.enemies)
		m := Decide(b.policy, obs)
		p.Move(m.DX, m.DY)
		b.handle.SetFitness(p.Fitness)
	}

	// 2. Enemies patrol
	for i := range e.enemies {
		e.enemies[i].Move()
	}

	// 3. Collision culling
	collided := make(map[ecs.Entity]struct{})
	for i := range e.enemies {
		query := e.live.Query()
		for query.Next() {
			p, _ := query.Get()
			if e.enemies[i].Collide(p) {
				collided[query.Entity()] = struct{}{}
			}
		}
	}
	e.remove(collided, env.ReasonCollided, e.opts.Penalty)

	// 4. Stall culling
	if e.opts.StallEvery > 0 && e.tick > 0 && e.tick%e.opts.StallEvery == 0 {
		stalled := make(map[ecs.Entity]struct{})
		query := e.live.Query()
		for query.Next() {
			p, _ := query.Get()
			if p.InStartZone() {
				stalled[query.Entity()] = struct{}{}
			}
		}
		e.remove(stalled, env.ReasonStalled, 0)
	}

	e.tick++
}

// remove records outcomes for the marked agents and deletes them.
// It must not be called while a query is open.
func (e *Episode) remove(marked map[ecs.Entity]struct{}, reason env.Reason, penalty float64) {
	if len(marked) == 0 {
		return
	}
	for entity := range marked {
		p, b := e.agents.Get(entity)
		if penalty != 0 {
			b.handle.SetFitness(b.handle.Fitness() - penalty)
		}
		e.outcomes[b.index] = e.outcome(p, b, reason)
		e.world.RemoveEntity(entity)
	}

	live := e.roster[:0]
	for _, entity := range e.roster {
		if e.world.Alive(entity) {
			live = append(live, entity)
		}
	}
	e.roster = live
}

func (e *Episode) outcome(p *env.Player, b *binding, reason env.Reason) env.Outcome {
	return env.Outcome{
		AgentID:  b.id,
		Reason:   reason,
		Tick:     e.tick,
		Steps:    p.Steps,
		X:        p.X,
		Y:        p.Y,
		Fitness:  b.handle.Fitness(),
		Finished: p.Finished(),
	}
}

// Interrupt marks the episode as cancelled. Survivors finish as interrupted.
func (e *Episode) Interrupt() {
	e.interrupted = true
}

// Finish closes the episode and returns one outcome per candidate.
// Agents still alive are recorded as timed out, or interrupted.
func (e *Episode) Finish() Result {
	reason := env.ReasonTimeout
	if e.interrupted {
		reason = env.ReasonInterrupted
	}
	for _, entity := range e.roster {
		p, b := e.agents.Get(entity)
		e.outcomes[b.index] = e.outcome(p, b, reason)
	}

	outcomes := make([]env.Outcome, len(e.outcomes))
	copy(outcomes, e.outcomes)
	return Result{
		Generation:  e.opts.Generation,
		Ticks:       e.tick,
		Budget:      e.opts.Budget,
		Outcomes:    outcomes,
		Interrupted: e.interrupted,
	}
}

// Run steps the episode until it is done or ctx is cancelled. Cancellation is
// observed between ticks only. observer, if set, sees a snapshot after every
// tick.
func (e *Episode) Run(ctx context.Context, observer func(Snapshot)) Result {
	for !e.Done() {
		if ctx.Err() != nil {
			e.Interrupt()
			break
		}
		e.Step()
		if observer != nil {
			observer(e.Snapshot())
		}
	}
	return e.Finish()
}

// Tick returns the number of completed ticks.
func (e *Episode) Tick() int { return e.tick }

// Alive returns the number of live agents.
func (e *Episode) Alive() int { return len(e.roster) }

// Generation returns the generation index the episode was created with.
func (e *Episode) Generation() int { return e.opts.Generation }

// Budget returns the tick budget, 0 when unlimited.
func (e *Episode) Budget() int { return e.opts.Budget }

// Level returns the level being played.
func (e *Episode) Level() *env.Level { return e.level }

// Enemies returns a copy of the enemy states.
func (e *Episode) Enemies() []env.Enemy {
	enemies := make([]env.Enemy, len(e.enemies))
	copy(enemies, e.enemies)
	return enemies
}
