package episode

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardestai/internal/env"
	"hardestai/internal/geom"
)

func defaultLevel(t *testing.T) *env.Level {
	t.Helper()
	l, err := env.NewLevel(env.DefaultLevelSpec())
	require.NoError(t, err)
	return l
}

// openLevel is one walkable window with a single parked enemy whose disc
// spans x 295..314, y 100..119.
func openLevel(t *testing.T) *env.Level {
	t.Helper()
	spec := env.DefaultLevelSpec()
	spec.Walkable = []geom.Rect{{X: 0, Y: 0, W: spec.Width, H: spec.Height}}
	spec.Spawn = geom.Point{X: 300, Y: 65}
	spec.EnemySpeed = 0
	spec.EnemyLeftWall = 0
	spec.EnemyRightWall = 1000
	spec.EnemyLeftStart = 305
	spec.Lanes = []env.Lane{{Y: 110, StartsLeft: true}}
	l, err := env.NewLevel(spec)
	require.NoError(t, err)
	return l
}

func steer(m env.Move) Policy {
	return SteerFunc(func([]float64) env.Move { return m })
}

func candidates(policies ...Policy) ([]Candidate, []*Score) {
	cs := make([]Candidate, len(policies))
	scores := make([]*Score, len(policies))
	for i, p := range policies {
		scores[i] = &Score{value: 42}
		cs[i] = Candidate{ID: 100 + i, Policy: p, Handle: scores[i]}
	}
	return cs, scores
}

// assertConsistent checks that the roster and the ECS world hold the same agents.
func assertConsistent(t *testing.T, e *Episode) {
	t.Helper()
	n := 0
	query := e.live.Query()
	for query.Next() {
		n++
	}
	assert.Equal(t, len(e.roster), n)
	for _, entity := range e.roster {
		assert.True(t, e.world.Alive(entity))
	}
}

func TestNewResetsHandles(t *testing.T) {
	cs, scores := candidates(steer(env.Stay), steer(env.Stay))
	e := New(defaultLevel(t), DefaultOptions(), cs)

	for _, s := range scores {
		assert.Zero(t, s.Fitness())
	}
	assert.Equal(t, 2, e.Alive())
	assert.Len(t, e.Enemies(), 4)
	assertConsistent(t, e)
}

func TestEmptyPopulationRunsZeroTicks(t *testing.T) {
	e := New(defaultLevel(t), DefaultOptions(), nil)

	assert.True(t, e.Done())
	res := e.Run(context.Background(), nil)

	assert.Zero(t, res.Ticks)
	assert.Empty(t, res.Outcomes)
	assert.False(t, res.Interrupted)
}

func TestBudgetEndsEpisode(t *testing.T) {
	opts := DefaultOptions()
	opts.Budget = 10
	opts.StallEvery = 0
	cs, _ := candidates(steer(env.Stay), steer(env.Stay), steer(env.Stay))

	res := New(defaultLevel(t), opts, cs).Run(context.Background(), nil)

	assert.Equal(t, 10, res.Ticks)
	assert.Equal(t, 10, res.Budget)
	require.Len(t, res.Outcomes, 3)
	for i, o := range res.Outcomes {
		assert.Equal(t, 100+i, o.AgentID)
		assert.Equal(t, env.ReasonTimeout, o.Reason)
		assert.Equal(t, 10, o.Steps)
	}
}

func TestUnlimitedBudgetRunsUntilEmpty(t *testing.T) {
	opts := DefaultOptions()
	opts.Budget = 0
	cs, _ := candidates(steer(env.Stay))

	res := New(defaultLevel(t), opts, cs).Run(context.Background(), nil)

	// the only agent never leaves the start zone and is culled on tick 30
	assert.Equal(t, 31, res.Ticks)
	assert.Equal(t, env.ReasonStalled, res.Outcomes[0].Reason)
}

func TestCollisionOnTickFive(t *testing.T) {
	level := openLevel(t)
	opts := DefaultOptions()
	cs, scores := candidates(
		steer(env.Move{DY: 1}),
		steer(env.Stay),
		steer(env.Stay),
		steer(env.Stay),
	)
	e := New(level, opts, cs)

	prev := scores[0].Fitness()
	for tick := 0; tick < 5; tick++ {
		e.Step()
		require.Equal(t, 4, e.Alive(), "tick %d", tick)
		assert.GreaterOrEqual(t, scores[0].Fitness(), prev)
		prev = scores[0].Fitness()
	}

	e.Step()
	assert.Equal(t, 3, e.Alive())
	assertConsistent(t, e)

	mirror := level.NewPlayer()
	for i := 0; i < 6; i++ {
		mirror.Move(0, 1)
	}
	assert.InDelta(t, mirror.Fitness-1, scores[0].Fitness(), 1e-9)

	res := e.Finish()
	assert.Equal(t, env.ReasonCollided, res.Outcomes[0].Reason)
	assert.Equal(t, 5, res.Outcomes[0].Tick)
	assert.Equal(t, 95.0, res.Outcomes[0].Y)
	assert.InDelta(t, scores[0].Fitness(), res.Outcomes[0].Fitness, 1e-9)
	for _, o := range res.Outcomes[1:] {
		assert.Equal(t, env.ReasonTimeout, o.Reason)
	}

	snap := e.Snapshot()
	require.Len(t, snap.Players, 3)
	assert.Equal(t, []int{101, 102, 103}, []int{snap.Players[0].ID, snap.Players[1].ID, snap.Players[2].ID})
}

func TestCollisionPenaltyAppliedOnce(t *testing.T) {
	spec := env.DefaultLevelSpec()
	spec.Walkable = []geom.Rect{{X: 0, Y: 0, W: spec.Width, H: spec.Height}}
	spec.Spawn = geom.Point{X: 300, Y: 100}
	spec.EnemySpeed = 0
	spec.EnemyLeftWall = 0
	spec.EnemyRightWall = 1000
	spec.EnemyLeftStart = 305
	// two enemies parked on top of each other over the spawn
	spec.Lanes = []env.Lane{{Y: 110, StartsLeft: true}, {Y: 110, StartsLeft: true}}
	level, err := env.NewLevel(spec)
	require.NoError(t, err)

	cs, scores := candidates(steer(env.Stay))
	e := New(level, DefaultOptions(), cs)
	e.Step()

	mirror := level.NewPlayer()
	mirror.Move(0, 0)
	assert.Zero(t, e.Alive())
	assert.InDelta(t, mirror.Fitness-1, scores[0].Fitness(), 1e-9)
}

func TestStallCulling(t *testing.T) {
	opts := DefaultOptions()
	opts.Budget = 100
	cs, scores := candidates(
		steer(env.Stay),
		steer(env.Move{DX: 1}), // walks to x=290 and is blocked there, just out of the zone
		steer(env.Stay),
	)
	e := New(defaultLevel(t), opts, cs)

	for tick := 0; tick < 30; tick++ {
		e.Step()
	}
	require.Equal(t, 3, e.Alive(), "culling never fires before tick 30")

	e.Step()
	assert.Equal(t, 1, e.Alive())
	assertConsistent(t, e)

	res := e.Finish()
	assert.Equal(t, env.ReasonStalled, res.Outcomes[0].Reason)
	assert.Equal(t, 30, res.Outcomes[0].Tick)
	assert.Equal(t, env.ReasonTimeout, res.Outcomes[1].Reason)
	assert.Equal(t, 290.0, res.Outcomes[1].X)
	assert.Equal(t, env.ReasonStalled, res.Outcomes[2].Reason)
	// culling carries no penalty
	assert.Zero(t, scores[0].Fitness())
}

func TestStallCullingDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Budget = 61
	opts.StallEvery = 0
	cs, _ := candidates(steer(env.Stay), steer(env.Stay))

	res := New(defaultLevel(t), opts, cs).Run(context.Background(), nil)

	assert.Equal(t, 61, res.Ticks)
	for _, o := range res.Outcomes {
		assert.Equal(t, env.ReasonTimeout, o.Reason)
	}
}

func TestStallCullingNeverAtTickZero(t *testing.T) {
	opts := DefaultOptions()
	opts.StallEvery = 1
	cs, _ := candidates(steer(env.Stay))
	e := New(defaultLevel(t), opts, cs)

	e.Step()
	assert.Equal(t, 1, e.Alive())
	e.Step()
	assert.Zero(t, e.Alive())
}

func TestTerminatesWithinBudget(t *testing.T) {
	for _, budget := range []int{1, 7, 50} {
		opts := DefaultOptions()
		opts.Budget = budget
		cs, _ := candidates(steer(env.Move{DX: 1, DY: -1}), PolicyFunc(func(obs []float64) []float64 {
			return []float64{obs[0]}
		}))
		e := New(defaultLevel(t), opts, cs)

		steps := 0
		for !e.Done() {
			e.Step()
			steps++
			require.LessOrEqual(t, steps, budget+1)
		}
		assert.LessOrEqual(t, e.Tick(), budget)
	}
}

func TestRunObservesCancellationBetweenTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := DefaultOptions()
	opts.Generation = 7
	cs, scores := candidates(steer(env.Move{DX: 1}), steer(env.Stay))
	e := New(defaultLevel(t), opts, cs)

	var seen []int
	res := e.Run(ctx, func(s Snapshot) {
		seen = append(seen, s.Tick)
		assert.Equal(t, 7, s.Generation)
		if s.Tick == 3 {
			cancel()
		}
	})

	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.True(t, res.Interrupted)
	assert.Equal(t, 3, res.Ticks)
	assert.Equal(t, 7, res.Generation)
	for i, o := range res.Outcomes {
		assert.Equal(t, env.ReasonInterrupted, o.Reason)
		assert.Equal(t, scores[i].Fitness(), o.Fitness)
	}
}

func TestObservationModes(t *testing.T) {
	var basic, enemy []float64
	record := func(dst *[]float64) Policy {
		return PolicyFunc(func(obs []float64) []float64 {
			*dst = append([]float64(nil), obs...)
			return []float64{4}
		})
	}

	cs, _ := candidates(record(&basic))
	opts := DefaultOptions()
	New(defaultLevel(t), opts, cs).Step()

	cs2, _ := candidates(record(&enemy))
	opts.Observation = env.ObsEnemy
	New(defaultLevel(t), opts, cs2).Step()

	assert.Equal(t, []float64{0, 250, 420}, basic)
	require.Len(t, enemy, 6)
	assert.Equal(t, basic, enemy[:3])
	assert.Positive(t, enemy[3])
	assert.InDelta(t, 1.0, math.Hypot(enemy[4], enemy[5]), 1e-9)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		p    Policy
		want env.Move
	}{
		{"first output", PolicyFunc(func([]float64) []float64 { return []float64{4.2, 0} }), env.Move{DX: 1}},
		{"no output", PolicyFunc(func([]float64) []float64 { return nil }), env.Move{DX: 1, DY: 1}},
		{"nan", PolicyFunc(func([]float64) []float64 { return []float64{math.NaN()} }), env.Move{DX: 1, DY: 1}},
		{"steering stay", steer(env.Stay), env.Stay},
		{"steering clamps", steer(env.Move{DX: 3, DY: -2}), env.Move{DX: 1, DY: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.p, []float64{0, 0, 0}))
		})
	}
}
