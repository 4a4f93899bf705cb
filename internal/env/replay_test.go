package env

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaySaveLoad(t *testing.T) {
	r := NewReplay(12, 345, 110)
	r.Record(Move{DX: 1})
	r.Record(Stay)
	r.Record(Move{DX: -1, DY: 1})
	r.SetOutcome(Outcome{AgentID: 345, Reason: ReasonCollided, Tick: 2, Steps: 3, X: 255, Y: 425, Fitness: 12.5})

	path := filepath.Join(t.TempDir(), "nested", "replay.json")
	require.NoError(t, r.Save(path))

	loaded, err := LoadReplay(path)
	require.NoError(t, err)
	assert.Equal(t, r, loaded)
}

func TestLoadReplayMissingFile(t *testing.T) {
	_, err := LoadReplay(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestReplayCursor(t *testing.T) {
	r := NewReplay(0, 1, 0)
	r.Record(Move{DX: 1, DY: -1})
	r.Record(Move{DY: 1})

	c := r.Cursor()
	assert.False(t, c.Done())
	assert.Nil(t, c.Activate(nil))
	assert.Equal(t, Move{DX: 1, DY: -1}, c.Steer(nil))
	assert.Equal(t, Move{DY: 1}, c.Steer(nil))
	assert.True(t, c.Done())
	assert.Equal(t, Stay, c.Steer(nil), "an exhausted trace stays put")

	// cursors are independent
	assert.Equal(t, Move{DX: 1, DY: -1}, r.Cursor().Steer(nil))
}

func TestReasonText(t *testing.T) {
	for _, r := range append([]Reason{ReasonNone}, Reasons...) {
		data, err := json.Marshal(r)
		require.NoError(t, err)

		var back Reason
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, r, back)
	}

	data, err := json.Marshal(ReasonStalled)
	require.NoError(t, err)
	assert.JSONEq(t, `"stalled"`, string(data))

	var r Reason
	assert.Error(t, r.UnmarshalText([]byte("eaten")))
}

func TestCountOutcomes(t *testing.T) {
	outcomes := []Outcome{
		{Reason: ReasonCollided},
		{Reason: ReasonCollided},
		{Reason: ReasonTimeout, Finished: true},
		{Reason: ReasonStalled},
	}

	counts := CountReasons(outcomes)
	assert.Equal(t, 2, counts[ReasonCollided])
	assert.Equal(t, 1, counts[ReasonStalled])
	assert.Equal(t, 1, counts[ReasonTimeout])
	assert.Zero(t, counts[ReasonInterrupted])
	assert.Equal(t, 1, CountFinished(outcomes))
}

func TestFeatureExtractor(t *testing.T) {
	level := defaultLevel(t)
	p := level.NewPlayer()

	basic := NewFeatureExtractor(ObsBasic, level)
	assert.Equal(t, []float64{7, 250, 420}, basic.Extract(7, &p, level.NewEnemies()))

	withEnemy := NewFeatureExtractor(ObsEnemy, level)
	obs := withEnemy.Extract(0, &p, nil)
	require.Len(t, obs, ObsDim(ObsEnemy))
	assert.InDelta(t, level.Diagonal(), obs[3], 1e-9, "no enemies reads as the level diagonal")
	assert.Zero(t, obs[4])
	assert.Zero(t, obs[5])
}
