package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardestai/internal/env"
	"hardestai/internal/episode"
	"hardestai/internal/geom"
)

func TestMoves(t *testing.T) {
	tests := []struct {
		tick, budget int
		want         string
	}{
		{0, 0, "Infinite"},
		{42, 0, "Infinite"},
		{3, -1, "Infinite"},
		{0, 50, "0/50"},
		{17, 60, "17/60"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Moves(tt.tick, tt.budget))
	}
}

func TestIsPad(t *testing.T) {
	level, err := env.NewLevel(env.DefaultLevelSpec())
	require.NoError(t, err)
	r := NewRenderer(level, DefaultPalette())

	tests := []struct {
		name string
		rect geom.Rect
		want bool
	}{
		{"start pad", geom.Rect{X: 150, Y: 375, W: 150, H: 100}, true},
		{"start connector", geom.Rect{X: 300, Y: 375, W: 50, H: 50}, false},
		{"arena", geom.Rect{X: 350, Y: 175, W: 500, H: 250}, false},
		{"finish connector", geom.Rect{X: 850, Y: 175, W: 50, H: 50}, false},
		{"finish pad", geom.Rect{X: 900, Y: 125, W: 150, H: 100}, true},
		{"straddles start line", geom.Rect{X: 290, Y: 375, W: 20, H: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.isPad(tt.rect))
		})
	}
}

func TestNewHUDData(t *testing.T) {
	hud := NewHUDData(episode.Snapshot{Generation: 4, Tick: 12, Budget: 70, Alive: 33})
	assert.Equal(t, HUDData{Generation: 4, Tick: 12, Budget: 70, Alive: 33}, hud)
}
