package env

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionFromOutput(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want Move
	}{
		{"zero", 0, Move{-1, -1}},
		{"fraction floors", 3.9, Move{-1, 0}},
		{"four", 4, Move{1, 0}},
		{"wraps", 9.5, Move{0, -1}},
		{"negative floors down", -0.5, Move{1, 1}},
		{"negative wraps", -9, Move{1, 1}},
		{"nan", math.NaN(), Move{1, 1}},
		{"inf", math.Inf(1), Move{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DirectionFromOutput(tt.v))
		})
	}
}

func TestCompassExcludesStay(t *testing.T) {
	for _, m := range Compass {
		assert.NotEqual(t, Stay, m)
	}
}

func TestMoveClamp(t *testing.T) {
	assert.Equal(t, Move{1, -1}, Move{5, -3}.Clamp())
	assert.Equal(t, Stay, Move{}.Clamp())
}
