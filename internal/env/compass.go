package env

import (
	"fmt"
	"math"
)

// Move is one step of the player in grid units, each component in {-1, 0, 1}.
type Move struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// Stay is the zero move.
var Stay = Move{}

// Compass lists the eight directions a network output can select.
var Compass = [8]Move{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// DirectionFromOutput maps a network output onto the compass by floor(v) mod 8.
// Non-finite values select the last direction.
func DirectionFromOutput(v float64) Move {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Compass[len(Compass)-1]
	}
	m := math.Mod(math.Floor(v), float64(len(Compass)))
	if m < 0 {
		m += float64(len(Compass))
	}
	return Compass[int(m)]
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.DX, m.DY)
}

// Clamp limits both components to {-1, 0, 1}.
func (m Move) Clamp() Move {
	return Move{DX: sign(m.DX), DY: sign(m.DY)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
