package env

import "math"

// Observation types.
const (
	ObsBasic = "basic" // tick, x, y
	ObsEnemy = "enemy" // basic + distance and direction to the closest enemy
)

// FeatureExtractor builds observation vectors for the decision function.
type FeatureExtractor struct {
	obsType string
	level   *Level
	buffer  []float64
}

// NewFeatureExtractor creates a feature extractor for the given observation type.
func NewFeatureExtractor(obsType string, level *Level) *FeatureExtractor {
	return &FeatureExtractor{
		obsType: obsType,
		level:   level,
		buffer:  make([]float64, ObsDim(obsType)),
	}
}

// ObsDim returns the observation dimension for the given type.
func ObsDim(obsType string) int {
	switch obsType {
	case ObsEnemy:
		return 6
	default:
		return 3
	}
}

// Extract builds the observation for p at the given tick.
// Returns a slice that should not be modified (internal buffer).
func (f *FeatureExtractor) Extract(tick int, p *Player, enemies []Enemy) []float64 {
	f.buffer[0] = float64(tick)
	f.buffer[1] = p.X
	f.buffer[2] = p.Y

	if f.obsType == ObsEnemy {
		dist, ux, uy := p.ClosestEnemy(enemies)
		if math.IsInf(dist, 1) {
			dist = f.level.Diagonal()
		}
		f.buffer[3] = dist
		f.buffer[4] = ux
		f.buffer[5] = uy
	}
	return f.buffer
}
