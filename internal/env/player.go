package env

import (
	"math"

	"hardestai/internal/geom"
)

// Player is the square the agents steer. X, Y is the sprite's top-left corner.
type Player struct {
	X, Y    float64
	Fitness float64 // best fitness observed this episode
	Steps   int     // ticks survived

	level *Level
}

// Move proposes a displacement of (dx, dy) * speed. A move that would put the
// sprite into a wall is undone exactly. Fitness is recomputed either way.
func (p *Player) Move(dx, dy int) {
	vx := float64(dx) * p.level.PlayerSpeed
	vy := float64(dy) * p.level.PlayerSpeed
	p.X += vx
	p.Y += vy
	p.Steps++

	if p.HitsWall() {
		p.X -= vx
		p.Y -= vy
	}

	p.UpdateFitness()
}

// HitsWall reports whether the sprite overlaps the level walls at its current position.
func (p *Player) HitsWall() bool {
	return p.level.Walls.Overlaps(p.level.PlayerSprite, geom.Round(p.X), geom.Round(p.Y))
}

// InStartZone reports whether the player has not yet left the start zone.
func (p *Player) InStartZone() bool {
	return p.X < p.level.StartLine-float64(p.level.PlayerSize)
}

// Finished reports whether the player is past the finish line.
func (p *Player) Finished() bool {
	return p.X > p.level.FinishLine-float64(p.level.PlayerSize)
}

// Score returns the fitness value of the current position, ignoring the ratchet.
func (p *Player) Score() float64 {
	f := p.level.Fitness
	switch {
	case p.Finished():
		steps := float64(max(p.Steps, 1))
		return f.FinishBase + f.FinishBonus/(steps*steps)
	case p.X > p.level.StartLine-float64(p.level.PlayerSize):
		return f.MiddleBase - p.level.Goal.Dist(p.Position())
	default:
		return f.StartBase - p.level.Goal.Dist(p.Position())
	}
}

// UpdateFitness ratchets Fitness up to the score of the current position.
// Fitness starts at zero, so negative scores near the spawn leave it there.
func (p *Player) UpdateFitness() {
	p.Fitness = math.Max(p.Fitness, p.Score())
}

// ClosestEnemy returns the distance to the nearest enemy and the unit vector
// pointing at it. With no enemies it returns (+Inf, 0, 0); an enemy sitting
// exactly on the player yields a zero vector.
func (p *Player) ClosestEnemy(enemies []Enemy) (dist, ux, uy float64) {
	dist = math.Inf(1)
	var nearest *Enemy
	for i := range enemies {
		d := p.Position().Dist(enemies[i].Position())
		if d < dist {
			dist = d
			nearest = &enemies[i]
		}
	}
	if nearest == nil || dist == 0 {
		return dist, 0, 0
	}
	return dist, (nearest.X - p.X) / dist, (nearest.Y - p.Y) / dist
}

// Position returns the sprite's top-left corner.
func (p *Player) Position() geom.Point {
	return geom.Point{X: p.X, Y: p.Y}
}
