package env

import "hardestai/internal/geom"

// Enemy is a disc patrolling its lane horizontally.
type Enemy struct {
	X, Y float64
	Dir  int // +1 moving right, -1 moving left

	level *Level
}

// Bounds returns the patrol range of the enemy's x coordinate.
func (e *Enemy) Bounds() (minX, maxX float64) {
	return e.level.EnemyLeftWall, e.level.EnemyRightWall - float64(e.level.EnemySize)
}

// Move advances the enemy one tick, reversing at either bound.
func (e *Enemy) Move() {
	e.X += float64(e.Dir) * e.level.EnemySpeed

	minX, maxX := e.Bounds()
	if e.X <= minX {
		e.X = minX
		e.Dir = 1
	}
	if e.X >= maxX {
		e.X = maxX
		e.Dir = -1
	}
}

// Collide reports whether the enemy's disc overlaps the player's square.
func (e *Enemy) Collide(p *Player) bool {
	dx, dy := geom.Offset(e.X, e.Y, p.X, p.Y)
	return e.level.EnemySprite.Overlaps(e.level.PlayerSprite, dx, dy)
}

// Position returns the sprite's top-left corner.
func (e *Enemy) Position() geom.Point {
	return geom.Point{X: e.X, Y: e.Y}
}
