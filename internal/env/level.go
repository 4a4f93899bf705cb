package env

import (
	"errors"
	"fmt"

	"hardestai/internal/geom"
)

// Lane is one enemy patrol lane.
type Lane struct {
	Y          float64 // lane center line
	StartsLeft bool
}

// FitnessSpec holds the constants of the three-tier fitness formula.
type FitnessSpec struct {
	FinishBase  float64 // fitness floor once past the finish line
	FinishBonus float64 // divided by steps² to reward fast finishes
	MiddleBase  float64 // base for the area between start and finish lines
	StartBase   float64 // base while still in the start zone
}

// LevelSpec describes the static level layout and actor parameters.
type LevelSpec struct {
	Width, Height int
	Walkable      []geom.Rect // everything else is wall
	Spawn         geom.Point
	Goal          geom.Point
	StartLine     float64
	FinishLine    float64

	PlayerSize  int
	PlayerSpeed float64

	EnemySize       int // sprite width (the disc diameter)
	EnemySpeed      float64
	EnemyLeftWall   float64 // leftmost enemy x
	EnemyRightWall  float64 // rightmost enemy edge; max x is RightWall - EnemySize
	EnemyLeftStart  float64
	EnemyRightStart float64
	Lanes           []Lane

	Fitness FitnessSpec
}

// DefaultLevelSpec returns level 1 of the original game.
func DefaultLevelSpec() LevelSpec {
	return LevelSpec{
		Width:  1200,
		Height: 600,
		Walkable: []geom.Rect{
			{X: 150, Y: 375, W: 150, H: 100}, // start pad
			{X: 300, Y: 375, W: 50, H: 50},   // start connector
			{X: 350, Y: 175, W: 500, H: 250}, // enemy arena
			{X: 850, Y: 175, W: 50, H: 50},   // finish connector
			{X: 900, Y: 125, W: 150, H: 100}, // finish pad
		},
		Spawn:      geom.Point{X: 250, Y: 420},
		Goal:       geom.Point{X: 900, Y: 175},
		StartLine:  300,
		FinishLine: 900,

		PlayerSize:  10,
		PlayerSpeed: 5,

		EnemySize:       20,
		EnemySpeed:      10,
		EnemyLeftWall:   352,
		EnemyRightWall:  848,
		EnemyLeftStart:  375,
		EnemyRightStart: 825,
		Lanes: []Lane{
			{Y: 225, StartsLeft: true},
			{Y: 275, StartsLeft: false},
			{Y: 325, StartsLeft: true},
			{Y: 375, StartsLeft: false},
		},

		Fitness: FitnessSpec{
			FinishBase:  1000,
			FinishBonus: 10000,
			MiddleBase:  700,
			StartBase:   600,
		},
	}
}

// Level is an immutable, validated level with its precomputed masks.
type Level struct {
	LevelSpec

	Walls        *geom.Mask
	PlayerSprite *geom.Mask
	EnemySprite  *geom.Mask
}

// NewLevel validates spec and builds the wall and sprite masks.
func NewLevel(spec LevelSpec) (*Level, error) {
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("invalid level: %w", err)
	}

	walls := geom.NewMask(spec.Width, spec.Height)
	walls.FillRect(0, 0, spec.Width, spec.Height, true)
	for _, r := range spec.Walkable {
		walls.FillRect(r.X, r.Y, r.W, r.H, false)
	}

	l := &Level{
		LevelSpec:    spec,
		Walls:        walls,
		PlayerSprite: geom.RectMask(spec.PlayerSize, spec.PlayerSize),
		EnemySprite:  geom.Circle(spec.EnemySize),
	}
	if l.Walls.Overlaps(l.PlayerSprite, geom.Round(spec.Spawn.X), geom.Round(spec.Spawn.Y)) {
		return nil, fmt.Errorf("invalid level: spawn (%.0f, %.0f) overlaps a wall", spec.Spawn.X, spec.Spawn.Y)
	}
	return l, nil
}

func (s LevelSpec) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("size %dx%d must be positive", s.Width, s.Height)
	}
	walkable := false
	for _, r := range s.Walkable {
		if !r.Empty() {
			walkable = true
			break
		}
	}
	if !walkable {
		return errors.New("no walkable area")
	}
	if s.PlayerSize <= 0 {
		return fmt.Errorf("player size %d must be positive", s.PlayerSize)
	}
	if s.EnemySize <= 0 {
		return fmt.Errorf("enemy size %d must be positive", s.EnemySize)
	}
	if s.PlayerSpeed < 0 || s.EnemySpeed < 0 {
		return errors.New("speeds must not be negative")
	}
	if s.EnemyLeftWall > s.EnemyRightWall-float64(s.EnemySize) {
		return fmt.Errorf("enemy patrol [%.0f, %.0f] is empty", s.EnemyLeftWall, s.EnemyRightWall-float64(s.EnemySize))
	}
	return nil
}

// NewPlayer returns a fresh player at the spawn point.
func (l *Level) NewPlayer() Player {
	return Player{X: l.Spawn.X, Y: l.Spawn.Y, level: l}
}

// NewEnemies builds one enemy per lane in lane order.
func (l *Level) NewEnemies() []Enemy {
	enemies := make([]Enemy, len(l.Lanes))
	for i, lane := range l.Lanes {
		enemies[i] = l.NewEnemy(lane)
	}
	return enemies
}

// NewEnemy places an enemy on its lane's start position.
func (l *Level) NewEnemy(lane Lane) Enemy {
	half := float64(l.EnemySize / 2)
	e := Enemy{Y: lane.Y - half, level: l}
	if lane.StartsLeft {
		e.X = l.EnemyLeftStart - half
		e.Dir = 1
	} else {
		e.X = l.EnemyRightStart - half
		e.Dir = -1
	}
	return e
}

// Diagonal returns the length of the level diagonal.
func (l *Level) Diagonal() float64 {
	return geom.Point{}.Dist(geom.Point{X: float64(l.Width), Y: float64(l.Height)})
}
