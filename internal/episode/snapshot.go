package episode

// PlayerView is the read-only state of one live agent.
type PlayerView struct {
	ID      int
	X, Y    float64
	Fitness float64
	Steps   int
}

// EnemyView is the read-only state of one enemy.
type EnemyView struct {
	X, Y float64
	Dir  int
}

// Snapshot is a copy of everything a frame needs to draw.
type Snapshot struct {
	Generation int
	Tick       int
	Budget     int
	Alive      int
	Players    []PlayerView // live agents in input order
	Enemies    []EnemyView
}

// Snapshot copies the current episode state.
func (e *Episode) Snapshot() Snapshot {
	s := Snapshot{
		Generation: e.opts.Generation,
		Tick:       e.tick,
		Budget:     e.opts.Budget,
		Alive:      len(e.roster),
		Players:    make([]PlayerView, 0, len(e.roster)),
		Enemies:    make([]EnemyView, 0, len(e.enemies)),
	}
	for _, entity := range e.roster {
		p, b := e.agents.Get(entity)
		s.Players = append(s.Players, PlayerView{ID: b.id, X: p.X, Y: p.Y, Fitness: p.Fitness, Steps: p.Steps})
	}
	for _, en := range e.enemies {
		s.Enemies = append(s.Enemies, EnemyView{X: en.X, Y: en.Y, Dir: en.Dir})
	}
	return s
}
