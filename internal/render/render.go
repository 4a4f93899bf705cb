// Package render draws episode snapshots with raylib.
package render

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"hardestai/internal/env"
	"hardestai/internal/episode"
	"hardestai/internal/geom"
)

// Tile is the edge length of the checkerboard floor tiles.
const Tile = 25

// Palette holds the colors of a frame.
type Palette struct {
	Background rl.Color
	FloorLight rl.Color
	FloorDark  rl.Color
	Pad        rl.Color
	Outline    rl.Color
	Player     rl.Color
	Enemy      rl.Color
	Text       rl.Color
	Hint       rl.Color
}

// DefaultPalette mimics the level 1 look.
func DefaultPalette() Palette {
	return Palette{
		Background: rl.NewColor(180, 181, 254, 255),
		FloorLight: rl.NewColor(247, 247, 255, 255),
		FloorDark:  rl.NewColor(224, 218, 254, 255),
		Pad:        rl.NewColor(181, 254, 180, 255),
		Outline:    rl.Black,
		Player:     rl.NewColor(255, 0, 0, 255),
		Enemy:      rl.NewColor(0, 0, 255, 255),
		Text:       rl.White,
		Hint:       rl.DarkGray,
	}
}

// HUDData is the text overlay of a frame.
type HUDData struct {
	Generation int
	Tick       int
	Budget     int // 0 means unlimited
	Alive      int
	Status     string // optional line under the counters
	Controls   string // optional legend at the bottom
}

// NewHUDData fills the counters from a snapshot.
func NewHUDData(s episode.Snapshot) HUDData {
	return HUDData{
		Generation: s.Generation,
		Tick:       s.Tick,
		Budget:     s.Budget,
		Alive:      s.Alive,
	}
}

// Renderer draws a level, the actors of a snapshot and the HUD.
type Renderer struct {
	level   *env.Level
	palette Palette
}

// NewRenderer creates a renderer for level.
func NewRenderer(level *env.Level, palette Palette) *Renderer {
	return &Renderer{level: level, palette: palette}
}

// Frame draws one complete frame. It must be called between BeginDrawing and
// EndDrawing.
func (r *Renderer) Frame(s episode.Snapshot, hud HUDData) {
	rl.ClearBackground(r.palette.Background)
	r.DrawLevel()
	r.DrawEnemies(s.Enemies)
	r.DrawPlayers(s.Players)
	r.DrawHUD(hud)
}

// DrawLevel draws the walkable area as a checkerboard with the start and
// finish pads highlighted.
func (r *Renderer) DrawLevel() {
	for _, rect := range r.level.Walkable {
		if r.isPad(rect) {
			rl.DrawRectangle(int32(rect.X), int32(rect.Y), int32(rect.W), int32(rect.H), r.palette.Pad)
			continue
		}
		r.checker(rect)
	}
	for _, rect := range r.level.Walkable {
		r.outline(rect)
	}
}

func (r *Renderer) isPad(rect geom.Rect) bool {
	return float64(rect.X+rect.W) <= r.level.StartLine || float64(rect.X) >= r.level.FinishLine
}

func (r *Renderer) checker(rect geom.Rect) {
	for y := rect.Y; y < rect.Y+rect.H; y += Tile - y%Tile {
		h := min(Tile-y%Tile, rect.Y+rect.H-y)
		for x := rect.X; x < rect.X+rect.W; x += Tile - x%Tile {
			w := min(Tile-x%Tile, rect.X+rect.W-x)
			col := r.palette.FloorLight
			if (x/Tile+y/Tile)%2 == 1 {
				col = r.palette.FloorDark
			}
			rl.DrawRectangle(int32(x), int32(y), int32(w), int32(h), col)
		}
	}
}

// outline traces the edges of rect that border a wall.
func (r *Renderer) outline(rect geom.Rect) {
	walls := r.level.Walls
	for x := rect.X; x < rect.X+rect.W; x++ {
		if walls.Get(x, rect.Y-1) {
			rl.DrawPixel(int32(x), int32(rect.Y-1), r.palette.Outline)
		}
		if walls.Get(x, rect.Y+rect.H) {
			rl.DrawPixel(int32(x), int32(rect.Y+rect.H), r.palette.Outline)
		}
	}
	for y := rect.Y; y < rect.Y+rect.H; y++ {
		if walls.Get(rect.X-1, y) {
			rl.DrawPixel(int32(rect.X-1), int32(y), r.palette.Outline)
		}
		if walls.Get(rect.X+rect.W, y) {
			rl.DrawPixel(int32(rect.X+rect.W), int32(y), r.palette.Outline)
		}
	}
}

// DrawPlayers draws every live player as an outlined square. Crowds are
// drawn translucent.
func (r *Renderer) DrawPlayers(players []episode.PlayerView) {
	size := int32(r.level.PlayerSize)
	fill := r.palette.Player
	if len(players) > 1 {
		fill = rl.Fade(fill, 0.4)
	}
	for _, p := range players {
		x, y := int32(geom.Round(p.X)), int32(geom.Round(p.Y))
		rl.DrawRectangle(x, y, size, size, fill)
		rl.DrawRectangleLines(x, y, size, size, r.palette.Outline)
	}
}

// DrawEnemies draws every enemy as an outlined disc.
func (r *Renderer) DrawEnemies(enemies []episode.EnemyView) {
	radius := float32(r.level.EnemySize) / 2
	for _, e := range enemies {
		cx := int32(geom.Round(e.X)) + int32(r.level.EnemySize/2)
		cy := int32(geom.Round(e.Y)) + int32(r.level.EnemySize/2)
		rl.DrawCircle(cx, cy, radius, r.palette.Outline)
		rl.DrawCircle(cx, cy, radius-3, r.palette.Enemy)
	}
}

// DrawHUD draws the counters in the top-left corner.
func (r *Renderer) DrawHUD(hud HUDData) {
	rl.DrawText(fmt.Sprintf("Gen: %d", hud.Generation), 10, 10, 30, r.palette.Text)
	rl.DrawText("Moves: "+Moves(hud.Tick, hud.Budget), 10, 45, 30, r.palette.Text)
	rl.DrawText(fmt.Sprintf("Alive: %d", hud.Alive), 10, 80, 30, r.palette.Text)

	if hud.Status != "" {
		rl.DrawText(hud.Status, 10, 120, 20, rl.Yellow)
	}
	if hud.Controls != "" {
		rl.DrawText(hud.Controls, 10, int32(r.level.Height)-25, 16, r.palette.Hint)
	}
}

// Moves formats the move counter, "Infinite" for unlimited budgets.
func Moves(tick, budget int) string {
	if budget <= 0 {
		return "Infinite"
	}
	return fmt.Sprintf("%d/%d", tick, budget)
}
