// Package config loads training and play configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"hardestai/internal/env"
	"hardestai/internal/episode"
	"hardestai/internal/ga"
	"hardestai/internal/geom"
	"hardestai/internal/nn"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the root configuration structure
type Config struct {
	Seed    int64         `yaml:"seed"`
	Level   LevelConfig   `yaml:"level"`
	Player  PlayerConfig  `yaml:"player"`
	Enemy   EnemyConfig   `yaml:"enemy"`
	Fitness FitnessConfig `yaml:"fitness"`
	Episode EpisodeConfig `yaml:"episode"`
	NN      NNConfig      `yaml:"nn"`
	GA      GAConfig      `yaml:"ga"`
	Logging LogConfig     `yaml:"logging"`
	Store   StoreConfig   `yaml:"store"`
	Render  RenderConfig  `yaml:"render"`
}

// LevelConfig defines the static level geometry
type LevelConfig struct {
	Width      int          `yaml:"width"`
	Height     int          `yaml:"height"`
	Walkable   []RectConfig `yaml:"walkable"` // everything else is wall
	Spawn      PointConfig  `yaml:"spawn"`
	Goal       PointConfig  `yaml:"goal"`
	StartLine  float64      `yaml:"start_line"`
	FinishLine float64      `yaml:"finish_line"`
}

// RectConfig is an axis-aligned rectangle in pixels.
type RectConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// PointConfig is a screen position.
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PlayerConfig defines the player square
type PlayerConfig struct {
	Size  int     `yaml:"size"`
	Speed float64 `yaml:"speed"`
}

// EnemyConfig defines the enemy discs and their patrol lanes
type EnemyConfig struct {
	Size       int          `yaml:"size"`
	Speed      float64      `yaml:"speed"`
	LeftWall   float64      `yaml:"left_wall"`
	RightWall  float64      `yaml:"right_wall"`
	LeftStart  float64      `yaml:"left_start"`
	RightStart float64      `yaml:"right_start"`
	Lanes      []LaneConfig `yaml:"lanes"`
}

// LaneConfig is one patrol lane.
type LaneConfig struct {
	Y          float64 `yaml:"y"`
	StartsLeft bool    `yaml:"starts_left"`
}

// FitnessConfig defines fitness function parameters
type FitnessConfig struct {
	FinishBase       float64 `yaml:"finish_base"`
	FinishBonus      float64 `yaml:"finish_bonus"`
	MiddleBase       float64 `yaml:"middle_base"`
	StartBase        float64 `yaml:"start_base"`
	CollisionPenalty float64 `yaml:"collision_penalty"`
}

// EpisodeConfig defines the per-generation simulation policy
type EpisodeConfig struct {
	Budget      episode.BudgetSpec `yaml:"budget"`
	StallEvery  int                `yaml:"stall_every"` // 0 disables stall-culling
	Observation string             `yaml:"observation"` // basic|enemy
}

// NNConfig defines neural network architecture
type NNConfig struct {
	Hidden1    int    `yaml:"hidden1"`
	Hidden2    int    `yaml:"hidden2"`
	Activation string `yaml:"activation"` // relu|tanh|sigmoid
}

// GAConfig defines genetic algorithm parameters
type GAConfig struct {
	Population     int     `yaml:"population"`
	Elites         int     `yaml:"elites"`
	SelectionPool  int     `yaml:"selection_pool"`
	TournamentK    int     `yaml:"tournament_k"`
	Crossover      string  `yaml:"crossover"` // uniform|single_point|blend
	CrossoverRate  float64 `yaml:"crossover_rate"`
	MutationRate   float64 `yaml:"mutation_rate"`
	MutationSigma  float64 `yaml:"mutation_sigma"`
	ResetMutationP float64 `yaml:"reset_mutation_p"`
	ResetFraction  float64 `yaml:"reset_fraction"`
	ResetChance    float64 `yaml:"reset_chance"`
}

// LogConfig defines logging parameters
type LogConfig struct {
	Level             string `yaml:"level"`  // debug|info|warn|error
	Format            string `yaml:"format"` // text|json
	EveryGenSummary   bool   `yaml:"every_gen_summary"`
	TopNDebug         int    `yaml:"topn_debug"`
	SaveChampionEvery int    `yaml:"save_champion_every"`
	ReplayEvery       int    `yaml:"replay_every"`
	CSVPath           string `yaml:"csv_path"`
	JSONPath          string `yaml:"json_path"`
	ArtifactsDir      string `yaml:"artifacts_dir"`
}

// StoreConfig selects the run history backend
type StoreConfig struct {
	Kind string `yaml:"kind"` // memory|sqlite
	Path string `yaml:"path"`
}

// RenderConfig defines windowed play
type RenderConfig struct {
	TPS int `yaml:"tps"` // logical ticks per second
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section for values the simulation cannot run with.
func (c *Config) Validate() error {
	if _, err := env.NewLevel(c.LevelSpec()); err != nil {
		return err
	}
	if err := c.Episode.Budget.Validate(); err != nil {
		return fmt.Errorf("episode: %w", err)
	}
	if c.Episode.StallEvery < 0 {
		return fmt.Errorf("episode: stall_every %d must not be negative", c.Episode.StallEvery)
	}
	if c.Episode.Observation != env.ObsBasic && c.Episode.Observation != env.ObsEnemy {
		return fmt.Errorf("episode: unknown observation %q", c.Episode.Observation)
	}
	if err := c.NNShape().Validate(); err != nil {
		return fmt.Errorf("nn: %w", err)
	}
	if err := c.GAParams().Validate(); err != nil {
		return fmt.Errorf("ga: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging: unknown format %q", c.Logging.Format)
	}
	switch c.Store.Kind {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return errors.New("store: sqlite needs a path")
		}
	default:
		return fmt.Errorf("store: unknown kind %q", c.Store.Kind)
	}
	if c.Render.TPS <= 0 {
		return fmt.Errorf("render: tps %d must be positive", c.Render.TPS)
	}
	return nil
}

// LevelSpec converts the level, actor, and fitness sections.
func (c *Config) LevelSpec() env.LevelSpec {
	walkable := make([]geom.Rect, len(c.Level.Walkable))
	for i, r := range c.Level.Walkable {
		walkable[i] = geom.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
	}
	lanes := make([]env.Lane, len(c.Enemy.Lanes))
	for i, l := range c.Enemy.Lanes {
		lanes[i] = env.Lane{Y: l.Y, StartsLeft: l.StartsLeft}
	}
	return env.LevelSpec{
		Width:      c.Level.Width,
		Height:     c.Level.Height,
		Walkable:   walkable,
		Spawn:      geom.Point{X: c.Level.Spawn.X, Y: c.Level.Spawn.Y},
		Goal:       geom.Point{X: c.Level.Goal.X, Y: c.Level.Goal.Y},
		StartLine:  c.Level.StartLine,
		FinishLine: c.Level.FinishLine,

		PlayerSize:  c.Player.Size,
		PlayerSpeed: c.Player.Speed,

		EnemySize:       c.Enemy.Size,
		EnemySpeed:      c.Enemy.Speed,
		EnemyLeftWall:   c.Enemy.LeftWall,
		EnemyRightWall:  c.Enemy.RightWall,
		EnemyLeftStart:  c.Enemy.LeftStart,
		EnemyRightStart: c.Enemy.RightStart,
		Lanes:           lanes,

		Fitness: env.FitnessSpec{
			FinishBase:  c.Fitness.FinishBase,
			FinishBonus: c.Fitness.FinishBonus,
			MiddleBase:  c.Fitness.MiddleBase,
			StartBase:   c.Fitness.StartBase,
		},
	}
}

// EpisodeOptions returns the episode options for a generation.
func (c *Config) EpisodeOptions(generation int) episode.Options {
	return episode.Options{
		Generation:  generation,
		Budget:      c.Episode.Budget.Budget(generation),
		StallEvery:  c.Episode.StallEvery,
		Penalty:     c.Fitness.CollisionPenalty,
		Observation: c.Episode.Observation,
	}
}

// NNShape returns the network architecture. The single output selects a direction.
func (c *Config) NNShape() nn.Shape {
	return nn.Shape{
		Inputs:     env.ObsDim(c.Episode.Observation),
		Hidden1:    c.NN.Hidden1,
		Hidden2:    c.NN.Hidden2,
		Outputs:    1,
		Activation: c.NN.Activation,
	}
}

// GAParams returns the breeding parameters.
func (c *Config) GAParams() ga.Params {
	return ga.Params{
		Population:     c.GA.Population,
		Elites:         c.GA.Elites,
		SelectionPool:  c.GA.SelectionPool,
		TournamentK:    c.GA.TournamentK,
		Crossover:      c.GA.Crossover,
		CrossoverRate:  c.GA.CrossoverRate,
		MutationRate:   c.GA.MutationRate,
		MutationSigma:  c.GA.MutationSigma,
		ResetMutationP: c.GA.ResetMutationP,
		ResetFraction:  c.GA.ResetFraction,
		ResetChance:    c.GA.ResetChance,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
