// Package config loads and validates the simulation configuration: track
// layout, initial train list and run length. Everything is supplied at start;
// there is no runtime reconfiguration.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mvillareal/metrosim/internal/domain/track"
)

// TrainConfig is the initial placement of one train.
type TrainConfig struct {
	Position  int `yaml:"position" validate:"gte=0"`
	Direction int `yaml:"direction" validate:"oneof=-1 1"`
}

// SimConfig describes one simulation run.
type SimConfig struct {
	// Track marks each position of the line: non-zero = station.
	Track []int `yaml:"track" validate:"required,min=2"`
	// Trains is the initial train list in registration order; trains are
	// advanced in this order every tick.
	Trains []TrainConfig `yaml:"trains" validate:"required,min=1,dive"`
	// Ticks is the total run length in simulated minutes.
	Ticks int `yaml:"ticks" validate:"required,gt=0"`
	// Seed makes the run reproducible. Zero is a valid seed.
	Seed int64 `yaml:"seed"`
}

// ServerConfig contains live-mode server settings.
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
	// TickIntervalMS paces server mode; 0 means the built-in default.
	TickIntervalMS int `yaml:"tickIntervalMS" validate:"gte=0"`
	// DBPath is the SQLite file for event and run persistence. Empty
	// disables persistence.
	DBPath string `yaml:"dbPath"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server ServerConfig `yaml:"server"`
	Sim    SimConfig    `yaml:"sim" validate:"required"`
}

// Load reads, parses and validates a YAML configuration file.
func Load(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects invalid configuration before the run starts: struct-tag
// checks first, then the domain rules the tags cannot express.
func (c AppConfig) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	tr, err := track.New(c.Sim.Track)
	if err != nil {
		return err
	}
	for i, t := range c.Sim.Trains {
		if t.Position >= tr.Len() {
			return fmt.Errorf("train %d starts off the track: position %d not in [0,%d]", i, t.Position, tr.Len()-1)
		}
	}
	return nil
}

// Default returns the stock scenario: a 48-position line with eight
// stations, six trains and a ten-hour run.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 8080},
		Sim: SimConfig{
			Track: []int{
				1, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 1, 0,
				0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0,
				0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 1,
			},
			Trains: []TrainConfig{
				{Position: 0, Direction: 1},
				{Position: 16, Direction: 1},
				{Position: 32, Direction: 1},
				{Position: 16, Direction: -1},
				{Position: 32, Direction: -1},
				{Position: 47, Direction: -1},
			},
			Ticks: 600,
			Seed:  1,
		},
	}
}
