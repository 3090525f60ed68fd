package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Pipeline PipelineConfig `toml:"pipeline"`
	Jobs     JobsConfig     `toml:"jobs"`
	World    WorldConfig    `toml:"world"`
	Logging  LoggingConfig  `toml:"logging"`
	Profile  ProfileConfig  `toml:"profile"`
}

type PipelineConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	Ticks    int           `toml:"ticks"` // 0 = run until signalled
	World    string        `toml:"world"` // "" = default world
}

type JobsConfig struct {
	Workers   int  `toml:"workers"` // 0 = one per CPU
	ChunkSize int  `toml:"chunk_size"`
	Inline    bool `toml:"inline"` // run jobs on the pipeline goroutine
}

type WorldConfig struct {
	Capacity   int    `toml:"capacity"`
	SpawnList  string `toml:"spawn_list"`
	ScriptsDir string `toml:"scripts_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "", "cpu", "mem", "block", "mutex", "trace"
	Path string `toml:"path"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every out-of-range value at once.
func (c *Config) Validate() error {
	var err error
	if c.Pipeline.TickRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: pipeline.tick_rate %s", ErrInvalid, c.Pipeline.TickRate))
	}
	if c.Pipeline.Ticks < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: pipeline.ticks %d", ErrInvalid, c.Pipeline.Ticks))
	}
	if c.Jobs.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: jobs.workers %d", ErrInvalid, c.Jobs.Workers))
	}
	if c.Jobs.ChunkSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: jobs.chunk_size %d", ErrInvalid, c.Jobs.ChunkSize))
	}
	if c.World.Capacity <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: world.capacity %d", ErrInvalid, c.World.Capacity))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("%w: logging.format %q", ErrInvalid, c.Logging.Format))
	}
	switch c.Profile.Mode {
	case "", "cpu", "mem", "block", "mutex", "trace":
	default:
		err = multierr.Append(err, fmt.Errorf("%w: profile.mode %q", ErrInvalid, c.Profile.Mode))
	}
	return err
}

func defaults() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			TickRate: 50 * time.Millisecond,
		},
		Jobs: JobsConfig{
			ChunkSize: 64,
		},
		World: WorldConfig{
			Capacity:   1024,
			SpawnList:  "data/yaml/spawn_list.yaml",
			ScriptsDir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Profile: ProfileConfig{
			Path: ".",
		},
	}
}
