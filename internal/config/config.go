// Package config loads fragpipe command-line settings from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/fragpipe"
)

// Config holds all fragpipe CLI configuration.
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	History   HistoryConfig   `yaml:"history"`
}

// SchedulerConfig sets the defaults for process tasks built by the CLI.
type SchedulerConfig struct {
	Workers        int    `yaml:"workers"`
	FragmentWidth  int    `yaml:"fragment_width"`
	FragmentHeight int    `yaml:"fragment_height"`
	Strategy       string `yaml:"strategy"` // fragments, blocks
	BlocksX        int    `yaml:"blocks_x"`
	BlocksY        int    `yaml:"blocks_y"`
	MaxConcurrent  int    `yaml:"max_concurrent"`
}

// OutputConfig controls where the process command writes its result.
type OutputConfig struct {
	// Format is the image format name, e.g. png or tiff.
	Format string `yaml:"format"`

	// Suffix is inserted between the input path and the format extension.
	Suffix string `yaml:"suffix"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite file. Empty means DefaultHistoryPath.
	Path string `yaml:"path"`
}

// Environment variables that override file settings.
const (
	EnvWorkers        = "FRAGPIPE_WORKERS"
	EnvFragmentWidth  = "FRAGPIPE_FRAGMENT_WIDTH"
	EnvFragmentHeight = "FRAGPIPE_FRAGMENT_HEIGHT"
	EnvStrategy       = "FRAGPIPE_STRATEGY"
	EnvLogLevel       = "FRAGPIPE_LOG_LEVEL"
	EnvHistory        = "FRAGPIPE_HISTORY"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			Workers:        8,
			FragmentWidth:  32,
			FragmentHeight: 32,
			Strategy:       fragpipe.StrategyFragments.String(),
			BlocksX:        fragpipe.DefaultBlocksX,
			BlocksY:        fragpipe.DefaultBlocksY,
			MaxConcurrent:  fragpipe.DefaultMaxConcurrent,
		},
		Output: OutputConfig{
			Format: "png",
			Suffix: ".processed",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating parent
// directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies FRAGPIPE_* environment variables.
func (c *Config) applyEnvOverrides() error {
	ints := []struct {
		env string
		dst *int
	}{
		{EnvWorkers, &c.Scheduler.Workers},
		{EnvFragmentWidth, &c.Scheduler.FragmentWidth},
		{EnvFragmentHeight, &c.Scheduler.FragmentHeight},
	}
	for _, o := range ints {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", o.env, v, err)
		}
		*o.dst = n
	}

	if v := os.Getenv(EnvStrategy); v != "" {
		c.Scheduler.Strategy = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}

	// FRAGPIPE_HISTORY is either a boolean or a database path.
	if v := os.Getenv(EnvHistory); v != "" {
		if on, ok := parseSwitch(v); ok {
			c.History.Enabled = on
		} else {
			c.History.Enabled = true
			c.History.Path = v
		}
	}
	return nil
}

// parseSwitch accepts strconv booleans plus on, off, yes and no.
func parseSwitch(s string) (on, ok bool) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, true
	case "off", "no":
		return false, true
	}
	on, err := strconv.ParseBool(s)
	return on, err == nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	s := c.Scheduler
	if s.Workers <= 0 {
		return fmt.Errorf("scheduler.workers must be positive, got %d", s.Workers)
	}
	if s.FragmentWidth <= 0 || s.FragmentHeight <= 0 {
		return fmt.Errorf("scheduler fragment size must be positive, got %dx%d", s.FragmentWidth, s.FragmentHeight)
	}
	if _, err := fragpipe.ParseStrategy(s.Strategy); err != nil {
		return fmt.Errorf("scheduler.strategy: %w", err)
	}
	if s.BlocksX <= 0 || s.BlocksY <= 0 {
		return fmt.Errorf("scheduler blocks must be positive, got %dx%d", s.BlocksX, s.BlocksY)
	}
	if s.MaxConcurrent <= 0 {
		return fmt.Errorf("scheduler.max_concurrent must be positive, got %d", s.MaxConcurrent)
	}

	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging.format: %s (valid: text, json)", c.Logging.Format)
	}
	return nil
}

// NewScheduler builds a validated scheduler from the section.
func (s SchedulerConfig) NewScheduler() (*fragpipe.Scheduler, error) {
	strategy, err := fragpipe.ParseStrategy(s.Strategy)
	if err != nil {
		return nil, fmt.Errorf("scheduler.strategy: %w", err)
	}
	sched := fragpipe.NewScheduler(
		fragpipe.WithWorkers(s.Workers),
		fragpipe.WithFragmentSize(s.FragmentWidth, s.FragmentHeight),
		fragpipe.WithBlocks(s.BlocksX, s.BlocksY),
		fragpipe.WithStrategy(strategy),
		fragpipe.WithMaxConcurrent(s.MaxConcurrent),
	)
	if err := sched.Validate(); err != nil {
		return nil, err
	}
	return sched, nil
}

// OutputFormat returns the configured output format.
func (c *Config) OutputFormat() (fragpipe.Format, error) {
	f, err := fragpipe.ParseFormat(c.Output.Format)
	if err != nil {
		return 0, fmt.Errorf("output.format: %w", err)
	}
	if !f.CanEncode() {
		return 0, fmt.Errorf("output.format: %s is decode only", f)
	}
	return f, nil
}

// Level returns the configured slog level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return l, nil
}

// HistoryPath returns the history database path, resolving the default.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return DefaultHistoryPath()
}

// DefaultHistoryPath is history.db in the user cache directory, or in the
// working directory when no cache directory is known.
func DefaultHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "fragpipe-history.db"
	}
	return filepath.Join(dir, "fragpipe", "history.db")
}

// DefaultPath is fragpipe/config.yaml in the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fragpipe.yaml"
	}
	return filepath.Join(dir, "fragpipe", "config.yaml")
}
