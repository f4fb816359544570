// Package config loads foamtutor settings from YAML with FOAMTUTOR_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cfdlab/foamtutor/internal/knowledge"
	"github.com/cfdlab/foamtutor/internal/learner"
	"github.com/cfdlab/foamtutor/internal/llm"
	"github.com/cfdlab/foamtutor/internal/logging"
	"github.com/cfdlab/foamtutor/internal/narrate"
	"github.com/cfdlab/foamtutor/internal/socratic"
)

// Question template pickers.
const (
	PickerRoundRobin = "round_robin"
	PickerRandom     = "random"
	PickerFirst      = "first"
)

// Config is the full application configuration.
type Config struct {
	Tutor   TutorConfig    `yaml:"tutor"`
	Catalog CatalogConfig  `yaml:"catalog"`
	Journal JournalConfig  `yaml:"journal"`
	Log     LogConfig      `yaml:"log"`
	LLM     llm.Config     `yaml:"llm"`
	Narrate narrate.Config `yaml:"narrate"`
}

type TutorConfig struct {
	Level      string             `yaml:"level"`
	Picker     string             `yaml:"picker"`
	Seed       uint64             `yaml:"seed"`
	Thresholds learner.Thresholds `yaml:"thresholds"`
	Bands      socratic.Bands     `yaml:"bands"`

	// CoreConcepts overrides the learner's priority list of fundamentals.
	CoreConcepts []string `yaml:"core_concepts"`

	// ReadinessConcepts must be understood before case setup.
	ReadinessConcepts []string `yaml:"readiness_concepts"`
}

// CatalogConfig points at an optional concept catalog merged over the
// built-in graph.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // "" resolves to journal.DefaultDBPath
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tutor: TutorConfig{
			Level:      string(knowledge.LevelBeginner),
			Picker:     PickerRoundRobin,
			Thresholds: learner.DefaultThresholds(),
			Bands:      socratic.DefaultBands(),
		},
		Journal: JournalConfig{Enabled: true},
		Log:     LogConfig{Level: "warn", Format: logging.FormatConsole},
		LLM:     llm.DefaultConfig(),
		Narrate: narrate.DefaultConfig(),
	}
}

// DefaultPath is $XDG_CONFIG_HOME/foamtutor/config.yaml, falling back to
// ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "foamtutor", "config.yaml")
}

// Load reads path over the defaults and applies environment overrides. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.LLM.Discover(os.Getenv)
	return cfg, nil
}

// ApplyEnv overlays FOAMTUTOR_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("FOAMTUTOR_LEVEL"); v != "" {
		c.Tutor.Level = v
	}
	if v := getenv("FOAMTUTOR_PICKER"); v != "" {
		c.Tutor.Picker = v
	}
	if v := getenv("FOAMTUTOR_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Tutor.Seed = seed
		}
	}
	if v := getenv("FOAMTUTOR_CATALOG"); v != "" {
		c.Catalog.Path = v
	}
	if v := getenv("FOAMTUTOR_DB"); v != "" {
		c.Journal.Path = v
	}
	if v := getenv("FOAMTUTOR_JOURNAL"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Journal.Enabled = on
		}
	}
	if v := getenv("FOAMTUTOR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("FOAMTUTOR_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	c.LLM.ApplyEnv(getenv)
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if _, ok := knowledge.ParseLevel(c.Tutor.Level); !ok {
		return fmt.Errorf("tutor.level: unknown experience level %q", c.Tutor.Level)
	}
	switch c.Tutor.Picker {
	case PickerRoundRobin, PickerRandom, PickerFirst:
	default:
		return fmt.Errorf("tutor.picker: unknown picker %q", c.Tutor.Picker)
	}
	t := c.Tutor.Thresholds
	for name, v := range map[string]float64{
		"confused":   t.Confused,
		"strong":     t.Strong,
		"understood": t.Understood,
		"advanced":   t.Advanced,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("tutor.thresholds.%s: %v outside [0, 1]", name, v)
		}
	}
	if t.Confused > t.Strong {
		return fmt.Errorf("tutor.thresholds: confused (%v) above strong (%v)", t.Confused, t.Strong)
	}
	if err := c.Tutor.Bands.Validate(); err != nil {
		return fmt.Errorf("tutor.bands: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return c.LLM.Validate()
}

// NewPicker builds the configured question template picker.
func (c *Config) NewPicker() socratic.Picker {
	switch c.Tutor.Picker {
	case PickerRandom:
		return socratic.NewSeeded(c.Tutor.Seed)
	case PickerFirst:
		return socratic.First{}
	}
	return &socratic.RoundRobin{}
}

// Experience returns the configured level, defaulting to beginner.
func (c *Config) Experience() knowledge.Level {
	if l, ok := knowledge.ParseLevel(c.Tutor.Level); ok {
		return l
	}
	return knowledge.LevelBeginner
}
