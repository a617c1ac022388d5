// Package config loads scrollback settings from flags, environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultCapacity      = 1024
	DefaultMaxLineLength = 510
	DefaultWidth         = 80
	EnvPrefix            = "SCROLLBACK"
)

var (
	ErrCapacity      = errors.New("capacity must be a power of two")
	ErrMaxLineLength = errors.New("max-line-length must be at least 1")
	ErrWidth         = errors.New("width must be at least 1")
	ErrContext       = errors.New("before/after must not be negative")
	ErrFormat        = errors.New("format must be text or json")
)

// Config is the full set of options for one scrollback run.
type Config struct {
	// Store.
	Capacity      int `mapstructure:"capacity"`
	MaxLineLength int `mapstructure:"max-line-length"`

	// Input.
	File   string `mapstructure:"file"`
	Follow bool   `mapstructure:"follow"`
	Docker string `mapstructure:"docker"`
	Grok   string `mapstructure:"grok"`
	Nick   string `mapstructure:"nick"`

	// Filtering.
	Keywords   []string `mapstructure:"keyword"`
	Regex      []string `mapstructure:"regex"`
	Exclude    []string `mapstructure:"exclude"`
	Categories []string `mapstructure:"category"`
	From       []string `mapstructure:"from"`
	MatchAll   bool     `mapstructure:"and"`
	Before     int      `mapstructure:"before"`
	After      int      `mapstructure:"after"`
	Alerts     []string `mapstructure:"alert"`

	// Output.
	Width  int    `mapstructure:"width"`
	Color  bool   `mapstructure:"color"`
	JSON   bool   `mapstructure:"json"`
	Output string `mapstructure:"output"`
	Format string `mapstructure:"format"`
	TUI    bool   `mapstructure:"tui"`
	Stats  bool   `mapstructure:"stats"`

	LogLevel string `mapstructure:"log-level"`
	LogJSON  bool   `mapstructure:"log-json"`
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Capacity:      DefaultCapacity,
		MaxLineLength: DefaultMaxLineLength,
		Width:         DefaultWidth,
		Format:        "text",
		LogLevel:      "warn",
	}
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("capacity", d.Capacity)
	v.SetDefault("max-line-length", d.MaxLineLength)
	v.SetDefault("width", d.Width)
	v.SetDefault("format", d.Format)
	v.SetDefault("log-level", d.LogLevel)
}

// Load reads an optional config file and the SCROLLBACK_* environment into
// v, then decodes and validates the result. Flags must already be bound.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values the store and renderer depend on.
func (c Config) Validate() error {
	if c.Capacity < 1 || c.Capacity&(c.Capacity-1) != 0 {
		return fmt.Errorf("config: %w: %d", ErrCapacity, c.Capacity)
	}
	if c.MaxLineLength < 1 {
		return fmt.Errorf("config: %w: %d", ErrMaxLineLength, c.MaxLineLength)
	}
	if c.Width < 1 {
		return fmt.Errorf("config: %w: %d", ErrWidth, c.Width)
	}
	if c.Before < 0 || c.After < 0 {
		return fmt.Errorf("config: %w", ErrContext)
	}
	switch c.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: %w: %q", ErrFormat, c.Format)
	}
	return nil
}
