package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultCapacity, cfg.Capacity)
	assert.Equal(t, DefaultMaxLineLength, cfg.MaxLineLength)
	assert.Equal(t, DefaultWidth, cfg.Width)
	assert.Equal(t, "text", cfg.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrollback.yaml")
	content := "capacity: 64\nmax-line-length: 32\nkeyword:\n  - error\n  - panic\ncolor: true\nnick: bob\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Capacity)
	assert.Equal(t, 32, cfg.MaxLineLength)
	assert.Equal(t, []string{"error", "panic"}, cfg.Keywords)
	assert.True(t, cfg.Color)
	assert.Equal(t, "bob", cfg.Nick)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SCROLLBACK_CAPACITY", "256")
	t.Setenv("SCROLLBACK_MAX_LINE_LENGTH", "100")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.Capacity)
	assert.Equal(t, 100, cfg.MaxLineLength)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		err    error
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "capacity one", modify: func(c *Config) { c.Capacity = 1 }},
		{name: "capacity not power of two", modify: func(c *Config) { c.Capacity = 1000 }, err: ErrCapacity},
		{name: "capacity zero", modify: func(c *Config) { c.Capacity = 0 }, err: ErrCapacity},
		{name: "max line length zero", modify: func(c *Config) { c.MaxLineLength = 0 }, err: ErrMaxLineLength},
		{name: "width zero", modify: func(c *Config) { c.Width = 0 }, err: ErrWidth},
		{name: "negative context", modify: func(c *Config) { c.Before = -1 }, err: ErrContext},
		{name: "bad format", modify: func(c *Config) { c.Format = "xml" }, err: ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}
}
