// Package config loads the handsnap configuration file stored at
// ~/.handsnap/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigDir is the directory under the user's home for handsnap state.
const DefaultConfigDir = ".handsnap"

// DefaultConfigFile is the config file name within the config directory.
const DefaultConfigFile = "config.yaml"

// Config represents the contents of ~/.handsnap/config.yaml.
type Config struct {
	OutputDir     string        `yaml:"output_dir"`
	HoldDuration  time.Duration `yaml:"hold_duration"`
	MinConfidence float64       `yaml:"min_confidence"`
	CameraID      int           `yaml:"camera_id"`
	FrameDelay    time.Duration `yaml:"frame_delay"`
	Addr          string        `yaml:"addr"`
	WebDir        string        `yaml:"web_dir,omitempty"`
	HooksDir      string        `yaml:"hooks_dir"`
	HookTimeout   time.Duration `yaml:"hook_timeout"`
	DBPath        string        `yaml:"db_path"`
	LogLevel      string        `yaml:"log_level"`
	OpenRetries   int           `yaml:"open_retries"`
}

// Dir returns the handsnap state directory. If the home directory cannot be
// determined it falls back to a relative directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigDir
	}
	return filepath.Join(home, DefaultConfigDir)
}

// DefaultPath returns the full path to the config file.
func DefaultPath() string {
	return filepath.Join(Dir(), DefaultConfigFile)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	dir := Dir()
	return &Config{
		OutputDir:     "captured_photos",
		HoldDuration:  5 * time.Second,
		MinConfidence: 0.7,
		CameraID:      0,
		FrameDelay:    30 * time.Millisecond,
		Addr:          "127.0.0.1:8080",
		HooksDir:      filepath.Join(dir, "hooks"),
		HookTimeout:   10 * time.Second,
		DBPath:        filepath.Join(dir, "handsnap.db"),
		LogLevel:      "info",
		OpenRetries:   3,
	}
}

// Load reads the config at path, or at DefaultPath when path is empty.
// Returns the default config if the file doesn't exist. Keys missing from
// the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.OutputDir == "":
		return errors.New("output_dir must not be empty")
	case c.HoldDuration <= 0:
		return fmt.Errorf("hold_duration must be positive, got %s", c.HoldDuration)
	case c.FrameDelay <= 0:
		return fmt.Errorf("frame_delay must be positive, got %s", c.FrameDelay)
	case c.HookTimeout <= 0:
		return fmt.Errorf("hook_timeout must be positive, got %s", c.HookTimeout)
	case c.MinConfidence <= 0 || c.MinConfidence > 1:
		return fmt.Errorf("min_confidence must be in (0, 1], got %g", c.MinConfidence)
	case c.CameraID < 0:
		return fmt.Errorf("camera_id must not be negative, got %d", c.CameraID)
	case c.OpenRetries < 0:
		return fmt.Errorf("open_retries must not be negative, got %d", c.OpenRetries)
	case c.Addr == "":
		return errors.New("addr must not be empty")
	}
	return nil
}
