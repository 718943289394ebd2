package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrison/pbar/internal/filelock"
)

// BarConfig represents the appearance of a progress bar
type BarConfig struct {
	// Message is shown to the left of the bar
	Message string `yaml:"message"`

	// Marker is the fill symbol; only the first character is used
	Marker string `yaml:"marker"`

	// Left and Right are the bar delimiters; only the first character is used
	Left  string `yaml:"bar_left"`
	Right string `yaml:"bar_right"`

	// Width is the bar width in characters (capped at 100)
	Width int `yaml:"width"`

	// Suffix is the template shown right of the bar ({idx}, {tot}, {progress}, {time})
	Suffix string `yaml:"suffix"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	// Level sets the logging verbosity (trace, debug, info, warn, error)
	Level string `yaml:"level"`

	// Layout is the line layout ({time}, {level}, {name}, {message})
	Layout string `yaml:"layout"`

	// File enables the per-run log file in Dir
	File bool `yaml:"file"`

	// Dir is the directory where run logs will be written
	Dir string `yaml:"dir"`

	// MaxSizeMB rotates a run log once it exceeds this size
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is the number of rotated run logs to keep
	MaxBackups int `yaml:"max_backups"`
}

// Config represents pbar configuration options
type Config struct {
	Bar BarConfig `yaml:"bar"`
	Log LogConfig `yaml:"log"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Bar: BarConfig{
			Marker: "|",
			Left:   "[",
			Right:  "]",
			Width:  50,
			Suffix: "{progress}%",
		},
		Log: LogConfig{
			Level:      "info",
			Layout:     "[{time}] [{level}] {message}",
			File:       false,
			Dir:        filepath.Join(".pbar", "logs"),
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	b := fileCfg.Bar
	if b.Message != "" {
		cfg.Bar.Message = b.Message
	}
	if b.Marker != "" {
		cfg.Bar.Marker = b.Marker
	}
	if b.Left != "" {
		cfg.Bar.Left = b.Left
	}
	if b.Right != "" {
		cfg.Bar.Right = b.Right
	}
	if b.Width != 0 {
		cfg.Bar.Width = b.Width
	}
	if b.Suffix != "" {
		cfg.Bar.Suffix = b.Suffix
	}

	l := fileCfg.Log
	if l.Level != "" {
		cfg.Log.Level = l.Level
	}
	if l.Layout != "" {
		cfg.Log.Layout = l.Layout
	}
	if l.Dir != "" {
		cfg.Log.Dir = l.Dir
	}
	if l.MaxSizeMB != 0 {
		cfg.Log.MaxSizeMB = l.MaxSizeMB
	}
	if l.MaxBackups != 0 {
		cfg.Log.MaxBackups = l.MaxBackups
	}
	// File is explicitly set if present in YAML
	if l.File {
		cfg.Log.File = l.File
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .pbar/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".pbar", "config.yaml"))
}

// Save writes the configuration as YAML, replacing path atomically
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return filelock.WithLock(path, func() error {
		return filelock.AtomicWrite(path, data, 0644)
	})
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(message, marker, suffix *string, width *int, logLevel *string) {
	if message != nil {
		c.Bar.Message = *message
	}
	if marker != nil {
		c.Bar.Marker = *marker
	}
	if suffix != nil {
		c.Bar.Suffix = *suffix
	}
	if width != nil {
		c.Bar.Width = *width
	}
	if logLevel != nil {
		c.Log.Level = *logLevel
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.Bar.Width < 0 {
		return fmt.Errorf("bar.width must be >= 0, got %d", c.Bar.Width)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level %q, must be one of: trace, debug, info, warn, error", c.Log.Level)
	}

	if c.Log.File && c.Log.Dir == "" {
		return fmt.Errorf("log.dir cannot be empty when log.file is enabled")
	}
	if c.Log.MaxSizeMB < 0 {
		return fmt.Errorf("log.max_size_mb must be >= 0, got %d", c.Log.MaxSizeMB)
	}
	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups must be >= 0, got %d", c.Log.MaxBackups)
	}

	return nil
}
