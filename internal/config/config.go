package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"
)

const (
	BackendPortAudio = "portaudio"
	BackendOto       = "oto"
)

type Config struct {
	DateFormat string         `yaml:"date_format"` // Go time layout for default clip names and listings
	LogLevel   string         `yaml:"log_level"`
	Audio      AudioConfig    `yaml:"audio"`
	Database   DatabaseConfig `yaml:"database"`

	path string
}

type AudioConfig struct {
	Backend         string `yaml:"backend"`       // "portaudio" or "oto"
	InputDevice     string `yaml:"input_device"`  // empty selects the default device
	OutputDevice    string `yaml:"output_device"` // empty selects the default device
	SampleFormat    string `yaml:"sample_format"` // "f32", "i32", "i16", "i8", "u8"
	MaxChannels     int    `yaml:"max_channels"`  // 0 keeps the device maximum
	FramesPerBuffer int    `yaml:"frames_per_buffer"`

	// The oto backend cannot query a device, so it plays at these settings.
	OutputSampleRate int `yaml:"output_sample_rate"`
	OutputChannels   int `yaml:"output_channels"`
}

type DatabaseConfig struct {
	Path        string `yaml:"path"`
	PageSize    int    `yaml:"page_size"`
	UserVersion int    `yaml:"user_version"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DateFormat: "2006-01-02 15:04:05",
		LogLevel:   "info",
		Audio: AudioConfig{
			Backend:          BackendPortAudio,
			SampleFormat:     "f32",
			MaxChannels:      2,
			FramesPerBuffer:  512,
			OutputSampleRate: 48000,
			OutputChannels:   2,
		},
		Database: DatabaseConfig{
			Path:        filepath.Join(DataPath(), "clips.sqlite"),
			PageSize:    4096,
			UserVersion: 1,
		},
	}
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	return LoadFrom(configPath())
}

// LoadFrom reads the config at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that the audio and storage layers rely on.
func (c *Config) Validate() error {
	if c.DateFormat == "" {
		return errors.New("date_format must not be empty")
	}
	if _, err := time.Parse(c.DateFormat, time.Now().Format(c.DateFormat)); err != nil {
		return fmt.Errorf("date_format %q is not a usable time layout: %w", c.DateFormat, err)
	}
	switch c.Audio.Backend {
	case BackendPortAudio, BackendOto:
	default:
		return fmt.Errorf("unknown audio backend %q", c.Audio.Backend)
	}
	switch c.Audio.SampleFormat {
	case "f32", "i32", "i16", "i8", "u8":
	default:
		return fmt.Errorf("unknown sample_format %q", c.Audio.SampleFormat)
	}
	if c.Audio.MaxChannels < 0 {
		return fmt.Errorf("max_channels must not be negative, got %d", c.Audio.MaxChannels)
	}
	if c.Audio.FramesPerBuffer <= 0 {
		return fmt.Errorf("frames_per_buffer must be positive, got %d", c.Audio.FramesPerBuffer)
	}
	if c.Audio.OutputSampleRate <= 0 {
		return fmt.Errorf("output_sample_rate must be positive, got %d", c.Audio.OutputSampleRate)
	}
	if c.Audio.OutputChannels <= 0 {
		return fmt.Errorf("output_channels must be positive, got %d", c.Audio.OutputChannels)
	}
	if c.Database.Path == "" {
		return errors.New("database.path must not be empty")
	}
	return nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	if c.path == "" {
		return configPath()
	}
	return c.path
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.Path()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return atomic.WriteFile(path, bytes.NewReader(data))
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "voijix", "config.yaml")
}

// DataPath returns the platform-specific directory holding the clip database
func DataPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "voijix")
}
