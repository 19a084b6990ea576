package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.DateFormat, cfg.DateFormat)
	assert.Equal(t, def.Audio, cfg.Audio)
	assert.Equal(t, def.Database, cfg.Database)
	assert.Equal(t, path, cfg.Path())
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
date_format: "2006-01-02"
audio:
  backend: oto
  sample_format: i16
  output_sample_rate: 44100
database:
  path: /tmp/voijix-test.sqlite
  page_size: 8192
`), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "2006-01-02", cfg.DateFormat)
	assert.Equal(t, BackendOto, cfg.Audio.Backend)
	assert.Equal(t, "i16", cfg.Audio.SampleFormat)
	assert.Equal(t, 44100, cfg.Audio.OutputSampleRate)
	assert.Equal(t, 512, cfg.Audio.FramesPerBuffer, "unset keys keep their defaults")
	assert.Equal(t, "/tmp/voijix-test.sqlite", cfg.Database.Path)
	assert.Equal(t, 8192, cfg.Database.PageSize)
	assert.Equal(t, 1, cfg.Database.UserVersion)
}

func TestLoadFromRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "audio:\n  backend: jack\n"},
		{"unknown format", "audio:\n  sample_format: f64\n"},
		{"zero frames", "audio:\n  frames_per_buffer: 0\n"},
		{"negative channels", "audio:\n  max_channels: -1\n"},
		{"empty db path", "database:\n  path: \"\"\n"},
		{"malformed yaml", "audio: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	cfg.Audio.InputDevice = "USB Microphone"
	cfg.LogLevel = "debug"
	require.NoError(t, cfg.Save())

	reloaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "USB Microphone", reloaded.Audio.InputDevice)
	assert.Equal(t, "debug", reloaded.LogLevel)
}
