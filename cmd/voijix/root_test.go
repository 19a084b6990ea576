package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petems/voijix/internal/clip"
	"github.com/petems/voijix/internal/wavfile"
)

// run executes the CLI with a config whose database lives in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	t.Setenv("HOME", dir)
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	cfgPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := "database:\n  path: " + filepath.Join(dir, "clips.sqlite") + "\n"
		require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	}

	var out bytes.Buffer
	e := &env{}
	cmd := newRootCmd(e)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath, "--log-level", "error"}, args...))

	err := cmd.Execute()
	require.NoError(t, e.close())
	return out.String(), err
}

func writeWav(t *testing.T, path string) {
	t.Helper()
	c, err := clip.New("ignored", time.Now(), 16000)
	require.NoError(t, err)
	c.Samples = []float32{0, 0.25, 0.5, 0.25, 0, -0.25, -0.5, -0.25}

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wavfile.Export(f, c, 16))
	require.NoError(t, f.Close())
}

func TestImportListExportDelete(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "greeting.wav")
	writeWav(t, wavPath)

	out, err := run(t, dir, "import", wavPath)
	require.NoError(t, err)
	assert.Contains(t, out, `Imported "greeting"`)

	_, err = run(t, dir, "import", wavPath, "--name", "second")
	require.NoError(t, err)

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "greeting")
	assert.Contains(t, lines[2], "second")

	exported := filepath.Join(dir, "out.wav")
	out, err = run(t, dir, "export", "greeting", exported, "--bits", "24")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported")

	f, err := os.Open(exported)
	require.NoError(t, err)
	defer f.Close()
	c, err := wavfile.Import(f, "check", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 16000, c.SampleRate)
	assert.Len(t, c.Samples, 8)

	out, err = run(t, dir, "delete", "greeting")
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted "greeting"`)

	out, err = run(t, dir, "delete", "greeting")
	require.NoError(t, err)
	assert.Contains(t, out, `No such clip found: "greeting"`)

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "greeting")
	assert.Contains(t, out, "second")
}

func TestExportMissingClip(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "export", "nope", filepath.Join(dir, "nope.wav"))
	require.NoError(t, err)
	assert.Contains(t, out, `No such clip found: "nope"`)
	assert.NoFileExists(t, filepath.Join(dir, "nope.wav"))
}

func TestArgumentValidation(t *testing.T) {
	dir := t.TempDir()

	tests := [][]string{
		{"play"},
		{"delete"},
		{"export", "only-name"},
		{"import"},
		{"list", "extra"},
		{"record", "a", "b"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			_, err := run(t, dir, args...)
			assert.Error(t, err)
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("audio:\n  backend: alsa\n"), 0o600))

	_, err := run(t, dir, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown audio backend")
}
