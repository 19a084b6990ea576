package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/petems/voijix/internal/audio"
	"github.com/petems/voijix/internal/clip"
	"github.com/petems/voijix/internal/config"
	"github.com/petems/voijix/internal/store"
	"github.com/petems/voijix/internal/wavfile"
)

// ErrBusy is returned when a recording or playback is already running.
var ErrBusy = errors.New("another recording or playback is in progress")

var (
	bold = color.New(color.Bold).SprintfFunc()
	warn = color.New(color.FgYellow).SprintfFunc()
)

// Store is the clip persistence used by App.
type Store interface {
	Save(ctx context.Context, c *clip.Clip) error
	Load(ctx context.Context, name string) (*clip.Clip, error)
	List(ctx context.Context) ([]clip.Summary, error)
	Delete(ctx context.Context, name string) (int64, error)
}

type Recorder interface {
	Record(ctx context.Context, name string) (*clip.Clip, error)
}

type Player interface {
	Play(ctx context.Context, c *clip.Clip) error
}

type DeviceLister interface {
	Devices() ([]audio.DeviceInfo, error)
}

// StatusUpdater is an interface for updating status (e.g., a console banner)
type StatusUpdater interface {
	SetIdle()
	SetRecording()
	SetPlaying()
	SetError()
}

type Config struct {
	Store         Store
	Recorder      Recorder
	Player        Player
	Devices       DeviceLister
	Config        *config.Config
	Logger        zerolog.Logger
	Out           io.Writer     // defaults to os.Stdout
	StatusUpdater StatusUpdater // Optional - can be nil
	// CheckPermissions runs before recording. Optional.
	CheckPermissions func() error
	// Now defaults to time.Now.
	Now func() time.Time
}

type App struct {
	store   Store
	rec     Recorder
	player  Player
	devices DeviceLister
	cfg     *config.Config
	log     zerolog.Logger
	out     io.Writer
	status  StatusUpdater
	perms   func() error
	now     func() time.Time

	mu     sync.Mutex
	active bool
}

func New(cfg Config) *App {
	a := &App{
		store:   cfg.Store,
		rec:     cfg.Recorder,
		player:  cfg.Player,
		devices: cfg.Devices,
		cfg:     cfg.Config,
		log:     cfg.Logger,
		out:     cfg.Out,
		status:  cfg.StatusUpdater,
		perms:   cfg.CheckPermissions,
		now:     cfg.Now,
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// IsBusy reports whether a recording or playback is running.
func (a *App) IsBusy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *App) acquire() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active {
		return ErrBusy
	}
	a.active = true
	return nil
}

func (a *App) release() {
	a.mu.Lock()
	a.active = false
	a.mu.Unlock()
}

// DefaultName is the clip name used when Record is given none.
func (a *App) DefaultName() string {
	return a.now().Format(a.cfg.DateFormat)
}

// Record captures until ctx is cancelled and stores the result.
func (a *App) Record(ctx context.Context, name string) (*clip.Clip, error) {
	if name == "" {
		name = a.DefaultName()
	}

	if a.perms != nil {
		if err := a.perms(); err != nil {
			return nil, fmt.Errorf("microphone access: %w", err)
		}
	}

	if err := a.acquire(); err != nil {
		return nil, err
	}
	defer a.release()

	a.log.Info().Str("name", name).Msg("Starting recording")
	a.setStatus(StatusUpdater.SetRecording)

	c, err := a.rec.Record(ctx, name)
	if err != nil {
		a.setStatus(StatusUpdater.SetError)
		return nil, fmt.Errorf("recording %q: %w", name, err)
	}

	if err := a.store.Save(context.WithoutCancel(ctx), c); err != nil {
		a.setStatus(StatusUpdater.SetError)
		return nil, err
	}

	a.setStatus(StatusUpdater.SetIdle)
	fmt.Fprintf(a.out, "Saved %s (%d, %s)\n", bold("%q", c.Name), c.ID, c.Duration().Round(time.Millisecond))
	return c, nil
}

// List prints every stored clip, oldest first.
func (a *App) List(ctx context.Context) error {
	clips, err := a.store.List(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, bold("%5s | %-30s | %-30s", "Id", "Name", "Date"))
	for _, c := range clips {
		fmt.Fprintf(a.out, "%5d | %-30s | %-30s\n", c.ID, c.Name, c.Date.Local().Format(a.cfg.DateFormat))
	}
	return nil
}

// Play plays the clip called name. A missing clip is reported, not returned.
func (a *App) Play(ctx context.Context, name string) error {
	c, err := a.load(ctx, name)
	if c == nil || err != nil {
		return err
	}

	if err := a.acquire(); err != nil {
		return err
	}
	defer a.release()

	a.log.Info().Str("name", name).Int64("id", c.ID).Msg("Playing clip")
	a.setStatus(StatusUpdater.SetPlaying)

	if err := a.player.Play(ctx, c); err != nil {
		a.setStatus(StatusUpdater.SetError)
		return fmt.Errorf("playing %q: %w", name, err)
	}

	a.setStatus(StatusUpdater.SetIdle)
	return nil
}

// Delete removes every clip called name. A missing clip is reported, not returned.
func (a *App) Delete(ctx context.Context, name string) error {
	n, err := a.store.Delete(ctx, name)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(a.out, warn("No such clip found: %q", name))
		return nil
	}

	a.log.Info().Str("name", name).Int64("rows", n).Msg("Deleted clip")
	fmt.Fprintf(a.out, "Deleted %s\n", bold("%q", name))
	return nil
}

// Export writes the clip called name to path as a WAV file.
func (a *App) Export(ctx context.Context, name, path string, bitDepth int) error {
	c, err := a.load(ctx, name)
	if c == nil || err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := wavfile.Export(f, c, bitDepth); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("exporting %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(a.out, "Exported %s to %s\n", bold("%q", name), path)
	return nil
}

// Import stores the WAV file at path as a new clip. An empty name uses the file name.
func (a *App) Import(ctx context.Context, path, name string) (*clip.Clip, error) {
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	c, err := wavfile.Import(f, name, a.now())
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	if err := a.store.Save(ctx, c); err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "Imported %s (%d, %s)\n", bold("%q", c.Name), c.ID, c.Duration().Round(time.Millisecond))
	return c, nil
}

// Devices prints the devices the audio host can see.
func (a *App) Devices() error {
	devices, err := a.devices.Devices()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, bold("%-40s | %5s | %6s | %8s | %s", "Name", "In", "Out", "Rate", "Default"))
	for _, d := range devices {
		var def []string
		if d.DefaultInput {
			def = append(def, "input")
		}
		if d.DefaultOutput {
			def = append(def, "output")
		}
		fmt.Fprintf(a.out, "%-40s | %5d | %6d | %8.0f | %s\n",
			d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate, strings.Join(def, ","))
	}
	return nil
}

func (a *App) load(ctx context.Context, name string) (*clip.Clip, error) {
	c, err := a.store.Load(ctx, name)
	if errors.Is(err, store.ErrClipNotFound) {
		fmt.Fprintln(a.out, warn("No such clip found: %q", name))
		return nil, nil
	}
	return c, err
}

func (a *App) setStatus(fn func(StatusUpdater)) {
	if a.status != nil {
		fn(a.status)
	}
}
