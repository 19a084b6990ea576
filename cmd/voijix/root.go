package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/petems/voijix/internal/app"
	"github.com/petems/voijix/internal/audio"
	"github.com/petems/voijix/internal/config"
	"github.com/petems/voijix/internal/logging"
	"github.com/petems/voijix/internal/permissions"
	"github.com/petems/voijix/internal/store"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

// env holds what a command needs once flags are parsed.
type env struct {
	flags rootFlags
	cfg   *config.Config
	log   zerolog.Logger
	store *store.Store
	hosts []audio.Host
}

// newRootCmd builds the command tree. The caller closes e once Execute returns.
func newRootCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "voijix",
		Short:         "voijix - record and play back voice clips",
		Long:          "voijix records mono clips from the microphone, stores them in SQLite and plays them back",
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  voijix record memo
  voijix record --duration 10s
  voijix play memo`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup()
		},
	}

	cmd.PersistentFlags().StringVar(&e.flags.configPath, "config", "", "path to the config file")
	cmd.PersistentFlags().StringVar(&e.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newRecordCmd(e),
		newListCmd(e),
		newPlayCmd(e),
		newDeleteCmd(e),
		newExportCmd(e),
		newImportCmd(e),
		newDevicesCmd(e),
	)

	return cmd
}

func (e *env) setup() error {
	var err error
	if e.flags.configPath != "" {
		e.cfg, err = config.LoadFrom(e.flags.configPath)
	} else {
		e.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := e.cfg.LogLevel
	if e.flags.logLevel != "" {
		level = e.flags.logLevel
	}
	e.log = logging.NewWithLevel(level)

	e.store, err = store.Open(e.cfg.Database)
	if err != nil {
		return err
	}
	return nil
}

func (e *env) close() error {
	for _, h := range e.hosts {
		if err := h.Close(); err != nil {
			e.log.Warn().Err(err).Msg("Failed to close audio host")
		}
	}
	e.hosts = nil

	if e.store != nil {
		err := e.store.Close()
		e.store = nil
		return err
	}
	return nil
}

// inputHost opens PortAudio, the only backend that can capture.
func (e *env) inputHost() (audio.Host, error) {
	h, err := audio.NewPortAudioHost()
	if err != nil {
		return nil, err
	}
	e.hosts = append(e.hosts, h)
	return h, nil
}

// outputHost opens the configured playback backend.
func (e *env) outputHost() (audio.Host, error) {
	if e.cfg.Audio.Backend == config.BackendOto {
		h := audio.NewOtoHost(e.cfg.Audio.OutputSampleRate, e.cfg.Audio.OutputChannels)
		e.hosts = append(e.hosts, h)
		return h, nil
	}
	return e.inputHost()
}

type appOpts struct {
	input  audio.Host
	output audio.Host
	cmd    *cobra.Command
}

func (e *env) app(opts appOpts) *app.App {
	out := opts.cmd.OutOrStdout()
	cfg := app.Config{
		Store:         e.store,
		Config:        e.cfg,
		Logger:        e.log,
		Out:           out,
		StatusUpdater: app.NewConsoleStatus(opts.cmd.ErrOrStderr()),
	}
	if opts.input != nil {
		cfg.Recorder = audio.NewRecorder(opts.input, e.cfg.Audio, e.log)
		cfg.Devices = opts.input
		cfg.CheckPermissions = permissions.EnsureMicrophone
	}
	if opts.output != nil {
		cfg.Player = audio.NewPlayer(opts.output, e.cfg.Audio, e.log)
	}
	return app.New(cfg)
}
