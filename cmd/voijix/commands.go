package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newRecordCmd(e *env) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "record [name]",
		Short: "Record a clip until interrupted",
		Long:  "Record from the input device until Ctrl-C (or --duration elapses) and store the clip. The name defaults to the current time.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := e.inputHost()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			}
			_, err = e.app(appOpts{input: host, cmd: cmd}).Record(ctx, name)
			return err
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "stop recording after this long")
	return cmd
}

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored clips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.app(appOpts{cmd: cmd}).List(cmd.Context())
		},
	}
}

func newPlayCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "play <name>",
		Short: "Play a stored clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := e.outputHost()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return e.app(appOpts{output: host, cmd: cmd}).Play(ctx, args[0])
		},
	}
}

func newDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete every clip with the given name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.app(appOpts{cmd: cmd}).Delete(cmd.Context(), args[0])
		},
	}
}

func newExportCmd(e *env) *cobra.Command {
	var bits int

	cmd := &cobra.Command{
		Use:   "export <name> <file.wav>",
		Short: "Write a stored clip to a WAV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.app(appOpts{cmd: cmd}).Export(cmd.Context(), args[0], args[1], bits)
		},
	}

	cmd.Flags().IntVar(&bits, "bits", 16, "PCM bit depth (16, 24 or 32)")
	return cmd
}

func newImportCmd(e *env) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file.wav>",
		Short: "Store a PCM WAV file as a clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := e.app(appOpts{cmd: cmd}).Import(cmd.Context(), args[0], name)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "clip name (defaults to the file name)")
	return cmd
}

func newDevicesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := e.inputHost()
			if err != nil {
				return err
			}
			return e.app(appOpts{input: host, cmd: cmd}).Devices()
		},
	}
}
