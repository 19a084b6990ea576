package audio

import (
	"context"
	"time"

	"github.com/petems/voijix/internal/clip"
	"github.com/petems/voijix/internal/config"
	"github.com/rs/zerolog"
)

// Player streams clips to an output device.
type Player struct {
	host Host
	cfg  config.AudioConfig
	log  zerolog.Logger
}

func NewPlayer(host Host, cfg config.AudioConfig, log zerolog.Logger) *Player {
	return &Player{
		host: host,
		cfg:  cfg,
		log:  log.With().Str("component", "player").Logger(),
	}
}

// Play resamples c to the output device's rate and blocks until every sample
// has been handed to the device. Cancelling ctx aborts playback with a
// *SignalError.
func (p *Player) Play(ctx context.Context, c *clip.Clip) error {
	if err := c.Validate(); err != nil {
		return err
	}

	device, err := p.host.OutputDevice(p.cfg.OutputDevice)
	if err != nil {
		return &DeviceError{Op: "output lookup", Err: err}
	}

	streamCfg, err := negotiate(device, device.MaxOutputChannels, p.cfg)
	if err != nil {
		return &DeviceError{Op: "output negotiation", Err: err}
	}

	resampled, err := clip.Resample(c, int(streamCfg.SampleRate))
	if err != nil {
		return &DeviceError{Op: "output negotiation", Err: err}
	}

	state := NewPlaybackState(resampled.Samples)

	cbLog := p.log.Sample(&zerolog.BurstSampler{Burst: 1, Period: time.Second})
	channels := streamCfg.Channels
	stream, err := p.host.OpenOutputStream(streamCfg, func(out any) {
		if _, err := state.TryFill(out, channels); err != nil {
			cbLog.Error().Err(err).Msg("Skipping output batch")
		}
	})
	if err != nil {
		return &StreamError{Op: "open output", Err: err}
	}
	defer func() {
		if err := stream.Close(); err != nil {
			p.log.Warn().Err(err).Msg("Failed to close output stream")
		}
	}()

	if err := stream.Start(); err != nil {
		return &StreamError{Op: "start output", Err: err}
	}

	p.log.Info().
		Str("device", device.Name).
		Str("clip", c.Name).
		Int("channels", channels).
		Float64("rate", streamCfg.SampleRate).
		Dur("duration", resampled.Duration()).
		Msg("Playback started")

	select {
	case <-state.Done():
	case <-ctx.Done():
		if err := stream.Stop(); err != nil {
			p.log.Warn().Err(err).Msg("Failed to stop output stream")
		}
		cursor, total := state.Position()
		p.log.Info().Int("position", cursor).Int("total", total).Msg("Playback aborted")
		return &SignalError{Signal: "completion", Err: ctx.Err()}
	}

	if err := stream.Stop(); err != nil {
		return &StreamError{Op: "stop output", Err: err}
	}
	p.log.Info().Msg("Playback finished")
	return nil
}
