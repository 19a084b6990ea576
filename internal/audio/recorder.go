package audio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petems/voijix/internal/clip"
	"github.com/petems/voijix/internal/config"
	"github.com/rs/zerolog"
)

// Recorder captures a mono clip from an input device.
type Recorder struct {
	host Host
	cfg  config.AudioConfig
	log  zerolog.Logger
	now  func() time.Time
}

func NewRecorder(host Host, cfg config.AudioConfig, log zerolog.Logger) *Recorder {
	return &Recorder{
		host: host,
		cfg:  cfg,
		log:  log.With().Str("component", "recorder").Logger(),
		now:  time.Now,
	}
}

// Record captures from the configured input device until ctx is cancelled and
// returns the clip at the device's native rate. Only channel 0 is kept.
func (r *Recorder) Record(ctx context.Context, name string) (*clip.Clip, error) {
	device, err := r.host.InputDevice(r.cfg.InputDevice)
	if err != nil {
		return nil, &DeviceError{Op: "input lookup", Err: err}
	}

	streamCfg, err := negotiate(device, device.MaxInputChannels, r.cfg)
	if err != nil {
		return nil, &DeviceError{Op: "input negotiation", Err: err}
	}

	c, err := clip.New(name, r.now(), int(streamCfg.SampleRate))
	if err != nil {
		return nil, &DeviceError{Op: "input negotiation", Err: err}
	}

	buf := NewCaptureBuffer()
	if err := buf.Begin(c); err != nil {
		return nil, err
	}

	cbLog := r.log.Sample(&zerolog.BurstSampler{Burst: 1, Period: time.Second})
	channels := streamCfg.Channels
	stream, err := r.host.OpenInputStream(streamCfg, func(in any) {
		if _, err := buf.TryAppend(in, channels); err != nil {
			cbLog.Error().Err(err).Msg("Dropping input batch")
		}
	})
	if err != nil {
		return nil, &StreamError{Op: "open input", Err: err}
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, &StreamError{Op: "start input", Err: err}
	}

	r.log.Info().
		Str("device", device.Name).
		Int("channels", channels).
		Float64("rate", streamCfg.SampleRate).
		Stringer("format", streamCfg.Format).
		Msg("Recording started")

	<-ctx.Done()

	stopErr := stream.Stop()
	if err := stream.Close(); err != nil && stopErr == nil {
		stopErr = err
	}
	if stopErr != nil {
		r.log.Warn().Err(stopErr).Msg("Failed to stop input stream cleanly")
	}

	// The stream is closed, so no callback can race the take.
	c, err = buf.Take()
	if err != nil {
		return nil, err
	}

	if dropped := buf.Dropped(); dropped > 0 {
		r.log.Warn().Uint64("batches", dropped).Msg("Input batches dropped on contention")
	}
	r.log.Info().
		Int("samples", len(c.Samples)).
		Dur("duration", c.Duration()).
		Msg("Recording stopped")

	return c, nil
}

// negotiate derives a stream shape from the device defaults and config limits.
func negotiate(device DeviceInfo, deviceChannels int, cfg config.AudioConfig) (StreamConfig, error) {
	format, err := ParseSampleFormat(cfg.SampleFormat)
	if err != nil {
		return StreamConfig{}, err
	}

	channels := deviceChannels
	if cfg.MaxChannels > 0 && channels > cfg.MaxChannels {
		channels = cfg.MaxChannels
	}
	if channels < 1 {
		return StreamConfig{}, fmt.Errorf("%s: %w", device.Name, errNoChannels)
	}
	if device.DefaultSampleRate < 1 {
		return StreamConfig{}, fmt.Errorf("%s: %w", device.Name, clip.ErrInvalidSampleRate)
	}

	return StreamConfig{
		Device:          device,
		Channels:        channels,
		SampleRate:      device.DefaultSampleRate,
		Format:          format,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}, nil
}

var errNoChannels = errors.New("device has no usable channels")
