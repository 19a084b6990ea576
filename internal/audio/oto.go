package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const otoDeviceName = "oto default output"

// OtoHost plays through the ebitengine/oto mixer. It has no input devices and
// cannot query the output device, so the rate and channel count come from config.
//
// oto allows a single context per process; it is created on the first stream.
type OtoHost struct {
	sampleRate int
	channels   int

	mu     sync.Mutex
	ctx    *oto.Context
	format SampleFormat
}

func NewOtoHost(sampleRate, channels int) *OtoHost {
	return &OtoHost{sampleRate: sampleRate, channels: channels}
}

func (h *OtoHost) device() DeviceInfo {
	return DeviceInfo{
		Name:              otoDeviceName,
		MaxOutputChannels: h.channels,
		DefaultSampleRate: float64(h.sampleRate),
		DefaultOutput:     true,
	}
}

func (h *OtoHost) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{h.device()}, nil
}

func (h *OtoHost) InputDevice(string) (DeviceInfo, error) {
	return DeviceInfo{}, fmt.Errorf("%w: the oto backend is output only", ErrNoDevice)
}

func (h *OtoHost) OutputDevice(name string) (DeviceInfo, error) {
	if name != "" && name != otoDeviceName {
		return DeviceInfo{}, fmt.Errorf("%w: %q not found", ErrNoDevice, name)
	}
	return h.device(), nil
}

func (h *OtoHost) OpenInputStream(StreamConfig, InputCallback) (Stream, error) {
	return nil, errors.New("the oto backend cannot capture audio")
}

func (h *OtoHost) OpenOutputStream(cfg StreamConfig, cb OutputCallback) (Stream, error) {
	ctx, err := h.context(cfg)
	if err != nil {
		return nil, err
	}

	s := newOtoStream(cfg, cb)
	p := ctx.NewPlayer(s)
	// Read ahead one callback's worth, not oto's default half second, so
	// completion is signalled close to when the last sample is heard.
	p.SetBufferSize(s.bufferBytes)
	s.player = p
	return s, nil
}

func (h *OtoHost) context(cfg StreamConfig) (*oto.Context, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx != nil {
		if cfg.Format != h.format || cfg.Channels != h.channels || int(cfg.SampleRate) != h.sampleRate {
			return nil, fmt.Errorf("oto context already running at %d Hz, %d channels, %v", h.sampleRate, h.channels, h.format)
		}
		return h.ctx, nil
	}

	var format oto.Format
	switch cfg.Format {
	case Float32:
		format = oto.FormatFloat32LE
	case Int16:
		format = oto.FormatSignedInt16LE
	case Uint8:
		format = oto.FormatUnsignedInt8
	default:
		return nil, fmt.Errorf("oto does not support sample format %v", cfg.Format)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(cfg.SampleRate),
		ChannelCount: cfg.Channels,
		Format:       format,
		BufferSize:   time.Duration(cfg.FramesPerBuffer) * time.Second / time.Duration(cfg.SampleRate),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	h.ctx = ctx
	h.format = cfg.Format
	h.channels = cfg.Channels
	return ctx, nil
}

func (h *OtoHost) Close() error { return nil }

// drainTimeout bounds how long Stop waits for buffered audio to play out.
const drainTimeout = 2 * time.Second

// otoPlayer is the part of *oto.Player an otoStream drives.
type otoPlayer interface {
	Play()
	Pause()
	IsPlaying() bool
	Err() error
	Close() error
}

// otoStream adapts oto's pull-mode reader to the OutputCallback contract.
// Read runs on oto's mixing goroutine.
type otoStream struct {
	player     otoPlayer
	format     SampleFormat
	channels   int
	frameBytes int
	// bufferBytes is one callback of FramesPerBuffer frames.
	bufferBytes int
	// latency is the device-side buffer still playing once oto's own buffer is empty.
	latency      time.Duration
	drainTimeout time.Duration
	cb           OutputCallback

	mu       sync.Mutex
	closed   bool
	draining bool
	pending  []byte
	raw      []byte
	f32      []float32
	i16      []int16
	u8       []uint8
}

func newOtoStream(cfg StreamConfig, cb OutputCallback) *otoStream {
	channels := max(cfg.Channels, 1)
	frameBytes := bytesPerSample(cfg.Format) * channels
	frames := max(cfg.FramesPerBuffer, 1)

	var latency time.Duration
	if cfg.SampleRate > 0 {
		latency = time.Duration(float64(frames) * float64(time.Second) / cfg.SampleRate)
	}

	return &otoStream{
		format:       cfg.Format,
		channels:     channels,
		frameBytes:   frameBytes,
		bufferBytes:  frames * frameBytes,
		latency:      latency,
		drainTimeout: drainTimeout,
		cb:           cb,
	}
}

func bytesPerSample(f SampleFormat) int {
	switch f {
	case Float32, Int32:
		return 4
	case Int16:
		return 2
	default:
		return 1
	}
}

// Read hands oto the next bytes of output. Whole frames are produced by the
// callback; bytes that do not fit in p are kept for the next call. Once Stop
// has begun draining, Read reports io.EOF after the kept bytes.
func (s *otoStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	if len(s.pending) == 0 {
		if s.draining {
			return 0, io.EOF
		}
		s.pending = s.render(max(len(p)/s.frameBytes, 1))
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// render asks the callback for frames frames and encodes them little-endian.
func (s *otoStream) render(frames int) []byte {
	n := frames * s.channels
	s.raw = resize(s.raw, frames*s.frameBytes)

	switch s.format {
	case Float32:
		s.f32 = resize(s.f32, n)
		s.cb(s.f32)
		for i, v := range s.f32 {
			binary.LittleEndian.PutUint32(s.raw[i*4:], math.Float32bits(v))
		}
	case Int16:
		s.i16 = resize(s.i16, n)
		s.cb(s.i16)
		for i, v := range s.i16 {
			binary.LittleEndian.PutUint16(s.raw[i*2:], uint16(v))
		}
	default:
		s.u8 = resize(s.u8, n)
		s.cb(s.u8)
		copy(s.raw, s.u8)
	}
	return s.raw
}

func (s *otoStream) Start() error {
	s.mu.Lock()
	s.draining = false
	s.mu.Unlock()

	s.player.Play()
	return s.player.Err()
}

// Stop lets the audio already handed to oto play out, bounded by
// drainTimeout, then pauses the player.
func (s *otoStream) Stop() error {
	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()

	deadline := time.Now().Add(s.drainTimeout)
	for s.player.IsPlaying() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if remaining := time.Until(deadline); remaining > 0 {
		time.Sleep(min(s.latency, remaining))
	}

	s.player.Pause()
	return s.player.Err()
}

func (s *otoStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.player.Close()
}

func resize[T any](buf []T, n int) []T {
	if cap(buf) < n {
		return make([]T, n)
	}
	return buf[:n]
}
