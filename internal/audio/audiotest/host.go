// Package audiotest provides a scripted audio.Host that drives stream
// callbacks from a goroutine, standing in for a device driver in tests.
package audiotest

import (
	"errors"
	"sync"
	"time"

	"github.com/petems/voijix/internal/audio"
)

// Host is a fake device host. Configure the exported fields before use.
type Host struct {
	Input  audio.DeviceInfo
	Output audio.DeviceInfo

	InputErr  error // returned by InputDevice
	OutputErr error // returned by OutputDevice
	OpenErr   error // returned by OpenInputStream / OpenOutputStream
	StartErr  error // returned by Stream.Start

	// InputBatches are handed to the input callback in order once the stream starts.
	InputBatches []any
	// OutputFrames is the number of frames requested per output callback.
	OutputFrames int
	// CallbackInterval paces output callbacks; zero runs them back to back.
	CallbackInterval time.Duration

	mu          sync.Mutex
	delivered   chan struct{}
	deliverOnce sync.Once
	streams     []*Stream
	closed      bool
}

// New returns a host with one mono 44.1 kHz input and one stereo 48 kHz output.
func New() *Host {
	return &Host{
		Input: audio.DeviceInfo{
			Name:              "fake input",
			MaxInputChannels:  1,
			DefaultSampleRate: 44100,
			DefaultInput:      true,
		},
		Output: audio.DeviceInfo{
			Name:              "fake output",
			MaxOutputChannels: 2,
			DefaultSampleRate: 48000,
			DefaultOutput:     true,
		},
		OutputFrames: 256,
		delivered:    make(chan struct{}),
	}
}

// InputDelivered is closed once every InputBatches entry has reached the
// callback of the first input stream to finish delivering.
func (h *Host) InputDelivered() <-chan struct{} {
	return h.delivered
}

// Streams returns every stream opened so far.
func (h *Host) Streams() []*Stream {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Stream(nil), h.streams...)
}

func (h *Host) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Host) Devices() ([]audio.DeviceInfo, error) {
	return []audio.DeviceInfo{h.Input, h.Output}, nil
}

func (h *Host) InputDevice(name string) (audio.DeviceInfo, error) {
	if h.InputErr != nil {
		return audio.DeviceInfo{}, h.InputErr
	}
	if name != "" && name != h.Input.Name {
		return audio.DeviceInfo{}, audio.ErrNoDevice
	}
	return h.Input, nil
}

func (h *Host) OutputDevice(name string) (audio.DeviceInfo, error) {
	if h.OutputErr != nil {
		return audio.DeviceInfo{}, h.OutputErr
	}
	if name != "" && name != h.Output.Name {
		return audio.DeviceInfo{}, audio.ErrNoDevice
	}
	return h.Output, nil
}

func (h *Host) OpenInputStream(cfg audio.StreamConfig, cb audio.InputCallback) (audio.Stream, error) {
	if h.OpenErr != nil {
		return nil, h.OpenErr
	}
	batches := h.InputBatches
	s := h.newStream(cfg, func(s *Stream) {
		for _, b := range batches {
			select {
			case <-s.stop:
				return
			default:
			}
			cb(b)
			s.addFrames(frames(b, cfg.Channels))
		}
		h.deliverOnce.Do(func() { close(h.delivered) })
		<-s.stop
	})
	return s, nil
}

func (h *Host) OpenOutputStream(cfg audio.StreamConfig, cb audio.OutputCallback) (audio.Stream, error) {
	if h.OpenErr != nil {
		return nil, h.OpenErr
	}
	n := h.OutputFrames * cfg.Channels
	interval := h.CallbackInterval
	s := h.newStream(cfg, func(s *Stream) {
		for {
			select {
			case <-s.stop:
				return
			default:
			}
			buf := newBuffer(cfg.Format, n)
			cb(buf)
			s.addFrames(h.OutputFrames)
			if f, ok := buf.([]float32); ok {
				s.recordOutput(f)
			}
			if interval > 0 {
				select {
				case <-s.stop:
					return
				case <-time.After(interval):
				}
			}
		}
	})
	return s, nil
}

func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *Host) newStream(cfg audio.StreamConfig, run func(*Stream)) *Stream {
	s := &Stream{
		Config:   cfg,
		run:      run,
		stop:     make(chan struct{}),
		startErr: h.StartErr,
	}
	h.mu.Lock()
	h.streams = append(h.streams, s)
	h.mu.Unlock()
	return s
}

// Stream is a fake stream whose callbacks run on their own goroutine.
type Stream struct {
	Config audio.StreamConfig

	run      func(*Stream)
	startErr error
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
	frames  int
	output  []float32
}

func (s *Stream) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream closed")
	}
	if s.started {
		return nil
	}
	s.started = true
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s)
	}()
	return nil
}

// Stop halts callbacks and waits for the callback goroutine to exit.
func (s *Stream) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	return nil
}

func (s *Stream) Close() error {
	_ = s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Stream) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Frames returns the number of frames delivered to or requested by the callback.
func (s *Stream) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Output returns every float32 sample the output callback produced, interleaved.
func (s *Stream) Output() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float32(nil), s.output...)
}

func (s *Stream) addFrames(n int) {
	s.mu.Lock()
	s.frames += n
	s.mu.Unlock()
}

func (s *Stream) recordOutput(buf []float32) {
	s.mu.Lock()
	s.output = append(s.output, buf...)
	s.mu.Unlock()
}

func newBuffer(format audio.SampleFormat, n int) any {
	switch format {
	case audio.Int32:
		return make([]int32, n)
	case audio.Int16:
		return make([]int16, n)
	case audio.Int8:
		return make([]int8, n)
	case audio.Uint8:
		return make([]uint8, n)
	default:
		return make([]float32, n)
	}
}

func frames(buf any, channels int) int {
	if channels < 1 {
		channels = 1
	}
	switch b := buf.(type) {
	case []float32:
		return len(b) / channels
	case []int32:
		return len(b) / channels
	case []int16:
		return len(b) / channels
	case []int8:
		return len(b) / channels
	case []uint8:
		return len(b) / channels
	default:
		return 0
	}
}
