package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioHost is the Host backed by PortAudio callback streams.
type PortAudioHost struct{}

// NewPortAudioHost initializes PortAudio. Close terminates it.
func NewPortAudioHost() (*PortAudioHost, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &PortAudioHost{}, nil
}

func (h *PortAudioHost) Devices() ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	defaultIn, _ := portaudio.DefaultInputDevice()
	defaultOut, _ := portaudio.DefaultOutputDevice()

	result := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		info := fromPortAudio(d)
		info.DefaultInput = d == defaultIn
		info.DefaultOutput = d == defaultOut
		result = append(result, info)
	}
	return result, nil
}

func (h *PortAudioHost) InputDevice(name string) (DeviceInfo, error) {
	return h.findDevice(name, portaudio.DefaultInputDevice, func(d *portaudio.DeviceInfo) bool {
		return d.MaxInputChannels > 0
	})
}

func (h *PortAudioHost) OutputDevice(name string) (DeviceInfo, error) {
	return h.findDevice(name, portaudio.DefaultOutputDevice, func(d *portaudio.DeviceInfo) bool {
		return d.MaxOutputChannels > 0
	})
}

func (h *PortAudioHost) findDevice(
	name string,
	fallback func() (*portaudio.DeviceInfo, error),
	usable func(*portaudio.DeviceInfo) bool,
) (DeviceInfo, error) {
	// Find device
	var device *portaudio.DeviceInfo
	if name == "" {
		var err error
		device, err = fallback()
		if err != nil {
			return DeviceInfo{}, fmt.Errorf("%w: %v", ErrNoDevice, err)
		}
	} else {
		devices, err := portaudio.Devices()
		if err != nil {
			return DeviceInfo{}, fmt.Errorf("failed to enumerate devices: %w", err)
		}
		for _, d := range devices {
			if d.Name == name && usable(d) {
				device = d
				break
			}
		}
	}

	if device == nil {
		return DeviceInfo{}, fmt.Errorf("%w: %q not found", ErrNoDevice, name)
	}

	info := fromPortAudio(device)
	info.handle = device
	return info, nil
}

func (h *PortAudioHost) OpenInputStream(cfg StreamConfig, cb InputCallback) (Stream, error) {
	device, ok := cfg.Device.handle.(*portaudio.DeviceInfo)
	if !ok {
		return nil, fmt.Errorf("device %q was not resolved by PortAudio", cfg.Device.Name)
	}

	var callback any
	switch cfg.Format {
	case Float32:
		callback = func(in []float32) { cb(in) }
	case Int32:
		callback = func(in []int32) { cb(in) }
	case Int16:
		callback = func(in []int16) { cb(in) }
	case Int8:
		callback = func(in []int8) { cb(in) }
	case Uint8:
		callback = func(in []uint8) { cb(in) }
	default:
		return nil, fmt.Errorf("unsupported sample format %v", cfg.Format)
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: cfg.Channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}, callback)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	return stream, nil
}

func (h *PortAudioHost) OpenOutputStream(cfg StreamConfig, cb OutputCallback) (Stream, error) {
	device, ok := cfg.Device.handle.(*portaudio.DeviceInfo)
	if !ok {
		return nil, fmt.Errorf("device %q was not resolved by PortAudio", cfg.Device.Name)
	}

	var callback any
	switch cfg.Format {
	case Float32:
		callback = func(out []float32) { cb(out) }
	case Int32:
		callback = func(out []int32) { cb(out) }
	case Int16:
		callback = func(out []int16) { cb(out) }
	case Int8:
		callback = func(out []int8) { cb(out) }
	case Uint8:
		callback = func(out []uint8) { cb(out) }
	default:
		return nil, fmt.Errorf("unsupported sample format %v", cfg.Format)
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: cfg.Channels,
			Latency:  device.DefaultLowOutputLatency,
		},
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}, callback)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	return stream, nil
}

func (h *PortAudioHost) Close() error {
	return portaudio.Terminate()
}

func fromPortAudio(d *portaudio.DeviceInfo) DeviceInfo {
	return DeviceInfo{
		Name:              d.Name,
		MaxInputChannels:  d.MaxInputChannels,
		MaxOutputChannels: d.MaxOutputChannels,
		DefaultSampleRate: d.DefaultSampleRate,
	}
}
