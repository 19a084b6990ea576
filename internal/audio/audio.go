package audio

// Host is the device boundary: discovery plus callback-driven streams.
type Host interface {
	Devices() ([]DeviceInfo, error)
	// InputDevice resolves name to an input device; an empty name selects the default.
	InputDevice(name string) (DeviceInfo, error)
	// OutputDevice resolves name to an output device; an empty name selects the default.
	OutputDevice(name string) (DeviceInfo, error)
	OpenInputStream(cfg StreamConfig, cb InputCallback) (Stream, error)
	OpenOutputStream(cfg StreamConfig, cb OutputCallback) (Stream, error)
	Close() error
}

// Stream is an opened device stream. After Close returns no further callbacks run.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// InputCallback receives one batch of interleaved frames from the driver thread.
// in is one of []float32, []int32, []int16, []int8 or []uint8 depending on the
// stream's SampleFormat. The callback must not block.
type InputCallback func(in any)

// OutputCallback fills one batch of interleaved frames on the driver thread.
// out has the same dynamic types as InputCallback's argument.
type OutputCallback func(out any)

// DeviceInfo represents an audio device
type DeviceInfo struct {
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	DefaultInput      bool
	DefaultOutput     bool

	handle any // backend-specific device reference
}

// StreamConfig is the negotiated shape of a stream.
type StreamConfig struct {
	Device          DeviceInfo
	Channels        int
	SampleRate      float64
	Format          SampleFormat
	FramesPerBuffer int
}
