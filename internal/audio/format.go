package audio

import (
	"fmt"
	"math"
)

// SampleFormat is the device-side sample encoding of a stream.
type SampleFormat int

const (
	Float32 SampleFormat = iota
	Int32
	Int16
	Int8
	Uint8
)

var formatNames = map[SampleFormat]string{
	Float32: "f32",
	Int32:   "i32",
	Int16:   "i16",
	Int8:    "i8",
	Uint8:   "u8",
}

func (f SampleFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// ParseSampleFormat maps a config name such as "i16" to its SampleFormat.
func ParseSampleFormat(name string) (SampleFormat, error) {
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown sample format %q", name)
}

// appendFirstChannel converts channel 0 of every frame in the interleaved
// buffer in and appends it to dst. A trailing partial frame is ignored.
func appendFirstChannel(dst []float32, in any, channels int) ([]float32, error) {
	if channels < 1 {
		channels = 1
	}
	switch buf := in.(type) {
	case []float32:
		for i := 0; i+channels <= len(buf); i += channels {
			dst = append(dst, buf[i])
		}
	case []int32:
		for i := 0; i+channels <= len(buf); i += channels {
			dst = append(dst, float32(float64(buf[i])/(1<<31)))
		}
	case []int16:
		for i := 0; i+channels <= len(buf); i += channels {
			dst = append(dst, float32(buf[i])/(1<<15))
		}
	case []int8:
		for i := 0; i+channels <= len(buf); i += channels {
			dst = append(dst, float32(buf[i])/(1<<7))
		}
	case []uint8:
		for i := 0; i+channels <= len(buf); i += channels {
			dst = append(dst, (float32(buf[i])-128)/(1<<7))
		}
	default:
		return dst, &ConversionError{Type: fmt.Sprintf("%T", in)}
	}
	return dst, nil
}

// frameCount returns the number of whole frames in an interleaved buffer.
func frameCount(buf any, channels int) (int, error) {
	if channels < 1 {
		channels = 1
	}
	switch b := buf.(type) {
	case []float32:
		return len(b) / channels, nil
	case []int32:
		return len(b) / channels, nil
	case []int16:
		return len(b) / channels, nil
	case []int8:
		return len(b) / channels, nil
	case []uint8:
		return len(b) / channels, nil
	default:
		return 0, &ConversionError{Type: fmt.Sprintf("%T", buf)}
	}
}

// putFrame writes v to every channel of frame i in out.
// out must already have passed frameCount.
func putFrame(out any, i, channels int, v float32) {
	v = clamp(v)
	start := i * channels
	switch buf := out.(type) {
	case []float32:
		for c := range channels {
			buf[start+c] = v
		}
	case []int32:
		s := int32(float64(v) * math.MaxInt32)
		for c := range channels {
			buf[start+c] = s
		}
	case []int16:
		s := int16(v * math.MaxInt16)
		for c := range channels {
			buf[start+c] = s
		}
	case []int8:
		s := int8(v * math.MaxInt8)
		for c := range channels {
			buf[start+c] = s
		}
	case []uint8:
		s := uint8(v*127 + 128)
		for c := range channels {
			buf[start+c] = s
		}
	}
}

// clamp limits v to [-1, 1]. NaN becomes silence.
func clamp(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	if v > 1 {
		return 1
	} else if v < -1 {
		return -1
	}
	return v
}
