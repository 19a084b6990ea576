package clip

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrCorruptSamples is returned when an encoded sample blob is not a whole number of samples.
var ErrCorruptSamples = errors.New("encoded samples length is not a multiple of 4")

// EncodeSamples serialises samples as consecutive 4-byte big-endian IEEE-754 floats.
func EncodeSamples(samples []float32) []byte {
	data := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.BigEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}
	return data
}

// DecodeSamples is the inverse of EncodeSamples.
func DecodeSamples(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, ErrCorruptSamples
	}
	samples := make([]float32, len(data)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.BigEndian.Uint32(data[i*4:]))
	}
	return samples, nil
}
