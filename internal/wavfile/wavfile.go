// Package wavfile converts clips to and from PCM WAV files.
package wavfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/petems/voijix/internal/clip"
)

const wavFormatPCM = 1

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit PCM is supported")
	ErrUnsupportedEncoding = errors.New("only PCM WAV files are supported")
	ErrNoChannels          = errors.New("WAV file has no channels")
)

// Export writes c as a mono PCM WAV with the given bit depth.
func Export(w io.WriteSeeker, c *clip.Clip, bitDepth int) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !supportedDepth(bitDepth) {
		return ErrUnsupportedBitDepth
	}

	scale := float64(int64(1)<<(bitDepth-1) - 1)
	data := make([]int, len(c.Samples))
	for i, s := range c.Samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		data[i] = int(math.Round(v * scale))
	}

	enc := wav.NewEncoder(w, c.SampleRate, bitDepth, 1, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: c.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing WAV samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing WAV: %w", err)
	}
	return nil
}

// Import reads a PCM WAV into a new unsaved clip named name, keeping channel 0.
func Import(r io.ReadSeeker, name string, date time.Time) (*clip.Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, ErrUnsupportedEncoding
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV samples: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if !supportedDepth(bitDepth) {
		return nil, ErrUnsupportedBitDepth
	}
	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, ErrNoChannels
	}

	c, err := clip.New(name, date, int(dec.SampleRate))
	if err != nil {
		return nil, err
	}

	scale := float64(int64(1) << (bitDepth - 1))
	frames := len(buf.Data) / channels
	c.Samples = make([]float32, frames)
	for i := range frames {
		c.Samples[i] = float32(float64(buf.Data[i*channels]) / scale)
	}
	return c, nil
}

func supportedDepth(bitDepth int) bool {
	return bitDepth == 16 || bitDepth == 24 || bitDepth == 32
}
