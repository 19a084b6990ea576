// Package clip holds the mono audio clip model shared by capture, playback and storage.
package clip

import (
	"errors"
	"time"
)

// ErrInvalidSampleRate is returned for clips or targets with a non-positive sample rate.
var ErrInvalidSampleRate = errors.New("sample rate must be positive")

// Clip is a mono recording held in memory.
type Clip struct {
	// ID is assigned by storage on first save; zero means not yet persisted.
	ID         int64
	Name       string
	Date       time.Time
	Samples    []float32 // nominally in [-1, 1]
	SampleRate int       // Hz
}

// Summary is the listing view of a stored clip.
type Summary struct {
	ID   int64
	Name string
	Date time.Time
}

// New returns an empty clip stamped with date in UTC.
func New(name string, date time.Time, sampleRate int) (*Clip, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	return &Clip{
		Name:       name,
		Date:       date.UTC(),
		Samples:    make([]float32, 0, sampleRate),
		SampleRate: sampleRate,
	}, nil
}

// Validate reports whether the clip can be played or stored.
func (c *Clip) Validate() error {
	if c.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	return nil
}

// Saved reports whether storage has assigned an ID.
func (c *Clip) Saved() bool { return c.ID != 0 }

func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

func (c *Clip) Summary() Summary {
	return Summary{ID: c.ID, Name: c.Name, Date: c.Date}
}
