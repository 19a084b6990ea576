package audio

import "sync"

// PlaybackState is the shared cursor over a clip being played.
//
// The device callback advances the cursor through TryFill; the control
// goroutine waits on Done. Once the cursor has moved past the last sample,
// every further frame is silence and the completion signal fires.
type PlaybackState struct {
	mu      sync.Mutex
	cursor  int
	samples []float32
	done    *Signal
}

// NewPlaybackState plays samples, which must already be at the device rate.
func NewPlaybackState(samples []float32) *PlaybackState {
	return &PlaybackState{
		samples: samples,
		done:    NewSignal(),
	}
}

// TryFill writes the next frames into the interleaved buffer out, duplicating
// each sample across all channels. If the lock is busy it returns false and
// leaves out untouched, so the device plays whatever the buffer already held.
// Call only from the device callback.
func (p *PlaybackState) TryFill(out any, channels int) (bool, error) {
	frames, err := frameCount(out, channels)
	if err != nil {
		return false, err
	}
	if channels < 1 {
		channels = 1
	}

	if !p.mu.TryLock() {
		return false, nil
	}
	defer p.mu.Unlock()

	n := len(p.samples)
	for i := range frames {
		var v float32
		if p.cursor < n {
			v = p.samples[p.cursor]
		}
		putFrame(out, i, channels, v)
		if p.cursor <= n {
			p.cursor++
		}
	}

	if p.cursor > n {
		p.done.Fire()
	}
	return true, nil
}

// Done is closed once the whole clip has been handed to the device.
func (p *PlaybackState) Done() <-chan struct{} {
	return p.done.Done()
}

// Position returns the cursor and the number of samples. Control goroutine only.
func (p *PlaybackState) Position() (cursor, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor, len(p.samples)
}
