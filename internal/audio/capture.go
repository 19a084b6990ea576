package audio

import (
	"sync"
	"sync/atomic"

	"github.com/petems/voijix/internal/clip"
)

type sessionState int

const (
	sessionIdle sessionState = iota
	sessionActive
	sessionDrained
)

// CaptureBuffer is the clip under construction during a recording.
//
// It moves Idle -> Active (Begin) -> Drained (Take). While Active the device
// callback appends through TryAppend, which never waits for the lock: if the
// control goroutine holds it, the whole batch is dropped and counted. The
// recorder only calls Take after the stream is closed, so in practice nothing
// is lost, but callers must not assume zero loss under contention.
type CaptureBuffer struct {
	mu    sync.Mutex
	state sessionState
	clip  *clip.Clip

	dropped atomic.Uint64
}

func NewCaptureBuffer() *CaptureBuffer {
	return &CaptureBuffer{}
}

// Begin hands c to the buffer and activates it.
func (b *CaptureBuffer) Begin(c *clip.Clip) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != sessionIdle || c == nil {
		return ErrSessionState
	}
	b.clip = c
	b.state = sessionActive
	return nil
}

// TryAppend appends channel 0 of every frame in the interleaved batch in.
// It reports false without error when the batch was dropped because the lock
// was busy or the buffer is not active. Call only from the device callback.
func (b *CaptureBuffer) TryAppend(in any, channels int) (bool, error) {
	if !b.mu.TryLock() {
		b.dropped.Add(1)
		return false, nil
	}
	defer b.mu.Unlock()

	if b.state != sessionActive {
		return false, nil
	}

	samples, err := appendFirstChannel(b.clip.Samples, in, channels)
	if err != nil {
		return false, err
	}
	b.clip.Samples = samples
	return true, nil
}

// Take drains the buffer and returns the clip. It may be called once.
func (b *CaptureBuffer) Take() (*clip.Clip, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != sessionActive {
		return nil, ErrSessionState
	}
	c := b.clip
	b.clip = nil
	b.state = sessionDrained
	return c, nil
}

// Dropped returns how many batches were discarded because of lock contention.
func (b *CaptureBuffer) Dropped() uint64 {
	return b.dropped.Load()
}
