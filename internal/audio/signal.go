package audio

import "sync"

// Signal is a one-shot notification. Fire may be called any number of times from
// any goroutine without blocking; only the first call has an effect.
type Signal struct {
	once sync.Once
	done chan struct{}
}

func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Fire reports whether this call delivered the notification.
func (s *Signal) Fire() bool {
	fired := false
	s.once.Do(func() {
		close(s.done)
		fired = true
	})
	return fired
}

func (s *Signal) Done() <-chan struct{} { return s.done }

func (s *Signal) Fired() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
