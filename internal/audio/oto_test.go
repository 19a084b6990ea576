package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"
)

// fakeOtoPlayer stops playing once its reader has returned EOF, as oto does
// after the buffered bytes run out.
type fakeOtoPlayer struct {
	mu      sync.Mutex
	r       io.Reader
	playing bool
	paused  bool
	pulls   int
	stuck   bool // never finishes playing
}

func (p *fakeOtoPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
}

func (p *fakeOtoPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.paused = true
}

func (p *fakeOtoPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.stuck {
		return p.playing
	}
	buf := make([]byte, 3)
	if _, err := p.r.Read(buf); errors.Is(err, io.EOF) {
		p.playing = false
	}
	p.pulls++
	return p.playing
}

func (p *fakeOtoPlayer) Err() error   { return nil }
func (p *fakeOtoPlayer) Close() error { return nil }

func newTestOtoStream(format SampleFormat, channels, frames int, cb OutputCallback) *otoStream {
	return newOtoStream(StreamConfig{
		Channels:        channels,
		SampleRate:      48000,
		Format:          format,
		FramesPerBuffer: frames,
	}, cb)
}

func TestOtoStreamBufferMatchesCallbackSize(t *testing.T) {
	tests := []struct {
		format   SampleFormat
		channels int
		want     int
	}{
		{Float32, 2, 512 * 2 * 4},
		{Int16, 2, 512 * 2 * 2},
		{Uint8, 1, 512},
	}
	for _, tt := range tests {
		s := newTestOtoStream(tt.format, tt.channels, 512, func(any) {})
		if s.bufferBytes != tt.want {
			t.Errorf("%v x%d: bufferBytes = %d, want %d", tt.format, tt.channels, s.bufferBytes, tt.want)
		}
	}

	s := newTestOtoStream(Float32, 2, 480, func(any) {})
	if s.latency != 10*time.Millisecond {
		t.Errorf("latency = %v, want 10ms", s.latency)
	}
}

func TestOtoStreamReadEncodesFloat32(t *testing.T) {
	s := newTestOtoStream(Float32, 2, 4, func(out any) {
		buf := out.([]float32)
		for i := range buf {
			buf[i] = 0.5
		}
	})

	p := make([]byte, 16)
	n, err := s.Read(p)
	if err != nil || n != 16 {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	for i := 0; i < n; i += 4 {
		if v := math.Float32frombits(binary.LittleEndian.Uint32(p[i:])); v != 0.5 {
			t.Errorf("sample at byte %d = %v, want 0.5", i, v)
		}
	}
}

func TestOtoStreamShortReadsKeepFrames(t *testing.T) {
	next := int16(0)
	s := newTestOtoStream(Int16, 2, 4, func(out any) {
		buf := out.([]int16)
		for i := 0; i < len(buf); i += 2 {
			next++
			buf[i], buf[i+1] = next, next
		}
	})

	// One stereo i16 frame is 4 bytes; read 3 at a time.
	var got []byte
	for len(got) < 12 {
		p := make([]byte, 3)
		n, err := s.Read(p)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if n == 0 {
			t.Fatal("Read() made no progress on a short buffer")
		}
		got = append(got, p[:n]...)
	}

	for f := range 3 {
		l := int16(binary.LittleEndian.Uint16(got[f*4:]))
		r := int16(binary.LittleEndian.Uint16(got[f*4+2:]))
		if l != int16(f+1) || r != int16(f+1) {
			t.Errorf("frame %d = (%d, %d), want (%d, %d)", f, l, r, f+1, f+1)
		}
	}
}

func TestOtoStreamStopDrainsBeforePausing(t *testing.T) {
	state := NewPlaybackState([]float32{0.25, 0.5, 0.75})
	s := newTestOtoStream(Float32, 1, 2, func(out any) {
		state.TryFill(out, 1)
	})
	player := &fakeOtoPlayer{r: s}
	s.player = player

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// A partly consumed frame is still owed to the player when Stop begins.
	p := make([]byte, 2)
	if n, err := s.Read(p); n != 2 || err != nil {
		t.Fatalf("Read() = %d, %v", n, err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if !player.paused {
		t.Error("expected the player to be paused after Stop")
	}
	if player.pulls == 0 {
		t.Error("Stop paused without letting the buffered audio play out")
	}
	if n, err := s.Read(make([]byte, 8)); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("Read() after drain = %d, %v, want io.EOF", n, err)
	}
}

func TestOtoStreamStopIsBounded(t *testing.T) {
	s := newTestOtoStream(Float32, 1, 2, func(any) {})
	player := &fakeOtoPlayer{r: s, stuck: true}
	s.player = player
	s.drainTimeout = 20 * time.Millisecond

	s.Start()
	start := time.Now()
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Stop() took %v, want it bounded by the drain timeout", elapsed)
	}
	if !player.paused {
		t.Error("expected the player to be paused after the drain timeout")
	}
}

func TestOtoStreamReadAfterClose(t *testing.T) {
	s := newTestOtoStream(Float32, 1, 2, func(any) {})
	s.player = &fakeOtoPlayer{r: s}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.Read(make([]byte, 8)); !errors.Is(err, io.EOF) {
		t.Errorf("Read() after Close = %v, want io.EOF", err)
	}
}
