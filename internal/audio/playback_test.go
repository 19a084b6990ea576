package audio

import (
	"errors"
	"testing"
)

func TestPlaybackCompletionWaitsForAllSamples(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3, 0.4, 0.5}
	p := NewPlaybackState(samples)

	requested := 0
	for requested < len(samples) {
		if p.done.Fired() {
			t.Fatalf("completion fired after only %d of %d frames", requested, len(samples))
		}
		out := make([]float32, 2)
		if ok, err := p.TryFill(out, 1); !ok || err != nil {
			t.Fatalf("TryFill() = %v, %v", ok, err)
		}
		requested += len(out)
	}

	select {
	case <-p.Done():
	default:
		t.Fatal("expected completion once the cursor passed the last sample")
	}

	// Further fills keep working and don't panic on the already-fired signal.
	if ok, _ := p.TryFill(make([]float32, 4), 1); !ok {
		t.Fatal("TryFill() after completion failed")
	}
}

func TestPlaybackDuplicatesAndPadsWithSilence(t *testing.T) {
	p := NewPlaybackState([]float32{0.5, -0.5})

	out := []float32{9, 9, 9, 9, 9, 9, 9, 9}
	if ok, err := p.TryFill(out, 2); !ok || err != nil {
		t.Fatalf("TryFill() = %v, %v", ok, err)
	}

	expected := []float32{0.5, 0.5, -0.5, -0.5, 0, 0, 0, 0}
	for i := range expected {
		if out[i] != expected[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], expected[i])
		}
	}

	cursor, total := p.Position()
	if total != 2 || cursor != 3 {
		t.Errorf("Position() = %d, %d; want cursor 3 of 2", cursor, total)
	}
}

func TestPlaybackEmptyClipCompletesImmediately(t *testing.T) {
	p := NewPlaybackState(nil)

	out := []int16{7, 7}
	if ok, _ := p.TryFill(out, 2); !ok {
		t.Fatal("TryFill() failed")
	}
	if out[0] != 0 || out[1] != 0 {
		t.Errorf("expected silence, got %v", out)
	}
	if !p.done.Fired() {
		t.Error("expected completion for an empty clip")
	}
}

func TestPlaybackLeavesBufferOnContention(t *testing.T) {
	p := NewPlaybackState([]float32{0.5})

	out := []float32{0.9, 0.9}
	p.mu.Lock()
	ok, err := p.TryFill(out, 1)
	p.mu.Unlock()

	if ok || err != nil {
		t.Fatalf("TryFill() under contention = %v, %v; want false, nil", ok, err)
	}
	if out[0] != 0.9 || out[1] != 0.9 {
		t.Errorf("buffer was modified under contention: %v", out)
	}
	if cursor, _ := p.Position(); cursor != 0 {
		t.Errorf("cursor advanced to %d under contention", cursor)
	}
}

func TestPlaybackRejectsUnknownBuffer(t *testing.T) {
	p := NewPlaybackState([]float32{0.5})

	_, err := p.TryFill([]float64{0}, 1)
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("TryFill([]float64) error = %v, want ConversionError", err)
	}
}

func TestSignalFiresOnce(t *testing.T) {
	s := NewSignal()
	if s.Fired() {
		t.Fatal("new signal should not be fired")
	}
	if !s.Fire() {
		t.Fatal("first Fire() should report delivery")
	}
	if s.Fire() {
		t.Fatal("duplicate Fire() should be ignored")
	}
	select {
	case <-s.Done():
	default:
		t.Fatal("Done() should be closed after Fire()")
	}
}
