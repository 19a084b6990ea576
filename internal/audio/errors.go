package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevice is wrapped by DeviceError when no matching device exists.
	ErrNoDevice = errors.New("no audio device available")
	// ErrSessionState is returned when a session buffer is used out of lifecycle order.
	ErrSessionState = errors.New("session buffer used out of order")
)

// DeviceError reports a failure to find or negotiate a device. Fatal to the session.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string { return fmt.Sprintf("device %s: %v", e.Op, e.Err) }
func (e *DeviceError) Unwrap() error { return e.Err }

// StreamError reports a failure to build, start or stop a stream.
type StreamError struct {
	Op  string
	Err error
}

func (e *StreamError) Error() string { return fmt.Sprintf("stream %s: %v", e.Op, e.Err) }
func (e *StreamError) Unwrap() error { return e.Err }

// ConversionError is raised inside a callback for a buffer type it cannot convert.
// It never leaves the callback; the batch is skipped.
type ConversionError struct {
	Type string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("unsupported sample buffer type %s", e.Type)
}

// SignalError reports that waiting for a lifecycle signal ended without it firing.
type SignalError struct {
	Signal string
	Err    error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("waiting for %s signal: %v", e.Signal, e.Err)
}
func (e *SignalError) Unwrap() error { return e.Err }
