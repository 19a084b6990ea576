// Package permissions checks operating system access to the microphone.
package permissions

import "errors"

// ErrMicrophoneDenied is returned when the user has not allowed microphone access.
var ErrMicrophoneDenied = errors.New("microphone permission not granted")

// Status is the microphone authorization state reported by the OS.
type Status int

const (
	NotDetermined Status = 0
	Restricted    Status = 1
	Denied        Status = 2
	Authorized    Status = 3
)

func (s Status) String() string {
	switch s {
	case NotDetermined:
		return "not determined"
	case Restricted:
		return "restricted"
	case Denied:
		return "denied"
	case Authorized:
		return "authorized"
	}
	return "unknown"
}
