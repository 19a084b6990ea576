package app

import (
	"fmt"
	"io"
)

// ConsoleStatus prints session banners to a terminal.
type ConsoleStatus struct {
	out io.Writer
}

func NewConsoleStatus(out io.Writer) *ConsoleStatus {
	return &ConsoleStatus{out: out}
}

func (s *ConsoleStatus) SetIdle() {}

func (s *ConsoleStatus) SetRecording() {
	fmt.Fprintln(s.out, bold("### Recording started"))
	fmt.Fprintln(s.out, "Press Ctrl-C to stop recording...")
}

func (s *ConsoleStatus) SetPlaying() {
	fmt.Fprintln(s.out, bold("### Playback started"))
}

func (s *ConsoleStatus) SetError() {
	fmt.Fprintln(s.out, warn("### Stopped on error"))
}
