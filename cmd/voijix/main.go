package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	e := &env{}
	err := newRootCmd(e).ExecuteContext(context.Background())
	if cerr := e.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
