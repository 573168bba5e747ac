// Command flowrt is a small driver that exercises the thread pool and timer
// manager from the command line.
package main

import (
	"os"
)

// Version is overridden at build time with -ldflags.
var Version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
