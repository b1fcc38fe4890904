// Command member drives the member client state from a terminal. Each
// invocation behaves like one page load: persisted state is read, the session
// is resolved, the command runs and pending server calls are awaited.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/tour-member/internal/config"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	initLogger(cfg)

	if err := newRootCmd(cfg, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
