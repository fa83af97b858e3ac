package main

import (
	"os"

	"github.com/soyeahso/agentdeck/internal/cli"
	"github.com/tillberg/autorestart"
)

func main() {
	if os.Getenv("AGENTDECK_AUTORESTART") != "" {
		go autorestart.RestartOnChange()
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
