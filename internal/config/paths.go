package config

import (
	"os"
	"path/filepath"
)

// Paths are the on-disk locations agentdeck reads and writes. Everything
// lives under one base directory, ~/.agentdeck unless AGENTDECK_HOME is set.
type Paths struct {
	Base   string
	Config string // config.yaml
	Env    string // .env, loaded before the config
	Logs   string
	Data   string // reference backend database
}

// ResolvePaths computes the standard paths.
func ResolvePaths() (Paths, error) {
	base, ok := os.LookupEnv("AGENTDECK_HOME")
	if !ok || base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, &ConfigError{Message: "cannot locate home directory: " + err.Error()}
		}
		base = filepath.Join(home, ".agentdeck")
	}
	at := func(name string) string { return filepath.Join(base, name) }
	return Paths{
		Base:   base,
		Config: at("config.yaml"),
		Env:    at(".env"),
		Logs:   at("logs"),
		Data:   at("data"),
	}, nil
}

// EnsureDirs creates the base, log and data directories.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Logs, p.Data} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDB is the reference backend database location.
func (p Paths) DefaultDB() string {
	return filepath.Join(p.Data, "agentdeck.db")
}

// DefaultLogFile is where the console writes logs when none is configured.
func (p Paths) DefaultLogFile() string {
	return filepath.Join(p.Logs, "console.log")
}
