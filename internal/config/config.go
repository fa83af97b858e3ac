package config

import (
	"fmt"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultBaseURL      = "http://127.0.0.1:18790"
	DefaultPollInterval = 60 * time.Second
	DefaultMetricsHours = 24
	DefaultServerPort   = 18790
)

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Console: ConsoleConfig{
			BaseURL:      DefaultBaseURL,
			PollInterval: DefaultPollInterval.String(),
			MetricsHours: DefaultMetricsHours,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
			Bind: "loopback",
		},
		LLM: LLMConfig{
			Provider:        "none",
			Model:           "gpt-4o-mini",
			CostPer1kTokens: 0.0006,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// PollEvery parses the console poll interval, falling back to the default.
func (c ConsoleConfig) PollEvery() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return DefaultPollInterval
	}
	return d
}

// RequestTimeout parses the console request timeout. Zero means no explicit
// timeout beyond the transport defaults.
func (c ConsoleConfig) RequestTimeout() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
