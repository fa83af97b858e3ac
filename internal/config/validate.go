package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Console
	if u, err := url.Parse(cfg.Console.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, ValidationIssue{
			Path:    "console.baseUrl",
			Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", cfg.Console.BaseURL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		issues = append(issues, ValidationIssue{
			Path:    "console.baseUrl",
			Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme),
		})
	}
	if cfg.Console.PollInterval != "" {
		if d, err := time.ParseDuration(cfg.Console.PollInterval); err != nil || d <= 0 {
			issues = append(issues, ValidationIssue{
				Path:    "console.pollInterval",
				Message: fmt.Sprintf("must be a positive duration, got %q", cfg.Console.PollInterval),
			})
		}
	}
	if cfg.Console.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Console.Timeout); err != nil || d < 0 {
			issues = append(issues, ValidationIssue{
				Path:    "console.timeout",
				Message: fmt.Sprintf("must be a non-negative duration, got %q", cfg.Console.Timeout),
			})
		}
	}
	if cfg.Console.MetricsHours < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "console.metricsHours",
			Message: fmt.Sprintf("must be positive, got %d", cfg.Console.MetricsHours),
		})
	}

	// Server
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}
	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Server.Bind != "" && !slices.Contains(validBinds, cfg.Server.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "server.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Server.Bind),
		})
	}

	// LLM
	validProviders := []string{"none", "openai"}
	if cfg.LLM.Provider != "" && !slices.Contains(validProviders, cfg.LLM.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.provider",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.LLM.Provider),
		})
	}
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "llm.apiKey",
			Message: "required when provider is openai (unless baseUrl points at a keyless endpoint)",
		})
	}
	if cfg.LLM.CostPer1kTokens < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "llm.costPer1kTokens",
			Message: "must not be negative",
		})
	}

	// Logging
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}
	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}
