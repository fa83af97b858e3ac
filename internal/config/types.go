package config

// Config is the root configuration for agentdeck.
type Config struct {
	Console ConsoleConfig `yaml:"console,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	LLM     LLMConfig     `yaml:"llm,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ConsoleConfig controls the operator console and the API client behind it.
type ConsoleConfig struct {
	BaseURL      string `yaml:"baseUrl,omitempty"`
	Token        string `yaml:"token,omitempty"`        // sent as a bearer token when set
	PollInterval string `yaml:"pollInterval,omitempty"` // Go duration, e.g. "60s"
	MetricsHours int    `yaml:"metricsHours,omitempty"`
	Timeout      string `yaml:"timeout,omitempty"` // empty = HTTP client default (none)
	StaleGuard   bool   `yaml:"staleGuard,omitempty"`
}

// ServerConfig controls the reference agent backend started by `agentdeck serve`.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	Token          string   `yaml:"token,omitempty"`
	DBPath         string   `yaml:"dbPath,omitempty"`
	Seed           *bool    `yaml:"seed,omitempty"` // seed the default agent roster on an empty database; defaults to true
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// LLMConfig selects the completion provider used by the reference backend.
type LLMConfig struct {
	Provider        string   `yaml:"provider,omitempty"` // "none" | "openai"
	APIKey          string   `yaml:"apiKey,omitempty"`
	Model           string   `yaml:"model,omitempty"`
	BaseURL         string   `yaml:"baseUrl,omitempty"` // any OpenAI-compatible endpoint
	CostPer1kTokens float64  `yaml:"costPer1kTokens,omitempty"`
	FallbackModels  []string `yaml:"fallbackModels,omitempty"` // tried in order on rate limits and 5xx
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// SeedEnabled reports whether the backend should seed an empty database.
func (s ServerConfig) SeedEnabled() bool {
	return s.Seed == nil || *s.Seed
}
