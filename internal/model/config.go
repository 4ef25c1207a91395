package model

import "time"

// Config holds all runtime configuration
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway" mapstructure:"gateway"`
	Animation AnimationConfig `yaml:"animation" mapstructure:"animation"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Suggest   SuggestConfig   `yaml:"suggest" mapstructure:"suggest"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// GatewayConfig configures the remote correction store
type GatewayConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Token             string        `yaml:"token,omitempty" mapstructure:"token"` // Bearer token, prefer NORMALIA_GATEWAY_TOKEN
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// AnimationConfig configures the change highlight animator
type AnimationConfig struct {
	HighlightWindow time.Duration `yaml:"highlight_window" mapstructure:"highlight_window"`
	SweepInterval   time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// ExportConfig configures corrected-text export
type ExportConfig struct {
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	UseTags     bool   `yaml:"use_tags" mapstructure:"use_tags"`
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
}

// SuggestConfig configures the optional external candidate provider
type SuggestConfig struct {
	Provider  string        `yaml:"provider" mapstructure:"provider"` // "openai" or "" (disabled)
	Model     string        `yaml:"model" mapstructure:"model"`
	APIKey    string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json, text
}

// HighlightWindow is how long a changed position stays highlighted
const HighlightWindow = 850 * time.Millisecond

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			BaseURL:           "http://localhost:5000/api",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 10,
			Burst:             5,
			UserAgent:         "Normalia/0.1 (+https://github.com/ppiankov/normalia)",
		},
		Animation: AnimationConfig{
			HighlightWindow: HighlightWindow,
			SweepInterval:   50 * time.Millisecond,
		},
		Export: ExportConfig{
			Concurrency: 4,
			UseTags:     false,
			OutputDir:   "./normalia-export",
		},
		Suggest: SuggestConfig{
			Provider:  "",
			Model:     "gpt-4o-mini",
			MaxTokens: 200,
			CacheTTL:  30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
