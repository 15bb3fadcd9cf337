package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`

	// ModelName is the default (flash) model; ProModelName serves TierPro
	// requests and SpeechModelName serves audio output.
	ModelName       string `mapstructure:"model_name" validate:"required"`
	ProModelName    string `mapstructure:"pro_model_name" validate:"required"`
	SpeechModelName string `mapstructure:"speech_model_name" validate:"required"`
	SpeechVoice     string `mapstructure:"speech_voice" validate:"required"`

	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	// Retry settings for capacity-exhausted (and optionally network) failures.
	MaxAttempts        int           `mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	InitialBackoff     time.Duration `mapstructure:"initial_backoff" validate:"gt=0"`
	BackoffMultiplier  float64       `mapstructure:"backoff_multiplier" validate:"gte=1"`
	RetryNetworkErrors bool          `mapstructure:"retry_network_errors"`

	// RequestTimeout bounds a single remote attempt.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`

	// BaseURL overrides the service endpoint, e.g. for a proxy.
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}
