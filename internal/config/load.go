package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when configuration is missing or fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix is prepended to every environment variable name, e.g.
// BIONEXUS_SERVER_PORT for server.port.
const EnvPrefix = "BIONEXUS"

// configFileEnv names an explicit configuration file.
const configFileEnv = "BIONEXUS_CONFIG_FILE"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
// A missing API key is a startup error, not a deferred call-time failure.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path := os.Getenv(configFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrInvalidConfig, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: failed to read config file: %v", ErrInvalidConfig, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to AutomaticEnv during Unmarshal.
	if err := v.BindEnv("llm.gemini_api_key", EnvPrefix+"_LLM_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %v", ErrInvalidConfig, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: validation failed: %v", ErrInvalidConfig, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("llm.model_name", "gemini-3-flash-preview")
	v.SetDefault("llm.pro_model_name", "gemini-3.1-pro-preview")
	v.SetDefault("llm.speech_model_name", "gemini-2.5-flash-preview-tts")
	v.SetDefault("llm.speech_voice", "Kore")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.initial_backoff", "1s")
	v.SetDefault("llm.backoff_multiplier", 2.0)
	v.SetDefault("llm.retry_network_errors", false)
	v.SetDefault("llm.request_timeout", "60s")
	v.SetDefault("llm.base_url", "")
}
