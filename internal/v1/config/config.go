package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds validated environment configuration
type Config struct {
	// Optional variables with defaults
	Port          string
	AllowedOrigin string
	GoEnv         string
	LogLevel      string
}

// ValidateEnv validates all environment variables and returns a Config object.
// Returns an error if any variable is present but invalid.
func ValidateEnv() (*Config, error) {
	cfg := &Config{}
	var errors []string

	// Optional: PORT (defaults to 5000)
	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		cfg.Port = "5000"
	} else {
		port, err := strconv.Atoi(cfg.Port)
		if err != nil || port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got '%s')", cfg.Port))
		}
	}

	// Optional: ALLOWED_ORIGIN (single origin, defaults to local dev client)
	cfg.AllowedOrigin = os.Getenv("ALLOWED_ORIGIN")
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "http://localhost:3000"
	} else if !strings.HasPrefix(cfg.AllowedOrigin, "http://") && !strings.HasPrefix(cfg.AllowedOrigin, "https://") {
		errors = append(errors, fmt.Sprintf("ALLOWED_ORIGIN must be a full origin including scheme (got '%s')", cfg.AllowedOrigin))
	}

	// Optional: GO_ENV (defaults to "production")
	cfg.GoEnv = os.Getenv("GO_ENV")
	if cfg.GoEnv == "" {
		cfg.GoEnv = "production"
	}

	// Optional: LOG_LEVEL (defaults to "info")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// If there are validation errors, return them
	if len(errors) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	// Log validated configuration
	logValidatedConfig(cfg)

	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// logValidatedConfig logs the validated configuration
func logValidatedConfig(cfg *Config) {
	slog.Info("✅ Environment configuration validated successfully")
	slog.Info("Configuration",
		"port", cfg.Port,
		"allowed_origin", cfg.AllowedOrigin,
		"go_env", cfg.GoEnv,
		"log_level", cfg.LogLevel,
	)
}
