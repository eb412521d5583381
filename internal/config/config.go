package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/peezyagent/rfp-analyzer/internal/models"
)

// Defaults for optional settings.
const (
	DefaultMaxFileSize        = "10MB"
	DefaultSupportedFileTypes = ".pdf"
)

// envFileName is the optional environment-definition file imported from
// the working directory before the process environment is consulted.
const envFileName = ".env"

// Config holds the validated process configuration. Fields are
// unexported and assigned exactly once inside Load, so any Config a
// caller can observe is finalized and safe to share without locking.
type Config struct {
	apiKey             string
	sessionSecret      string
	maxFileSize        string
	maxFileSizeBytes   int64
	supportedFileTypes string
}

// Load builds the process configuration from environment variables.
//
// An optional .env file in the working directory is imported first,
// best-effort; values from the process environment take precedence over
// it. ANTHROPIC_API_KEY is required, the remaining settings fall back
// to documented defaults, and FLASK_SECRET_KEY is generated fresh (32
// random bytes, hex-encoded) when not supplied. The returned Config is
// validated and immutable.
func Load(logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("loading configuration from environment")

	env := readEnvFile(logger)

	apiKey, err := requiredSetting(env, "ANTHROPIC_API_KEY")
	if err != nil {
		return nil, err
	}

	secret := optionalSetting(env, "FLASK_SECRET_KEY", "")
	if secret == "" {
		if secret, err = generateSecret(); err != nil {
			return nil, err
		}
		logger.Info("generated new session secret")
	}

	cfg := &Config{
		apiKey:             apiKey,
		sessionSecret:      secret,
		maxFileSize:        optionalSetting(env, "MAX_FILE_SIZE", DefaultMaxFileSize),
		supportedFileTypes: optionalSetting(env, "SUPPORTED_FILE_TYPES", DefaultSupportedFileTypes),
	}

	cfg.maxFileSizeBytes, err = ParseSizeBytes(cfg.maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("MAX_FILE_SIZE: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info("configuration loaded",
		"max_file_size", cfg.maxFileSize,
		"max_file_size_bytes", cfg.maxFileSizeBytes,
		"supported_file_types", cfg.supportedFileTypes)

	return cfg, nil
}

// readEnvFile imports the optional .env file. A missing or unreadable
// file is skipped: the process environment alone is enough.
func readEnvFile(logger *slog.Logger) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(envFileName)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		logger.Debug("no .env file imported", "error", err)
	} else {
		logger.Info("imported settings from .env file")
	}
	return v
}

// lookupSetting resolves key from the process environment first, then
// the imported .env file. The bool reports whether the key was set at
// all, which viper's GetString alone cannot distinguish from a blank.
func lookupSetting(env *viper.Viper, key string) (string, bool) {
	if raw, ok := os.LookupEnv(key); ok {
		return raw, true
	}
	if env.IsSet(key) {
		return env.GetString(key), true
	}
	return "", false
}

func requiredSetting(env *viper.Viper, key string) (string, error) {
	raw, ok := lookupSetting(env, key)
	if !ok {
		return "", fmt.Errorf("%w: environment variable %s", models.ErrMissingRequired, key)
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("%w: environment variable %s cannot be empty", models.ErrMissingRequired, key)
	}
	return value, nil
}

func optionalSetting(env *viper.Viper, key, fallback string) string {
	raw, ok := lookupSetting(env, key)
	if !ok {
		return fallback
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return fallback
	}
	return value
}

// generateSecret returns 32 cryptographically random bytes hex-encoded
// to 64 characters.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.apiKey, "sk-") {
		return fmt.Errorf("%w: ANTHROPIC_API_KEY must start with %q", models.ErrInvalidFormat, "sk-")
	}
	if !IsValidSize(c.maxFileSize) {
		return fmt.Errorf("%w: MAX_FILE_SIZE %q", models.ErrInvalidFormat, c.maxFileSize)
	}
	if !strings.HasPrefix(c.supportedFileTypes, ".") {
		return fmt.Errorf("%w: SUPPORTED_FILE_TYPES must start with '.': %q", models.ErrInvalidFormat, c.supportedFileTypes)
	}
	return nil
}

// APIKey returns the Anthropic API key.
func (c *Config) APIKey() string { return c.apiKey }

// SessionSecret returns the session secret, supplied or generated.
func (c *Config) SessionSecret() string { return c.sessionSecret }

// MaxFileSize returns the upload limit as configured, e.g. "10MB".
func (c *Config) MaxFileSize() string { return c.maxFileSize }

// MaxFileSizeBytes returns the upload limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 { return c.maxFileSizeBytes }

// SupportedFileTypes returns the accepted file extension list.
func (c *Config) SupportedFileTypes() string { return c.supportedFileTypes }

// Set rejects every write. A Config is finalized when Load returns and
// the construction window is never exposed.
func (c *Config) Set(field string, value any) error {
	return fmt.Errorf("%w: config field %q", models.ErrImmutable, field)
}

// Redacted returns the configuration without secret values, safe for
// logs and diagnostics endpoints.
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"max_file_size":        c.maxFileSize,
		"max_file_size_bytes":  c.maxFileSizeBytes,
		"supported_file_types": c.supportedFileTypes,
		"api_key_set":          c.apiKey != "",
	}
}

// FullMap additionally includes the API key and session secret.
// Trusted internal use only; never log the result.
func (c *Config) FullMap() map[string]any {
	m := c.Redacted()
	m["anthropic_api_key"] = c.apiKey
	m["flask_secret_key"] = c.sessionSecret
	return m
}

func (c *Config) String() string {
	return fmt.Sprintf("Config(api_key_set=%t, max_file_size=%q (%d bytes), supported_types=%q)",
		c.apiKey != "", c.maxFileSize, c.maxFileSizeBytes, c.supportedFileTypes)
}
