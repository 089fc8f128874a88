package sfrest

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

const (
	DefaultOAuthEndpoint = "https://login.salesforce.com/services/oauth2/token"
	DefaultAPIVersion    = "v38.0"
)

// Config holds the connected app settings. User credentials are passed to
// Login separately.
type Config struct {
	OAuthEndpoint string
	ClientID      string
	ClientSecret  string
	APIVersion    string
	// Debug logs every response body at debug level.
	Debug bool
	// MaxTries is the transport attempt count for retryable failures.
	// Zero means a single attempt.
	MaxTries uint
	Timeout  time.Duration
}

// LoadConfig reads SF_* variables, loading a .env file first when present.
// Missing credentials are not an error here; Login reports them.
func LoadConfig() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		OAuthEndpoint: getEnv("SF_OAUTH_ENDPOINT", DefaultOAuthEndpoint),
		ClientID:      os.Getenv("SF_CLIENT_ID"),
		ClientSecret:  os.Getenv("SF_CLIENT_SECRET"),
		APIVersion:    getEnv("SF_API_VERSION", DefaultAPIVersion),
		Timeout:       30 * time.Second,
	}

	if v := os.Getenv("SF_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("SF_DEBUG must be a boolean: %w", err)
		}
		cfg.Debug = debug
	}
	if v := os.Getenv("SF_HTTP_MAX_TRIES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("SF_HTTP_MAX_TRIES must be a positive integer: %w", err)
		}
		cfg.MaxTries = uint(n)
	}
	if v := os.Getenv("SF_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SF_HTTP_TIMEOUT must be a duration: %w", err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// Validate checks the connected app settings.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OAuthEndpoint, validation.Required),
		validation.Field(&c.ClientID, validation.Required),
		validation.Field(&c.ClientSecret, validation.Required),
	)
}

// validateLogin checks everything a password grant needs.
func (c *Config) validateLogin(username, password string) error {
	return validation.Errors{
		"oauthEndpoint": validation.Validate(c.OAuthEndpoint, validation.Required),
		"clientId":      validation.Validate(c.ClientID, validation.Required),
		"clientSecret":  validation.Validate(c.ClientSecret, validation.Required),
		"username":      validation.Validate(username, validation.Required),
		"password":      validation.Validate(password, validation.Required),
	}.Filter()
}

func (c *Config) apiVersion() string {
	if c.APIVersion == "" {
		return DefaultAPIVersion
	}
	return c.APIVersion
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
