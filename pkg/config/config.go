package config

import (
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Config holds the settings the command-line drivers need on top of the
// connected app configuration.
type Config struct {
	Username      string
	Password      string
	SecurityToken string
	MirrorQuery   string
	MirrorObject  string
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Username:      os.Getenv("SF_USERNAME"),
		Password:      os.Getenv("SF_PASSWORD"),
		SecurityToken: os.Getenv("SF_SECURITY_TOKEN"),
		MirrorQuery:   getEnv("SF_MIRROR_QUERY", "SELECT Id, Subject, Status FROM Case"),
		MirrorObject:  getEnv("SF_MIRROR_OBJECT", "Case"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Username, validation.Required.Error("SF_USERNAME is required")),
		validation.Field(&c.Password, validation.Required.Error("SF_PASSWORD is required")),
		validation.Field(&c.MirrorQuery, validation.Required),
		validation.Field(&c.MirrorObject, validation.Required),
	)
}

// LoginPassword is the password sent to the token endpoint. Salesforce
// expects the security token appended to it when the caller's IP is not
// trusted.
func (c *Config) LoginPassword() string {
	return c.Password + c.SecurityToken
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
