package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("SF_USERNAME", "user@example.com")
	t.Setenv("SF_PASSWORD", "secret")
	t.Setenv("SF_SECURITY_TOKEN", "XYZ")
	t.Setenv("SF_MIRROR_QUERY", "")
	t.Setenv("SF_MIRROR_OBJECT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", cfg.Username)
	assert.Equal(t, "secretXYZ", cfg.LoginPassword())
	assert.Equal(t, "SELECT Id, Subject, Status FROM Case", cfg.MirrorQuery)
	assert.Equal(t, "Case", cfg.MirrorObject)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("SF_USERNAME", "")
	t.Setenv("SF_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SF_USERNAME is required")
	assert.Contains(t, err.Error(), "SF_PASSWORD is required")
}

func TestLoginPassword_WithoutToken(t *testing.T) {
	cfg := &Config{Password: "secret"}
	assert.Equal(t, "secret", cfg.LoginPassword())
}
