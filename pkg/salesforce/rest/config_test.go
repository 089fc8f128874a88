package sfrest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "github.com/natserract/sfrest/pkg/http"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SF_OAUTH_ENDPOINT", "")
	t.Setenv("SF_CLIENT_ID", "client-id")
	t.Setenv("SF_CLIENT_SECRET", "client-secret")
	t.Setenv("SF_API_VERSION", "")
	t.Setenv("SF_DEBUG", "true")
	t.Setenv("SF_HTTP_MAX_TRIES", "3")
	t.Setenv("SF_HTTP_TIMEOUT", "5s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultOAuthEndpoint, cfg.OAuthEndpoint)
	assert.Equal(t, DefaultAPIVersion, cfg.APIVersion)
	assert.Equal(t, "client-id", cfg.ClientID)
	assert.True(t, cfg.Debug)
	assert.Equal(t, uint(3), cfg.MaxTries)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingCredentialsAreNotAnError(t *testing.T) {
	t.Setenv("SF_CLIENT_ID", "")
	t.Setenv("SF_CLIENT_SECRET", "")
	t.Setenv("SF_DEBUG", "")
	t.Setenv("SF_HTTP_MAX_TRIES", "")
	t.Setenv("SF_HTTP_TIMEOUT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"SF_DEBUG":          "sometimes",
		"SF_HTTP_MAX_TRIES": "-1",
		"SF_HTTP_TIMEOUT":   "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv("SF_DEBUG", "")
			t.Setenv("SF_HTTP_MAX_TRIES", "")
			t.Setenv("SF_HTTP_TIMEOUT", "")
			t.Setenv(key, value)

			_, err := LoadConfig()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestConfig_ValidateLogin(t *testing.T) {
	cfg := &Config{OAuthEndpoint: DefaultOAuthEndpoint, ClientID: "id", ClientSecret: "secret"}
	assert.NoError(t, cfg.validateLogin("user", "pass"))

	err := (&Config{}).validateLogin("", "")
	require.Error(t, err)
	for _, field := range []string{"oauthEndpoint", "clientId", "clientSecret", "username", "password"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := newAPIError(cause, "Salesforce query error: %s", cause.Error())

	assert.Equal(t, "Salesforce query error: dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsAPIError(err))
	assert.False(t, IsConfigurationError(err))
	assert.Equal(t, "ApiError", KindOf(err).String())

	assert.Equal(t, "ConfigurationError", KindConfiguration.String())
	assert.Equal(t, "AuthenticationError", KindAuthentication.String())
	assert.Equal(t, KindAPI, KindOf(errors.New("plain")))
}

func TestClassifyLoginError(t *testing.T) {
	statusErr := &httpclient.StatusError{StatusCode: 400}

	got := classifyLoginError(&httpclient.Response{
		StatusCode: 400,
		Body:       []byte(`{"error":"invalid_grant","error_description":"authentication failure"}`),
	}, statusErr)
	assert.Equal(t, KindAuthentication, got.Kind)
	assert.Equal(t, "Salesforce authentication error due to invalid user credentials: authentication failure", got.Message)
	assert.Same(t, statusErr, got.Cause)

	got = classifyLoginError(nil, errors.New("connection reset"))
	assert.Equal(t, KindAPI, got.Kind)
	assert.Equal(t, "Salesforce authentication error: connection reset", got.Message)
}

func TestSession_DataPath(t *testing.T) {
	s := newSession("tok", "https://na1.salesforce.com", "v38.0")
	assert.Equal(t, "/services/data/v38.0/query", s.dataPath("/query"))
	assert.Equal(t, "authenticated", StateAuthenticated.String())
}
