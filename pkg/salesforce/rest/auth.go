package sfrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"github.com/natserract/sfrest/pkg/task"
	"go.uber.org/zap"
)

// OAuth error codes that select the failure kind.
const (
	oauthInvalidClientID = "invalid_client_id"
	oauthInvalidClient   = "invalid_client"
	oauthInvalidGrant    = "invalid_grant"
)

// Login authenticates username with the OAuth 2.0 password grant and
// stores the resulting Session on the client. Missing configuration or
// credentials fail immediately with a ConfigurationError. When a session
// already exists it is returned without a network call.
func (c *Client) Login(ctx context.Context, username, password string) *task.Task[*Session] {
	if err := c.config.validateLogin(username, password); err != nil {
		c.logger.Error("Salesforce client is not properly configured", zap.Error(err))
		return task.FromOutcome(task.Failure[*Session](
			newConfigurationError(err, "Salesforce client is not properly configured: %s", err.Error())))
	}

	if s := c.Session(); s != nil {
		c.logger.Debug("Already logged in to Salesforce", zap.String("instance_url", s.instanceURL))
		return task.FromOutcome(task.Success(s))
	}

	return task.Start(c.authenticate(ctx, username, password), stoppedAs("authentication"))
}

func (c *Client) authenticate(ctx context.Context, username, password string) task.Operation[*Session] {
	return func(yield func(task.Step[*Session]) bool) {
		c.logger.Info("Authenticating with Salesforce", zap.String("url", c.config.OAuthEndpoint))
		c.setState(StateAuthenticating)

		form := url.Values{}
		form.Set("username", username)
		form.Set("password", password)
		form.Set("client_secret", c.config.ClientSecret)
		form.Set("client_id", c.config.ClientID)
		form.Set("grant_type", "password")

		resp, err := roundTrip(c, yield, httpclient.RequestOptions{
			Method: http.MethodPost,
			URL:    c.config.OAuthEndpoint,
			Headers: map[string]string{
				"Content-Type": "application/x-www-form-urlencoded",
			},
			Body:    form,
			Context: ctx,
		})
		if errors.Is(err, errStopped) {
			c.setState(StateUnauthenticated)
			return
		}
		if err != nil {
			c.setState(StateUnauthenticated)
			loginErr := classifyLoginError(resp, err)
			c.logger.Error("Salesforce authentication failed",
				zap.Stringer("kind", loginErr.Kind),
				zap.Error(loginErr))
			yield(task.Fail[*Session](loginErr))
			return
		}

		session, err := c.parseSession(resp)
		if err != nil {
			c.setState(StateUnauthenticated)
			c.logger.Error("Failed to parse authentication response", zap.Error(err))
			yield(task.Fail[*Session](err))
			return
		}

		c.setSession(session)
		c.logger.Info("Successfully authenticated",
			zap.String("instance_url", session.instanceURL),
			zap.String("api_version", session.apiVersion))
		yield(task.Succeed(session))
	}
}

func (c *Client) parseSession(resp *httpclient.Response) (*Session, error) {
	var authResp AuthResponse
	if err := json.Unmarshal(resp.Body, &authResp); err != nil {
		return nil, newAPIError(err, "Salesforce authentication error: failed to parse response: %s", err.Error())
	}
	if authResp.AccessToken == "" || authResp.InstanceURL == "" {
		err := fmt.Errorf("response is missing access_token or instance_url")
		return nil, newAPIError(err, "Salesforce authentication error: %s", err.Error())
	}
	return newSession(authResp.AccessToken, authResp.InstanceURL, c.config.apiVersion()), nil
}

// classifyLoginError maps a failed token request onto the error taxonomy.
// Codes are matched exactly; anything unrecognised is an ApiError carrying
// the raw transport error text.
func classifyLoginError(resp *httpclient.Response, err error) *Error {
	var body AuthErrorResponse
	if resp == nil || json.Unmarshal(resp.Body, &body) != nil || body.Error == "" {
		return newAPIError(err, "Salesforce authentication error: %s", err.Error())
	}

	switch body.Error {
	case oauthInvalidClientID, oauthInvalidClient:
		return newConfigurationError(err,
			"Salesforce authentication error due to invalid OAuth configuration: %s", body.ErrorDescription)
	case oauthInvalidGrant:
		return newAuthenticationError(err,
			"Salesforce authentication error due to invalid user credentials: %s", body.ErrorDescription)
	default:
		return newAPIError(err, "Salesforce authentication error: %s", err.Error())
	}
}
