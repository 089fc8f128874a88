package http

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt timeout of the underlying net/http client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxTries sets how many attempts Do makes for retryable failures
// (network errors and 5xx). Values below 1 are ignored.
func WithMaxTries(n uint) Option {
	return func(c *Client) {
		if n >= 1 {
			c.maxTries = n
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}
