package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Client sends requests for the Salesforce layers. Every exchange is logged;
// network errors and 5xx answers are retried up to maxTries attempts.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
	maxTries   uint
}

type RequestOptions struct {
	Method  string
	URL     string
	Headers map[string]string
	// Body is sent as-is for []byte and string, form-encoded when the
	// Content-Type header asks for it, and as JSON otherwise.
	Body    interface{}
	Context context.Context
	// MaxTries overrides the client default when non-zero. 1 disables retries.
	MaxTries        uint
	MaxElapsed      time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// StatusError is returned alongside the Response when the server answers
// with a 4xx or 5xx status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.StatusCode >= 500 {
		return fmt.Sprintf("server error: %d - %s", e.StatusCode, string(e.Body))
	}
	return fmt.Sprintf("client error: %d - %s", e.StatusCode, string(e.Body))
}

// Retryable reports whether another attempt may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}

// NewClient creates a client logging through a production zap logger.
func NewClient(opts ...Option) *Client {
	logger, _ := zap.NewProduction()
	return NewClientWithLogger(logger, opts...)
}

// NewClientWithLogger creates a new HTTP client with a custom logger
func NewClientWithLogger(logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		maxTries:   1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) retryPolicy(opts RequestOptions) []backoff.RetryOption {
	maxTries := opts.MaxTries
	if maxTries == 0 {
		maxTries = c.maxTries
	}
	maxElapsed := opts.MaxElapsed
	if maxElapsed == 0 {
		maxElapsed = 5 * time.Minute
	}

	expBackoff := backoff.NewExponentialBackOff()
	if opts.InitialInterval > 0 {
		expBackoff.InitialInterval = opts.InitialInterval
	}
	if opts.MaxInterval > 0 {
		expBackoff.MaxInterval = opts.MaxInterval
	}
	expBackoff.Reset()

	return []backoff.RetryOption{
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxElapsedTime(maxElapsed),
		backoff.WithMaxTries(maxTries),
	}
}

// Do performs the request. For HTTP error statuses both the response and a
// *StatusError are returned so callers can inspect the error body.
func (c *Client) Do(opts RequestOptions) (*Response, error) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := c.logger.With(zap.String("method", opts.Method), zap.String("url", opts.URL))

	// last keeps the most recent response so error bodies survive the retry loop.
	var last *Response
	attempt := 0

	resp, err := backoff.Retry(ctx, func() (*Response, error) {
		attempt++
		resp, err := c.attempt(ctx, opts, log.With(zap.Int("attempt", attempt)))
		if resp != nil {
			last = resp
		}
		return resp, err
	}, c.retryPolicy(opts)...)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		log.Error("HTTP request failed", zap.Int("attempts", attempt), zap.Error(err))
		return last, err
	}

	log.Info("HTTP request completed", zap.Int("status_code", resp.StatusCode), zap.Int("attempts", attempt))
	return resp, nil
}

// attempt sends the request once. Errors that must not be retried are
// wrapped with backoff.Permanent.
func (c *Client) attempt(ctx context.Context, opts RequestOptions, log *zap.Logger) (*Response, error) {
	req, err := c.buildRequest(ctx, opts)
	if err != nil {
		log.Error("Failed to build request", zap.Error(err))
		return nil, backoff.Permanent(err)
	}

	log.Debug("Making HTTP request")
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("HTTP request failed", zap.Error(err))
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to read response body: %w", err))
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}
	if httpResp.StatusCode < 400 {
		return resp, nil
	}

	statusErr := &StatusError{StatusCode: httpResp.StatusCode, Body: body}
	if statusErr.Retryable() {
		log.Warn("Server error", zap.Int("status_code", httpResp.StatusCode))
		return resp, statusErr
	}
	// 4xx errors are not retryable
	log.Error("Client error, not retryable",
		zap.Int("status_code", httpResp.StatusCode),
		zap.String("response", string(body)))
	return resp, backoff.Permanent(statusErr)
}

// Go starts the request on its own goroutine and returns the in-flight
// exchange immediately.
func (c *Client) Go(opts RequestOptions) *Exchange {
	ex := &Exchange{
		method: opts.Method,
		url:    opts.URL,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(ex.done)
		ex.resp, ex.err = c.Do(opts)
	}()
	return ex
}

func (c *Client) buildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	contentType := header(opts.Headers, "Content-Type")

	bodyReader, err := encodeBody(opts.Body, contentType)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if opts.Body != nil && contentType == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	return req, nil
}
