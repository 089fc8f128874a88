// Package sfrest is a client for the Salesforce REST API.
//
// A Client owns at most one Session, created by Login through the OAuth 2.0
// username-password flow. Every operation returns a started *task.Task: the
// task suspends while its HTTP exchange is in flight and resolves to the
// typed result or an *Error classified as ConfigurationError,
// AuthenticationError or ApiError.
//
//	login := client.Login(ctx, username, password)
//	if err := login.Await(ctx); err != nil {
//		return err
//	}
//	if _, err := login.Value(); err != nil {
//		switch sfrest.KindOf(err) { ... }
//	}
//
//	cases, err := task.Wait(ctx, sfrest.QueryRecords[sobjects.Case](ctx, client, sobjects.CaseBaseQuery))
package sfrest

import (
	"sync"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"go.uber.org/zap"
)

// Client is the main client for interacting with the Salesforce REST API
type Client struct {
	config     *Config
	httpClient *httpclient.Client
	logger     *zap.Logger
	debugHook  DebugHook

	mu      sync.RWMutex
	state   State
	session *Session
}

// Option configures a Client.
type Option func(*Client)

// WithDebugHook registers h to observe every finished exchange.
func WithDebugHook(h DebugHook) Option {
	return func(c *Client) {
		if h != nil {
			c.debugHook = h
		}
	}
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new Salesforce client with default production logger
func NewClient(cfg *Config, opts ...Option) *Client {
	logger, _ := zap.NewProduction()
	return NewClientWithLogger(cfg, logger, opts...)
}

// NewClientWithLogger creates a new Salesforce client with a custom logger
func NewClientWithLogger(cfg *Config, logger *zap.Logger, opts ...Option) *Client {
	if cfg == nil {
		cfg = &Config{}
	}

	var httpOpts []httpclient.Option
	if cfg.MaxTries > 0 {
		httpOpts = append(httpOpts, httpclient.WithMaxTries(cfg.MaxTries))
	}
	if cfg.Timeout > 0 {
		httpOpts = append(httpOpts, httpclient.WithTimeout(cfg.Timeout))
	}

	c := &Client{
		config:     cfg,
		httpClient: httpclient.NewClientWithLogger(logger, httpOpts...),
		logger:     logger,
		debugHook:  func(DebugInfo) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports where the client is in the login lifecycle.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Session returns the current session, or nil before login.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) IsLoggedIn() bool {
	return c.Session() != nil
}

// Logout drops the session. The token is not revoked server-side.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	c.state = StateUnauthenticated
	c.logger.Info("Salesforce session discarded")
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	c.state = StateAuthenticated
}
