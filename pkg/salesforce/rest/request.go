package sfrest

import (
	"context"
	"errors"
	"net/url"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"github.com/natserract/sfrest/pkg/task"
	"go.uber.org/zap"
)

// errStopped reports that the driving task was stopped while suspended.
var errStopped = errors.New("operation stopped")

// stoppedAs turns the context error a stopped operation is resolved with
// into an ApiError.
func stoppedAs(label string) task.Option {
	return task.WithAbortError(func(err error) error {
		return newAPIError(err, "Salesforce %s error: %s", label, err.Error())
	})
}

// newRequest builds an authenticated JSON request for path on the session's
// instance. rawQuery must already be encoded; empty values are left off.
func newRequest(ctx context.Context, s *Session, method, path, rawQuery string, body interface{}) httpclient.RequestOptions {
	target := httpclient.WithRawQuery(s.instanceURL+path, rawQuery)

	opts := httpclient.RequestOptions{
		Method: method,
		URL:    target,
		Headers: map[string]string{
			"Authorization": "Bearer " + s.token,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		},
		Context: ctx,
	}
	if !isEmptyBody(body) {
		opts.Body = body
	}
	return opts
}

func isEmptyBody(body interface{}) bool {
	switch v := body.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []byte:
		return len(v) == 0
	default:
		return false
	}
}

// queryString encodes a single key/value pair.
func queryString(key, value string) string {
	return url.Values{key: {value}}.Encode()
}

// roundTrip starts the exchange, suspends the operation until it completes
// and returns its response. errStopped means the operation must return.
func roundTrip[T any](c *Client, yield func(task.Step[T]) bool, opts httpclient.RequestOptions) (*httpclient.Response, error) {
	ex := c.httpClient.Go(opts)
	if !yield(task.Suspend[T](ex)) {
		return nil, errStopped
	}

	resp, err := ex.Result()
	c.observe(opts, resp, err)
	return resp, err
}

// observe reports a finished exchange to the logger and the debug hook.
func (c *Client) observe(opts httpclient.RequestOptions, resp *httpclient.Response, err error) {
	info := DebugInfo{Method: opts.Method, URL: opts.URL, Err: err}
	if resp != nil {
		info.Status = resp.StatusCode
		info.Body = resp.Body
	}

	if err != nil {
		c.logger.Error("Salesforce HTTP request failed",
			zap.String("method", info.Method),
			zap.String("url", info.URL),
			zap.Int("status_code", info.Status),
			zap.String("response", string(info.Body)),
			zap.Error(err))
	} else if c.config.Debug {
		c.logger.Debug("Salesforce HTTP request",
			zap.String("method", info.Method),
			zap.String("url", info.URL),
			zap.Int("status_code", info.Status),
			zap.String("response", string(info.Body)))
	}

	c.debugHook(info)
}

// exchange runs a single authenticated request and converts the response
// with parse. Transport and parse failures become ApiErrors labelled with
// the operation name.
func exchange[T any](c *Client, label string, opts httpclient.RequestOptions, parse func(*httpclient.Response) (T, error)) task.Operation[T] {
	return func(yield func(task.Step[T]) bool) {
		resp, err := roundTrip(c, yield, opts)
		if errors.Is(err, errStopped) {
			return
		}
		if err != nil {
			yield(task.Fail[T](newAPIError(err, "Salesforce %s error: %s", label, err.Error())))
			return
		}

		v, err := parse(resp)
		if err != nil {
			yield(task.Fail[T](newAPIError(err, "Salesforce %s error: %s", label, err.Error())))
			return
		}
		yield(task.Succeed(v))
	}
}

// start captures the current session, builds the request and starts the
// exchange. Missing sessions and build errors resolve the task without any
// network call.
func start[T any](
	c *Client,
	label string,
	build func(*Session) (httpclient.RequestOptions, error),
	parse func(*Session, *httpclient.Response) (T, error),
) *task.Task[T] {
	s := c.Session()
	if s == nil {
		c.logger.Error("Salesforce operation rejected", zap.String("operation", label), zap.Error(ErrNotLoggedIn))
		return task.FromOutcome(task.Failure[T](newAPIError(ErrNotLoggedIn, "Cannot perform Salesforce %s: not logged in", label)))
	}

	opts, err := build(s)
	if err != nil {
		return task.FromOutcome(task.Failure[T](err))
	}

	c.logger.Debug("Starting Salesforce operation",
		zap.String("operation", label),
		zap.String("method", opts.Method),
		zap.String("url", opts.URL))

	return task.Start(exchange(c, label, opts, func(resp *httpclient.Response) (T, error) {
		return parse(s, resp)
	}), stoppedAs(label))
}

// rawBody returns the response body as text.
func rawBody(_ *Session, resp *httpclient.Response) (string, error) {
	return string(resp.Body), nil
}
