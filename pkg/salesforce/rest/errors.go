package sfrest

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure.
type ErrorKind int

const (
	// KindAPI covers network failures, HTTP error statuses, malformed
	// responses and calls made before login.
	KindAPI ErrorKind = iota
	// KindConfiguration means the client is misconfigured (missing endpoint,
	// keys or credentials, or the server rejected the connected app).
	KindConfiguration
	// KindAuthentication means the end-user credentials were rejected.
	KindAuthentication
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindAuthentication:
		return "AuthenticationError"
	default:
		return "ApiError"
	}
}

// Error is returned by every Client operation.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newConfigurationError(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func newAuthenticationError(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindAuthentication, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func newAPIError(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindAPI, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// ErrNotLoggedIn is the cause of failures for operations invoked without a session.
var ErrNotLoggedIn = errors.New("not logged in")

// KindOf returns the kind of the first *Error in err's chain. Errors that
// did not come from this package are reported as KindAPI.
func KindOf(err error) ErrorKind {
	var sfErr *Error
	if errors.As(err, &sfErr) {
		return sfErr.Kind
	}
	return KindAPI
}

func IsConfigurationError(err error) bool { return isKind(err, KindConfiguration) }

func IsAuthenticationError(err error) bool { return isKind(err, KindAuthentication) }

func IsAPIError(err error) bool { return isKind(err, KindAPI) }

func isKind(err error, kind ErrorKind) bool {
	var sfErr *Error
	return errors.As(err, &sfErr) && sfErr.Kind == kind
}
