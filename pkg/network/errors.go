package network

import "fmt"

// Kind identifies the taxonomy of network-manager failures (spec.md §7).
type Kind string

const (
	KindNetworkError       Kind = "NetworkError"
	KindServerError        Kind = "ServerError"
	KindClientError        Kind = "ClientError"
	KindConfigurationError Kind = "ConfigurationError"
)

// Error wraps a Kind so callers can branch with errors.As instead of
// string matching.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newNetworkError(format string, args ...any) *Error {
	return &Error{Kind: KindNetworkError, Message: fmt.Sprintf(format, args...)}
}

func newServerError(format string, args ...any) *Error {
	return &Error{Kind: KindServerError, Message: fmt.Sprintf(format, args...)}
}

func newClientError(format string, args ...any) *Error {
	return &Error{Kind: KindClientError, Message: fmt.Sprintf(format, args...)}
}
