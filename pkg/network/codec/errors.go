package codec

import "fmt"

// Kind identifies the taxonomy of wire-level failures (spec.md §7).
type Kind string

const (
	KindMagicMismatch  Kind = "ProtocolError.BadMagic"
	KindTooShort       Kind = "ProtocolError.TooShort"
	KindUnknownType    Kind = "ProtocolError.UnknownType"
	KindPayloadTooShort Kind = "ProtocolError.PayloadTooShort"
	KindOutOfRange     Kind = "ProtocolError.OutOfRange"
	KindMalformed      Kind = "ProtocolError.Malformed"
)

// Error is the codec's error type, wrapping a Kind so callers can branch
// on the taxonomy instead of matching strings.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
