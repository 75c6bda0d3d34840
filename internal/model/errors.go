package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)

// ErrorKind classifies every way an exchange can fail. Call sites dispatch on
// the kind via errors.As rather than comparing message strings.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindQuotaDenied
	KindProviderTransient
	KindProviderQuota
	KindEmptyResponse
	KindPersistenceFailure
)

// String returns the wire code for the kind, as emitted in failure signals.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindQuotaDenied:
		return "QUOTA_DENIED"
	case KindProviderTransient:
		return "SERVICE_BUSY"
	case KindProviderQuota:
		return "QUOTA_EXCEEDED"
	case KindEmptyResponse:
		return "EMPTY_RESPONSE"
	case KindPersistenceFailure:
		return "PERSISTENCE_FAILURE"
	default:
		return "AI_RESPONSE_FAILED"
	}
}

// RelayError is a tagged error carried through the relay pipeline. Internal
// causes are kept for logging but never forwarded to callers.
type RelayError struct {
	Kind  ErrorKind
	Cause error
}

func (e *RelayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *RelayError) Unwrap() error { return e.Cause }

// NewRelayError wraps cause with the given kind.
func NewRelayError(kind ErrorKind, cause error) *RelayError {
	return &RelayError{Kind: kind, Cause: cause}
}

// KindOf extracts the taxonomy kind from err. Errors that are not RelayErrors
// classify as generic.
func KindOf(err error) ErrorKind {
	var re *RelayError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindGeneric
}

// UserMessage maps a failure kind to the human-readable text surfaced to the
// caller. Provider detail never leaks past this boundary.
func (k ErrorKind) UserMessage() string {
	switch k {
	case KindValidation:
		return "Invalid request"
	case KindUnauthenticated:
		return "Authentication required"
	case KindProviderQuota:
		return "AI usage limit reached, please try again later"
	case KindProviderTransient:
		return "AI service is busy, please try again shortly"
	case KindEmptyResponse:
		return "Empty response from AI, please try again"
	default:
		return "Something went wrong, please try again"
	}
}
