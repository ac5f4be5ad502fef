package qa

import "fmt"

// ErrorKind classifies pipeline failures surfaced to callers.
type ErrorKind string

const (
	KindInvalidInput        ErrorKind = "invalid_input"
	KindOverloaded          ErrorKind = "overloaded"
	KindProviderUnavailable ErrorKind = "provider_unavailable"
	KindInternal            ErrorKind = "internal_error"
)

// Error is the failure type returned by Ask. The message is safe to show
// operators; user-facing text comes from the localized guidance tables.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func invalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func overloaded() *Error {
	return &Error{Kind: KindOverloaded, Message: "request queue is full"}
}

func providerUnavailable(err error) *Error {
	return &Error{Kind: KindProviderUnavailable, Message: "provider call failed", Err: err}
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: "unexpected pipeline failure", Err: err}
}

// KindOf extracts the error kind, defaulting to internal for foreign
// errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindInternal
}
