package redact

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code identifies a kind of failure. Codes are stable and safe to match on.
type Code string

const (
	CodeDocumentUnreadable Code = "DOCUMENT_UNREADABLE"
	CodeNoIdentifiers      Code = "NO_IDENTIFIERS"
	CodeIdentifierNotFound Code = "IDENTIFIER_NOT_FOUND"
	CodeWriteFailure       Code = "WRITE_FAILURE"
	CodeInvalidOutput      Code = "INVALID_OUTPUT"
)

// Error is the structured error returned by this package.
type Error struct {
	// Code is the kind of failure.
	Code Code

	// Message is the human-readable error message.
	Message string

	// Details contains additional context as key-value pairs, such as the
	// output path of a failed write.
	Details map[string]string

	// Cause is the underlying error, if any.
	Cause error
}

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrDocumentUnreadable = &Error{Code: CodeDocumentUnreadable, Message: "document unreadable"}
	ErrNoIdentifiers      = &Error{Code: CodeNoIdentifiers, Message: "no identifiers requested"}
	ErrIdentifierNotFound = &Error{Code: CodeIdentifierNotFound, Message: "identifier not found"}
	ErrWriteFailure       = &Error{Code: CodeWriteFailure, Message: "failed to write redacted document"}
	ErrInvalidOutput      = &Error{Code: CodeInvalidOutput, Message: "invalid output path"}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + e.Details[k]
		}
		msg += " (" + strings.Join(parts, ", ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func newError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
