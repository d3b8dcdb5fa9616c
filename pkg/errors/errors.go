package errors

import "fmt"

// ErrorType classifies the failures the downloader can hit
type ErrorType string

const (
	ErrorTypePageFetch    ErrorType = "page_fetch"
	ErrorTypeElementFetch ErrorType = "element_fetch"
	ErrorTypeDirectory    ErrorType = "directory"
	ErrorTypeParsing      ErrorType = "parsing"
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error carries a failure type alongside the message and, for HTTP
// failures, the response status code (0 when no response was obtained).
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New builds an Error of the given type.
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// NewWithCode builds an Error carrying an HTTP status code.
func NewWithCode(t ErrorType, code int, message string) *Error {
	return &Error{Type: t, Message: message, Code: code}
}

// IsFatal reports whether an error type aborts the whole run.
// Element fetch failures only terminate their own job; everything
// else stops the run before any download is dispatched.
func IsFatal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeElementFetch:
		return false
	default:
		return true
	}
}
