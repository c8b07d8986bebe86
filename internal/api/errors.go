package api

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories a request can end in.
type Kind int

const (
	KindInvalidURL Kind = iota + 1
	KindRequestBuildFailed
	KindNoInternetConnection
	KindInvalidResponse
	KindNoData
	KindDecodingFailed
	KindUnauthorized
	KindForbidden
	KindBadRequest
	KindServerError
	KindNetworkError
	KindValidation
	KindSessionExpired
	KindInvalidEncoding
)

var kindCodes = map[Kind]string{
	KindInvalidURL:           "invalid_url",
	KindRequestBuildFailed:   "request_build_failed",
	KindNoInternetConnection: "no_internet_connection",
	KindInvalidResponse:      "invalid_response",
	KindNoData:               "no_data",
	KindDecodingFailed:       "decoding_failed",
	KindUnauthorized:         "unauthorized",
	KindForbidden:            "forbidden",
	KindBadRequest:           "bad_request",
	KindServerError:          "server_error",
	KindNetworkError:         "network_error",
	KindValidation:           "validation_error",
	KindSessionExpired:       "session_expired",
	KindInvalidEncoding:      "invalid_encoding",
}

// String returns the machine-readable code for the kind.
func (k Kind) String() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return "unknown"
}

// Retryable reports whether offering the user a retry makes sense.
func (k Kind) Retryable() bool {
	switch k {
	case KindNoInternetConnection, KindNetworkError, KindNoData, KindServerError, KindInvalidResponse:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable hint for resolving errors of this kind.
func (k Kind) Suggestion() string {
	switch k {
	case KindUnauthorized, KindSessionExpired:
		return "Run 'arabah auth login' to sign in again"
	case KindForbidden:
		return "Your account is not allowed to perform this action"
	case KindNoInternetConnection:
		return "Check your network connection and retry"
	case KindNetworkError:
		return "The request did not complete; retry in a moment"
	case KindBadRequest, KindValidation:
		return "Check the input values"
	case KindServerError:
		return "The server encountered an error; try again later"
	case KindDecodingFailed, KindInvalidResponse:
		return "The server returned an unexpected response; the client may need an update"
	case KindInvalidURL:
		return "Check the configured base_url"
	default:
		return ""
	}
}

// Error is the typed error every stage of the request pipeline returns.
// Two errors are equal under errors.Is when their kinds match; the message
// is informational only.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidURL           = &Error{Kind: KindInvalidURL}
	ErrRequestBuildFailed   = &Error{Kind: KindRequestBuildFailed}
	ErrNoInternetConnection = &Error{Kind: KindNoInternetConnection}
	ErrInvalidResponse      = &Error{Kind: KindInvalidResponse}
	ErrNoData               = &Error{Kind: KindNoData}
	ErrDecodingFailed       = &Error{Kind: KindDecodingFailed}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrBadRequest           = &Error{Kind: KindBadRequest}
	ErrServerError          = &Error{Kind: KindServerError}
	ErrNetworkError         = &Error{Kind: KindNetworkError}
	ErrValidation           = &Error{Kind: KindValidation}
	ErrSessionExpired       = &Error{Kind: KindSessionExpired}
	ErrInvalidEncoding      = &Error{Kind: KindInvalidEncoding}
)

// NewError builds an *Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// ValidationError reports input rejected before any network round trip.
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NetworkError wraps a transport failure description.
func NetworkError(description string) *Error {
	return &Error{Kind: KindNetworkError, Message: description}
}

// AsError converts any error into an *Error. Errors that did not come out of
// the pipeline are reported as network errors carrying their text.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NetworkError(err.Error())
}

// KindOf returns the kind of err, or 0 when err is nil.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	return AsError(err).Kind
}

// IsUnauthorized checks if the error is an authorization failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsValidation checks if the error is a client-side validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
