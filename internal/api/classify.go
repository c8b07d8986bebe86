package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// SessionInvalidator clears all session state after the server rejects the
// credential. Implementations must tolerate repeated calls.
type SessionInvalidator interface {
	ClearSession()
}

// ResponseClassifier maps a raw response to a decoded value or a typed error.
type ResponseClassifier interface {
	// Classify decodes a 2xx body into out (skipped when out is nil) or
	// returns the *Error matching the status code.
	Classify(resp *RawResponse, out any) error
}

// StatusClassifier implements the status decision table:
// 2xx decode, 401 unauthorized (and session invalidation), 403 forbidden,
// 400 bad request, anything else server error.
type StatusClassifier struct {
	Invalidator SessionInvalidator
	Logger      *slog.Logger
}

var _ ResponseClassifier = (*StatusClassifier)(nil)

func (c *StatusClassifier) Classify(resp *RawResponse, out any) error {
	if resp == nil {
		return NewError(KindInvalidResponse, "no response")
	}

	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return NewError(KindDecodingFailed, err.Error())
		}
		return nil
	case code == http.StatusUnauthorized:
		if c.Invalidator != nil {
			c.logger().Info("credential rejected, clearing session")
			c.Invalidator.ClearSession()
		}
		return NewError(KindUnauthorized, messageFromBody(resp.Body))
	case code == http.StatusForbidden:
		return NewError(KindForbidden, messageFromBody(resp.Body))
	case code == http.StatusBadRequest:
		return NewError(KindBadRequest, messageFromBody(resp.Body))
	default:
		return NewError(KindServerError, messageFromBody(resp.Body))
	}
}

func (c *StatusClassifier) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Decode classifies resp and decodes a 2xx body as T.
func Decode[T any](c ResponseClassifier, resp *RawResponse) (T, error) {
	var v T
	err := c.Classify(resp, &v)
	return v, err
}

// messageFromBody returns the "message" field of a JSON object body, falling
// back to "msg". Anything unparseable yields an empty message.
func messageFromBody(body []byte) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"message", "msg"} {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
