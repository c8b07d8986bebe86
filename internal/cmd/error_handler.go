package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/state"
)

// HandleError renders err for a terminal, with suggestions when the error
// kind has one.
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder
	var apiErr *api.Error

	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "%s\n", headline(apiErr))
		if suggestion := apiErr.Kind.Suggestion(); suggestion != "" {
			msg.WriteString("\nSuggestions:\n")
			fmt.Fprintf(&msg, "  - %s\n", suggestion)
			if apiErr.Kind.Retryable() {
				msg.WriteString("  - Use --debug to see the request\n")
			}
		}

	case errors.Is(err, state.ErrInFlight):
		msg.WriteString("Error: another request for this command is still running\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func headline(err *api.Error) string {
	switch err.Kind {
	case api.KindValidation:
		return "Error: " + err.Message
	case api.KindUnauthorized, api.KindSessionExpired:
		if err.Message != "" {
			return "Not signed in: " + err.Message
		}
		return "Not signed in"
	case api.KindNoInternetConnection:
		return "No internet connection"
	default:
		if err.Message != "" {
			return fmt.Sprintf("Error (%s): %s", err.Kind, err.Message)
		}
		return fmt.Sprintf("Error (%s)", err.Kind)
	}
}

type errorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Retryable  bool   `json:"retryable"`
}

// errorPayload is the JSON form of err written to stderr in JSON mode.
func errorPayload(err error) map[string]errorBody {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return map[string]errorBody{"error": {Code: "error", Message: err.Error()}}
	}
	return map[string]errorBody{"error": {
		Code:       apiErr.Kind.String(),
		Message:    apiErr.Message,
		Suggestion: apiErr.Kind.Suggestion(),
		Retryable:  apiErr.Kind.Retryable(),
	}}
}
