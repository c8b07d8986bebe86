package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/state"
)

const (
	exitOK        = 0
	exitGeneric   = 1
	exitUsage     = 2
	exitAuth      = 3
	exitForbidden = 5
	exitServer    = 7
	exitNetwork   = 8
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return exitCodeForKind(apiErr.Kind)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return exitNetwork
	}
	if errors.Is(err, state.ErrInFlight) || errors.Is(err, state.ErrClosed) {
		return exitGeneric
	}
	if isUsageError(err) {
		return exitUsage
	}
	return exitGeneric
}

func exitCodeForKind(kind api.Kind) int {
	switch kind {
	case api.KindUnauthorized, api.KindSessionExpired:
		return exitAuth
	case api.KindForbidden:
		return exitForbidden
	case api.KindServerError, api.KindInvalidResponse, api.KindDecodingFailed, api.KindNoData:
		return exitServer
	case api.KindNoInternetConnection, api.KindNetworkError:
		return exitNetwork
	case api.KindBadRequest, api.KindValidation, api.KindInvalidURL, api.KindInvalidEncoding:
		return exitUsage
	default:
		return exitGeneric
	}
}

func isUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"arg(s), received",
		"invalid argument",
		"conflicts with",
		"requires --",
		"is required",
		"required flag",
		"confirmation required",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
