package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/pflag"

	"github.com/pure360/pure360-cli/internal/api"
	"github.com/pure360/pure360-cli/internal/config"
)

const (
	exitOK       = 0
	exitGeneric  = 1
	exitUsage    = 2
	exitAuth     = 3
	exitRejected = 4
	exitServer   = 7
	exitNetwork  = 8
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

	if errors.Is(err, config.ErrNotConfigured) {
		return exitAuth
	}
	if code := exitCodeFromAPI(err); code != 0 {
		return code
	}
	if isUsageError(err) {
		return exitUsage
	}
	if isNetworkError(err) {
		return exitNetwork
	}
	return exitGeneric
}

func exitCodeFromAPI(err error) int {
	switch api.CodeOf(err) {
	case api.ErrTransport:
		var transport *api.TransportError
		if errors.As(err, &transport) {
			return exitCodeForStatus(transport.StatusCode)
		}
		return exitNetwork
	case api.ErrTimeout:
		return exitNetwork
	case api.ErrProtocol:
		return exitRejected
	case api.ErrInvalidRecipient, api.ErrInvalidContentType, api.ErrRecipientMismatch,
		api.ErrMissingFields, api.ErrReservedField, api.ErrFileRead:
		return exitUsage
	default:
		return 0
	}
}

func exitCodeForStatus(status int) int {
	switch {
	case status == 0:
		return exitNetwork
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return exitAuth
	case status >= 500:
		return exitServer
	default:
		return exitRejected
	}
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "certificate") ||
		strings.Contains(msg, "timeout")
}

func isUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"accepts ",
		"requires at least",
		"requires exactly",
		"invalid argument",
		"invalid value",
		"must be",
		"is required",
		"required flag",
		"conflicts with",
		"must not be blank",
		"exceeds maximum",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
