package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pure360/pure360-cli/internal/api"
	"github.com/pure360/pure360-cli/internal/config"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var uploadErr *api.UploadError
	var transportErr *api.TransportError
	var protocolErr *api.ProtocolError

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("No Pure360 credentials configured.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: p360 auth login\n")
		msg.WriteString("  - Or export PURE360_TOKEN, PURE360_ACCOUNT, PURE360_USERNAME/PURE360_PASSWORD\n")

	case errors.As(err, &uploadErr):
		fmt.Fprintf(&msg, "List data upload failed after transaction %s was registered: %s\n\n", uploadErr.TransactionID, uploadErr.Err)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - The transaction exists on the platform without data\n")
		msg.WriteString("  - Fix the cause and run the upload again; a new transaction is registered\n")

	case errors.As(err, &protocolErr):
		fmt.Fprintf(&msg, "Unexpected response from %s: %s\n\n", protocolErr.Endpoint, protocolErr.Reason)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the profile name and token: p360 auth status\n")
		msg.WriteString("  - Use --debug to see the request\n")

	case errors.As(err, &transportErr) && transportErr.StatusCode > 0:
		fmt.Fprintf(&msg, "Pure360 returned HTTP %d: %s\n\n", transportErr.StatusCode, transportErr.Body)
		msg.WriteString(suggestionsForStatusCode(transportErr.StatusCode))

	case strings.Contains(err.Error(), "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Verify the endpoint URLs: p360 config show\n")
		msg.WriteString("  - Check your network connection\n")

	case strings.Contains(err.Error(), "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the --base-url or endpoint spelling\n")
		msg.WriteString("  - Verify your DNS settings\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
		if suggestion := api.CodeOf(err).Suggestion(); suggestion != "" {
			fmt.Fprintf(&msg, "\nSuggestion: %s\n", suggestion)
		}
	}

	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch {
	case code == 401 || code == 403:
		suggestions.WriteString("  - The credentials were rejected\n")
		suggestions.WriteString("  - Run: p360 auth login\n")
	case code == 404:
		suggestions.WriteString("  - The interface script was not found\n")
		suggestions.WriteString("  - Verify the endpoint URLs: p360 config show\n")
	case code >= 500:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")
	default:
		suggestions.WriteString("  - Check your request parameters\n")
		suggestions.WriteString("  - Use --debug or --dry-run to see the request\n")
	}

	return suggestions.String()
}
