package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateEndpointURL checks that an endpoint override is an absolute
// http or https URL with a host.
func ValidateEndpointURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", parsedURL.Scheme)
	}

	if parsedURL.Hostname() == "" {
		return fmt.Errorf("URL must contain a valid hostname")
	}

	if parsedURL.User != nil {
		return fmt.Errorf("URL must not embed credentials")
	}

	return nil
}
