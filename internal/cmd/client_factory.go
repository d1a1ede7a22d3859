package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pure360/pure360-cli/internal/api"
	"github.com/pure360/pure360-cli/internal/config"
)

type clientFactory struct {
	settings  config.Settings
	timeout   time.Duration
	userAgent string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		settings:  settings,
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("pure360-cli/%s", version),
	}
}

func (f *clientFactory) client() (*api.Client, error) {
	client := api.New(
		api.WithEndpoints(f.settings.ResolvedEndpoints()),
		api.WithTimeout(f.timeout),
		api.WithUserAgent(f.userAgent),
		api.WithClock(func() time.Time { return now() }),
	)
	if err := client.Validate(); err != nil {
		return nil, err
	}
	return client, nil
}

func getClient() (*api.Client, error) {
	return newClientFactory().client()
}

// loadCredentials returns the credentials of the --profile (or active)
// profile. A missing profile yields empty credentials so flags can fill them;
// commands report ErrNotConfigured when required values stay empty.
func loadCredentials() (config.Credentials, error) {
	creds, err := config.LoadCredentials(flags.Profile)
	if err != nil && !errors.Is(err, config.ErrNotConfigured) {
		return config.Credentials{}, err
	}
	return creds, nil
}

func requireCredentials(what string, values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s: %w", what, config.ErrNotConfigured)
		}
	}
	return nil
}
