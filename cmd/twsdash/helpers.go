package main

import (
	"strings"
	"time"

	"github.com/musher-dev/twsdash/internal/client"
	"github.com/musher-dev/twsdash/internal/config"
	clierrors "github.com/musher-dev/twsdash/internal/errors"
)

// newAPIClient creates the process's backend client from the configured
// api.url (already overridden by --api-url when given).
func newAPIClient(cfg *config.Config) (*client.Client, error) {
	baseURL, err := validateAPIURL(cfg.APIURL())
	if err != nil {
		return nil, err
	}

	return client.New(baseURL), nil
}

// clientFor builds a client without validating api.url.
func clientFor(cfg *config.Config) *client.Client {
	return client.New(cfg.APIURL())
}

// displayLocation resolves display.timezone for localized timestamps.
func displayLocation(cfg *config.Config) (*time.Location, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, clierrors.InvalidTimezone(cfg.DisplayTimezone(), err)
	}

	return loc, nil
}

// backendError converts a client failure into the CLI error shown to the
// operator.
func backendError(c *client.Client, err error) error {
	apiErr := client.AsAPIError(err)

	switch {
	case apiErr.IsNetwork():
		return clierrors.BackendUnreachable(c.BaseURL(), apiErr)
	case apiErr.HasStatus() && strings.HasPrefix(apiErr.Category, "HTTP "):
		return clierrors.BackendStatus(apiErr.Status, apiErr.Message, apiErr)
	default:
		return clierrors.Wrap(clierrors.ExitGeneral, apiErr.Category+": "+apiErr.Message, apiErr)
	}
}
