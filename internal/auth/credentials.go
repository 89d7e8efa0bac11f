package auth

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// LoadCredentials reads the OAuth client descriptor (the credentials.json
// downloaded from the Google Cloud console for an installed application)
// and builds the oauth2 config requesting the given scopes.
//
// This is called before any browser or network activity so that a missing
// or unreadable descriptor aborts the run early.
func LoadCredentials(path string, scopes ...string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided credentials path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read client credentials file %s: %w", path, err)
	}

	cfg, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client credentials file %s: %w", path, err)
	}

	return cfg, nil
}
