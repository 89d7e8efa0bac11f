package auth

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// tokenFromFile reads a cached token from the token store. The open error
// is returned unwrapped so callers can distinguish a missing cache
// (fs.ErrNotExist) from a corrupt one.
func tokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided token path is intentional
	if err != nil {
		return nil, err
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to decode token file %s: %w", path, err)
	}

	return &tok, nil
}

// saveToken persists the token to the token store with owner-only
// permissions. The refresh token grants durable account access, so the
// file must not be group or world readable.
func saveToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", path, err)
	}

	return nil
}
