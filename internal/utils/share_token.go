package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/reisen/shared-calendar-api/internal/constants"
)

// GenerateShareToken returns a URL-safe opaque token. The token is the sole
// authorization artifact for anonymous calendar access, so it must be drawn
// from a cryptographic source.
func GenerateShareToken() (string, error) {
	bytes := make([]byte, constants.ShareTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
