package models

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// ValidateURL checks that a result URL is a fetchable http(s) address.
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must use http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

// generateID returns a unique run ID.
func generateID() string {
	return uuid.New().String()
}
