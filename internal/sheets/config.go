// Package sheets reads the roster from a Google Sheets worksheet.
package sheets

import (
	"fmt"
	"time"
)

// DefaultWorksheet is the tab name a freshly created Japanese-locale sheet gets.
const DefaultWorksheet = "シート1"

// Config holds the configuration for the roster reader.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	// ServiceAccountJSON holds the key inline, for hosts that only offer
	// environment variables.
	ServiceAccountJSON string
	SpreadsheetID      string
	Worksheet          string
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Worksheet:     DefaultWorksheet,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// HasOAuth reports whether a complete set of OAuth2 credentials is present.
func (c *Config) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasServiceAccount := c.ServiceAccountPath != "" || c.ServiceAccountJSON != ""

	if !c.HasOAuth() && !hasServiceAccount {
		return fmt.Errorf("no authentication method configured")
	}

	if c.HasOAuth() && hasServiceAccount {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}

	if c.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet id is required")
	}

	if c.Worksheet == "" {
		return fmt.Errorf("worksheet name is required")
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}

	return nil
}
