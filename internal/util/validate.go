package util

import (
	"fmt"
	"regexp"
)

// validProjectChars matches only lowercase alphanumeric characters and hyphens.
var validProjectChars = regexp.MustCompile(`^[a-z0-9\-]+$`)

// ValidateProjectID checks that a string conforms to Google Cloud
// project ID rules:
//   - 6 to 30 characters
//   - Only lowercase letters (a-z), digits (0-9), and hyphens (-)
//   - First character must be a lowercase letter
//   - Last character must not be a hyphen
func ValidateProjectID(id string) error {
	if len(id) < 6 || len(id) > 30 {
		return fmt.Errorf("project ID must be 6-30 characters, got %d", len(id))
	}

	if !validProjectChars.MatchString(id) {
		return fmt.Errorf("project ID %q contains invalid characters (only a-z, 0-9, and hyphens are allowed)", id)
	}

	first := id[0]
	if first < 'a' || first > 'z' {
		return fmt.Errorf("project ID must start with a lowercase letter, got %q", string(first))
	}

	if id[len(id)-1] == '-' {
		return fmt.Errorf("project ID must not end with a hyphen, got %q", id)
	}

	return nil
}
