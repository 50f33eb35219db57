package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// ApplicationIDRegex validates application identifier format (a numeric
	// snowflake)
	ApplicationIDRegex = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateApplicationID validates an application identifier
func ValidateApplicationID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("application id is required")
	}
	if len(id) > 20 {
		return fmt.Errorf("application id is too long (max 20 digits)")
	}
	if !ApplicationIDRegex.MatchString(id) {
		return fmt.Errorf("application id must contain only digits")
	}
	return nil
}

// ValidateButtonLabel validates a presence button label
func ValidateButtonLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("button label is required")
	}
	if utf8.RuneCountInString(label) > 32 {
		return fmt.Errorf("button label is too long (max 32 characters)")
	}
	return nil
}

// ValidateButtonURL validates a presence button URL
func ValidateButtonURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("button url is required")
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid button url format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid button url scheme (must be http or https)")
	}
	if u.Host == "" {
		return fmt.Errorf("button url must have a host")
	}
	return nil
}

// ValidateActivityKind validates a presence category name
func ValidateActivityKind(kind string) error {
	validKinds := map[string]bool{
		"":          true, // defaults to playing
		"playing":   true,
		"listening": true,
		"watching":  true,
		"competing": true,
	}
	if !validKinds[kind] {
		return fmt.Errorf("invalid activity kind (must be playing, listening, watching, or competing)")
	}
	return nil
}

// ValidateGatewayStatus validates a gateway presence status
func ValidateGatewayStatus(status string) error {
	validStatuses := map[string]bool{
		"":          true, // defaults to online
		"online":    true,
		"idle":      true,
		"dnd":       true,
		"invisible": true,
	}
	if !validStatuses[status] {
		return fmt.Errorf("invalid gateway status (must be online, idle, dnd, or invisible)")
	}
	return nil
}

// ValidateNonEmptyString validates that string is not empty after trimming
func ValidateNonEmptyString(s, fieldName string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateStringLength validates string length
func ValidateStringLength(s string, min, max int, fieldName string) error {
	length := utf8.RuneCountInString(s)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if length > max {
		return fmt.Errorf("%s is too long (max %d characters)", fieldName, max)
	}
	return nil
}
