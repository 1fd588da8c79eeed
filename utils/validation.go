// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var (
	phonePattern   = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	slugInvalidRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// CleanPhone strips spaces, dashes and parentheses from a phone number.
func CleanPhone(phone string) string {
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")
	return cleaned
}

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	// Allows + prefix followed by up to 15 digits
	return phonePattern.MatchString(CleanPhone(phone))
}

// Slugify turns an organization name into the path segment of its public
// booking page.
func Slugify(name string) string {
	slug := slugInvalidRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}
