// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns
// an empty string so callers can fall back to the raw input field.
func NormalizeE164(input, countryCode string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	region := strings.ToUpper(strings.TrimSpace(countryCode))
	if region == "" {
		region = defaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return ""
	}

	if !phonenumbers.IsValidNumber(number) {
		return ""
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}
