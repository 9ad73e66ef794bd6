package domain

import (
	"regexp"
	"strings"
)

// rePostcode matches a normalized UK postcode with or without the inward part.
var rePostcode = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?( ?[0-9][A-Z]{2})?$`)

// NormalizePostcode upper-cases and collapses whitespace in a raw postcode.
func NormalizePostcode(raw string) string {
	s := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	return s
}

// ValidatePostcode validates the postcode format after normalization.
func ValidatePostcode(raw string) bool {
	return rePostcode.MatchString(NormalizePostcode(raw))
}

// OutwardCode extracts the outward code ("SW1A 1AA" -> "SW1A"), the coarse
// service-area key. Returns "" when the postcode does not validate.
func OutwardCode(raw string) string {
	s := NormalizePostcode(raw)
	if !rePostcode.MatchString(s) {
		return ""
	}
	if i := strings.IndexByte(s, ' '); i > 0 {
		return s[:i]
	}
	// no inward part: the whole string is the outward code
	if len(s) <= 4 {
		return s
	}
	return s[:len(s)-3]
}
