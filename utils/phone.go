package utils

import (
	"regexp"
	"strings"
)

// FormatPhoneNumber strips non-digits and ensures the number carries the
// Philippine country code (63).
func FormatPhoneNumber(phoneNumber string) string {
	re := regexp.MustCompile(`\D`)
	digits := re.ReplaceAllString(phoneNumber, "")

	if len(digits) > 0 && !strings.HasPrefix(digits, "63") {
		digits = strings.TrimLeft(digits, "0")
		digits = "63" + digits
	}

	return digits
}

// ValidatePhoneNumber accepts Philippine mobile numbers: 10 digits starting
// with 9 once the country code and leading zeros are removed.
func ValidatePhoneNumber(phoneNumber string) bool {
	re := regexp.MustCompile(`\D`)
	cleaned := re.ReplaceAllString(phoneNumber, "")

	cleaned = strings.TrimPrefix(cleaned, "63")
	cleaned = strings.TrimLeft(cleaned, "0")

	if len(cleaned) != 10 {
		return false
	}

	return strings.HasPrefix(cleaned, "9")
}

// NormalizePhoneNumber normalizes a phone number for database storage. Guest
// match-or-create relies on this being stable across formats.
func NormalizePhoneNumber(phoneNumber string) string {
	return FormatPhoneNumber(phoneNumber)
}

// DisplayPhoneNumber formats a stored number for display, e.g. +63 917 123 4567.
func DisplayPhoneNumber(phoneNumber string) string {
	formatted := FormatPhoneNumber(phoneNumber)
	if len(formatted) == 12 && strings.HasPrefix(formatted, "63") {
		return "+" + formatted[:2] + " " + formatted[2:5] + " " + formatted[5:8] + " " + formatted[8:]
	}
	return phoneNumber
}
