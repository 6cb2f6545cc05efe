package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Allow letters, numbers, spaces, and common professional punctuation: . ' - / & ( ) ,
	nameRegex = regexp.MustCompile(`^[\p{L}0-9 .'/&(),-]+$`)

	// E164-like phone: optional +, digits 7-15 length
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// Application statuses accepted by the app_status validator. Mirrors the
// domain enum; kept as a literal here so the validator has no import cycle.
var validStatuses = map[string]bool{
	"Applied":   true,
	"Interview": true,
	"Rejected":  true,
	"Offer":     true,
	"Accepted":  true,
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("app_status", AppStatus)
}

// ValidName validates that a string contains only valid name characters
// Rejects most special symbols
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// ValidPhone validates a phone number structure
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

// AppStatus validates membership in the application status enum.
func AppStatus(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Defaulted by the usecase
	}
	return validStatuses[val]
}
