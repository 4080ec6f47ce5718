// Package contact validates, stores and delivers contact form submissions.
package contact

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form is a submitted contact form. Consent is the raw checkbox value.
type Form struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Subject string `form:"subject"`
	Message string `form:"message"`
	Consent string `form:"consent"`
}

// FieldError names the first field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// Normalize trims every text field.
func (f Form) Normalize() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = strings.TrimSpace(f.Message)
	f.Consent = strings.TrimSpace(f.Consent)
	return f
}

// Consented reports whether the consent checkbox was ticked.
func (f Form) Consented() bool {
	switch strings.ToLower(f.Consent) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// Validate checks fields in form order and returns the first failure.
func (f Form) Validate() *FieldError {
	f = f.Normalize()
	switch {
	case f.Name == "":
		return &FieldError{"name", "Please enter your name"}
	case f.Email == "":
		return &FieldError{"email", "Please enter your email"}
	case !ValidEmail(f.Email):
		return &FieldError{"email", "Please enter a valid email"}
	case f.Subject == "":
		return &FieldError{"subject", "Please enter a subject"}
	case f.Message == "":
		return &FieldError{"message", "Please enter a message"}
	case !f.Consented():
		return &FieldError{"consent", "You must accept the terms"}
	}
	return nil
}

// ValidEmail applies the loose address check the form uses.
func ValidEmail(s string) bool { return emailPattern.MatchString(s) }
