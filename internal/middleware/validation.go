package middleware

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// passwordSpecials are the characters that satisfy the special character rule.
const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// Validation errors.
var (
	ErrEmailInvalid      = errors.New("invalid email format")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrPasswordNoUpper   = errors.New("password must contain an uppercase letter")
	ErrPasswordNoLower   = errors.New("password must contain a lowercase letter")
	ErrPasswordNoDigit   = errors.New("password must contain a digit")
	ErrPasswordNoSpecial = errors.New("password must contain a special character")
	ErrSuspiciousInput   = errors.New("suspicious input detected")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// suspiciousPattern matches script injection attempts in query values.
var suspiciousPattern = regexp.MustCompile(`(?i)<script|javascript:|on\w+\s*=`)

// ValidateEmail validates the format of an email address.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePassword checks password strength. Rules are checked in order
// and the first failure is returned.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	switch {
	case !upper:
		return ErrPasswordNoUpper
	case !lower:
		return ErrPasswordNoLower
	case !digit:
		return ErrPasswordNoDigit
	case !special:
		return ErrPasswordNoSpecial
	}
	return nil
}

// RejectSuspiciousInput returns middleware that rejects requests whose
// query parameters look like script injection.
func RejectSuspiciousInput(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, values := range r.URL.Query() {
			for _, v := range values {
				if suspiciousPattern.MatchString(v) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusBadRequest)
					_, _ = w.Write([]byte(`{"error":{"code":"INVALID_INPUT","message":"` + ErrSuspiciousInput.Error() + `"}}`))
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
