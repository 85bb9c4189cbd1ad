package session

import (
	"errors"
	"unicode"
)

// Password strength rules, checked in order; the first failure is reported.
var (
	errPasswordTooShort  = errors.New("password must be at least 8 characters long")
	errPasswordNoUpper   = errors.New("password must contain at least one uppercase letter (A-Z)")
	errPasswordNoLower   = errors.New("password must contain at least one lowercase letter (a-z)")
	errPasswordNoDigit   = errors.New("password must contain at least one number (0-9)")
	errPasswordNoSpecial = errors.New("password must contain at least one special symbol (!@#$%^&*)")
)

// ValidatePassword checks the signup strength rules: length, upper, lower,
// digit, special symbol.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errPasswordTooShort
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
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	switch {
	case !upper:
		return errPasswordNoUpper
	case !lower:
		return errPasswordNoLower
	case !digit:
		return errPasswordNoDigit
	case !special:
		return errPasswordNoSpecial
	}
	return nil
}
