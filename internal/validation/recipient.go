// Package validation classifies recipients and checks endpoint URLs before
// they reach the Pure360 API.
package validation

import (
	"errors"
	"regexp"
	"strings"
)

// RecipientKind identifies how the platform addresses a contact.
type RecipientKind int

const (
	// RecipientUnknown is returned alongside an error.
	RecipientUnknown RecipientKind = iota
	// RecipientEmail is an email address.
	RecipientEmail
	// RecipientMobile is a mobile number.
	RecipientMobile
)

// MaxRecipientLength bounds recipient input (RFC 5321 address length).
const MaxRecipientLength = 320

// ErrInvalidRecipient is returned when a value is neither a mobile number nor an email address.
var ErrInvalidRecipient = errors.New("not an email address or mobile number")

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// String returns the form field name used for the recipient kind.
func (k RecipientKind) String() string {
	switch k {
	case RecipientEmail:
		return "email"
	case RecipientMobile:
		return "mobile"
	default:
		return "unknown"
	}
}

// ClassifyRecipient reports whether recipient is a mobile number or an email
// address. Numbers are checked first: an optional leading '+', then digits
// with optional space, dash, dot or parenthesis separators.
func ClassifyRecipient(recipient string) (RecipientKind, error) {
	value := strings.TrimSpace(recipient)
	if value == "" || len(value) > MaxRecipientLength {
		return RecipientUnknown, ErrInvalidRecipient
	}
	if IsMobile(value) {
		return RecipientMobile, nil
	}
	if IsEmail(value) {
		return RecipientEmail, nil
	}
	return RecipientUnknown, ErrInvalidRecipient
}

// IsMobile reports whether value is composed only of digits and separators.
func IsMobile(value string) bool {
	digits := 0
	for i, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits > 0
}

// IsEmail reports whether value has the local@domain.tld shape.
func IsEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}
