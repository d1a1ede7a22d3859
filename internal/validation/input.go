package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Input limits applied before a payload is built.
const (
	MaxNameLength    = 255
	MaxMessageLength = 100000 // bytes per message body
)

// ValidateName checks a list, template or field name: it must not be blank
// and is capped at MaxNameLength characters. kind names the value in errors.
func ValidateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s name must not be blank", kind)
	}

	length := utf8.RuneCountInString(name)
	if length > MaxNameLength {
		return fmt.Errorf("%s name exceeds maximum length of %d characters (got %d)", kind, MaxNameLength, length)
	}

	return nil
}

// ValidateMessageContent checks the size of a message body.
// Empty content is allowed; whether a body is required is decided elsewhere.
func ValidateMessageContent(field, content string) error {
	// Byte length: bodies are posted as UTF-8.
	length := len(content)
	if length > MaxMessageLength {
		return fmt.Errorf("%s exceeds maximum size of %d bytes (got %d)", field, MaxMessageLength, length)
	}

	return nil
}
