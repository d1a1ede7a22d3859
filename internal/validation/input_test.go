package validation

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError string
	}{
		{name: "valid short name", input: "newsletter"},
		{name: "valid name at max length", input: strings.Repeat("a", MaxNameLength)},
		{name: "unicode counts characters", input: strings.Repeat("é", MaxNameLength)},
		{name: "name exceeds max length by one", input: strings.Repeat("a", MaxNameLength+1), wantError: "exceeds maximum length"},
		{name: "empty", input: "", wantError: "must not be blank"},
		{name: "whitespace only", input: "  \t", wantError: "must not be blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("list", tt.input)
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("ValidateName() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("ValidateName() error = %v, want containing %q", err, tt.wantError)
			}
			if !strings.HasPrefix(err.Error(), "list name") {
				t.Errorf("error should name the kind: %v", err)
			}
		})
	}
}

func TestValidateMessageContent(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{name: "empty content is allowed", input: ""},
		{name: "short body", input: "Hello"},
		{name: "at max size", input: strings.Repeat("a", MaxMessageLength)},
		{name: "one byte over", input: strings.Repeat("a", MaxMessageLength+1), wantError: true},
		// é is two bytes in UTF-8.
		{name: "multibyte over in bytes", input: strings.Repeat("é", MaxMessageLength/2+1), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessageContent("message_bodyHtml", tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateMessageContent() error = %v, wantError %v", err, tt.wantError)
			}
			if err != nil && !strings.Contains(err.Error(), "message_bodyHtml") {
				t.Errorf("error should name the field: %v", err)
			}
		})
	}
}
