package api

import (
	"context"
	"errors"
	"net"
)

// ErrorCode is a machine-readable classification of client errors.
type ErrorCode string

const (
	ErrTransport          ErrorCode = "transport"
	ErrTimeout            ErrorCode = "timeout"
	ErrProtocol           ErrorCode = "protocol"
	ErrInvalidRecipient   ErrorCode = "invalid_recipient"
	ErrInvalidContentType ErrorCode = "invalid_content_type"
	ErrRecipientMismatch  ErrorCode = "recipient_mismatch"
	ErrMissingFields      ErrorCode = "missing_fields"
	ErrReservedField      ErrorCode = "reserved_field"
	ErrFileRead           ErrorCode = "file_read"
	ErrUnknown            ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed when the
// caller tries again. The client itself never retries.
func (c ErrorCode) IsRetryable() bool {
	return c == ErrTransport || c == ErrTimeout
}

// Suggestion returns a human-readable hint for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrTransport:
		return "Check network connectivity and the configured endpoint URLs"
	case ErrTimeout:
		return "The request timed out; retry or raise --timeout"
	case ErrProtocol:
		return "The platform answered without a transaction id; check the profile name and token"
	case ErrInvalidRecipient:
		return "Use a full email address or a mobile number made of digits"
	case ErrInvalidContentType:
		return "Use EMAIL or SMS"
	case ErrRecipientMismatch:
		return "Send EMAIL to email addresses and SMS to mobile numbers"
	case ErrMissingFields:
		return "Reference a stored message with --template or supply the listed fields"
	case ErrReservedField:
		return "Use the dedicated flag or request field instead of a parameter"
	case ErrFileRead:
		return "Check the file path and permissions"
	default:
		return ""
	}
}

// CodeOf classifies err. It returns ErrUnknown for errors this package did not produce.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var (
		transport *TransportError
		protocol  *ProtocolError
		recipient *InvalidRecipientError
		content   *InvalidContentTypeError
		mismatch  *RecipientContentTypeMismatchError
		missing   *MissingMessageFieldsError
		reserved  *ReservedFieldError
		fileErr   *FileReadError
	)
	switch {
	case errors.As(err, &transport):
		if isTimeout(transport.Err) {
			return ErrTimeout
		}
		return ErrTransport
	case errors.As(err, &protocol):
		return ErrProtocol
	case errors.As(err, &recipient):
		return ErrInvalidRecipient
	case errors.As(err, &content):
		return ErrInvalidContentType
	case errors.As(err, &mismatch):
		return ErrRecipientMismatch
	case errors.As(err, &missing):
		return ErrMissingFields
	case errors.As(err, &reserved):
		return ErrReservedField
	case errors.As(err, &fileErr):
		return ErrFileRead
	default:
		return ErrUnknown
	}
}

// StructuredError is the JSON shape of an error in --output json mode.
type StructuredError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Retryable  bool      `json:"retryable"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return "[" + string(e.Code) + "] " + e.Message
}

// NewStructuredError converts err into its structured form.
func NewStructuredError(err error) *StructuredError {
	if err == nil {
		return nil
	}
	code := CodeOf(err)
	return &StructuredError{
		Code:       code,
		Message:    err.Error(),
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
