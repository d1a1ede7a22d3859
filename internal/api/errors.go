package api

import (
	"errors"
	"fmt"
	"strings"
)

// TransportError reports a failed HTTP exchange: the request could not be
// sent, the response could not be read, or the server answered with an
// error status.
type TransportError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("POST %s failed with status %d: %s", e.URL, e.StatusCode, truncate(e.Body, 200))
	}
	return fmt.Sprintf("POST %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a response that does not follow the expected shape.
type ProtocolError struct {
	Endpoint string
	Response string
	Reason   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %s (response %q)", e.Endpoint, e.Reason, truncate(e.Response, 200))
}

// InvalidRecipientError reports a recipient that is neither an email address
// nor a mobile number.
type InvalidRecipientError struct {
	Recipient string
	Err       error
}

func (e *InvalidRecipientError) Error() string {
	return fmt.Sprintf("invalid recipient %q: not an email address or mobile number", e.Recipient)
}

func (e *InvalidRecipientError) Unwrap() error { return e.Err }

// InvalidContentTypeError reports a content type other than EMAIL or SMS.
type InvalidContentTypeError struct {
	ContentType string
}

func (e *InvalidContentTypeError) Error() string {
	return fmt.Sprintf("invalid content type %q: must be either EMAIL or SMS", e.ContentType)
}

// RecipientContentTypeMismatchError reports an SMS addressed to an email
// address or an EMAIL addressed to a mobile number.
type RecipientContentTypeMismatchError struct {
	ContentType ContentType
	Recipient   string
}

func (e *RecipientContentTypeMismatchError) Error() string {
	if e.ContentType == ContentTypeSMS {
		return fmt.Sprintf("cannot send SMS to email address %q", e.Recipient)
	}
	return fmt.Sprintf("cannot send EMAIL to mobile number %q", e.Recipient)
}

// MissingMessageFieldsError reports required message fields absent from a
// request that does not reference a stored message.
type MissingMessageFieldsError struct {
	ContentType ContentType
	Missing     []string
}

func (e *MissingMessageFieldsError) Error() string {
	return fmt.Sprintf("%s message without %s requires: %s", e.ContentType, FieldMessageName, strings.Join(e.Missing, ", "))
}

// ReservedFieldError reports a message parameter that would overwrite a
// field the client sets itself.
type ReservedFieldError struct {
	Field string
}

func (e *ReservedFieldError) Error() string {
	return fmt.Sprintf("parameter %q is set by the client and cannot be overridden", e.Field)
}

// FileReadError reports a list source file that could not be opened or read.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// IsTransportError checks if the error is a transport error.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsProtocolError checks if the error is a protocol error.
func IsProtocolError(err error) bool {
	var e *ProtocolError
	return errors.As(err, &e)
}

// IsValidationError reports whether err is a precondition failure detected
// before any request was sent.
func IsValidationError(err error) bool {
	var (
		recipient *InvalidRecipientError
		content   *InvalidContentTypeError
		mismatch  *RecipientContentTypeMismatchError
		missing   *MissingMessageFieldsError
		reserved  *ReservedFieldError
	)
	return errors.As(err, &reserved) ||
		errors.As(err, &recipient) ||
		errors.As(err, &content) ||
		errors.As(err, &mismatch) ||
		errors.As(err, &missing)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
