package api

import (
	"context"
	"strings"

	"github.com/pure360/pure360-cli/internal/validation"
)

// Signup and opt-out form fields.
const (
	FieldAccName     = "accName"
	FieldDoubleOptin = "doubleOptin"
	FieldSuccessURL  = "successUrl"
	FieldErrorURL    = "errorUrl"
	FieldMode        = "mode"
	// FieldEmail and FieldMobile match validation.RecipientKind.String.
	FieldEmail  = "email"
	FieldMobile = "mobile"

	noRedirect = "NO-REDIRECT"
	modeOptout = "OPTOUT"
)

// SignupRequest adds one recipient to a list.
type SignupRequest struct {
	Account      string            `json:"account"`
	List         string            `json:"list"`
	Recipient    string            `json:"recipient"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
	DoubleOptin  bool              `json:"double_optin"`
}

// BuildSignupFields assembles the signup payload. Custom fields are merged
// over the base fields; the recipient field is set last.
func BuildSignupFields(req SignupRequest) (Fields, error) {
	doubleOptin := "FALSE"
	if req.DoubleOptin {
		doubleOptin = "TRUE"
	}
	fields := Fields{
		FieldAccName:     req.Account,
		FieldListName:    req.List,
		FieldDoubleOptin: doubleOptin,
		FieldSuccessURL:  noRedirect,
		FieldErrorURL:    noRedirect,
	}
	fields.Merge(req.CustomFields)
	if err := setRecipientField(fields, req.Recipient); err != nil {
		return nil, err
	}
	return fields, nil
}

// BuildOptoutFields assembles the opt-out payload.
func BuildOptoutFields(account, recipient string) (Fields, error) {
	fields := Fields{
		FieldAccName: account,
		FieldMode:    modeOptout,
	}
	if err := setRecipientField(fields, recipient); err != nil {
		return nil, err
	}
	return fields, nil
}

// Signup subscribes a recipient to a list and returns the raw response.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (string, error) {
	fields, err := BuildSignupFields(req)
	if err != nil {
		return "", err
	}
	return c.Post(ctx, c.Endpoints.List, fields, "")
}

// Optout removes a recipient from the account and returns the raw response.
func (c *Client) Optout(ctx context.Context, account, recipient string) (string, error) {
	fields, err := BuildOptoutFields(account, recipient)
	if err != nil {
		return "", err
	}
	return c.Post(ctx, c.Endpoints.List, fields, "")
}

func setRecipientField(fields Fields, recipient string) error {
	kind, value, err := classify(recipient)
	if err != nil {
		return err
	}
	fields[kind.String()] = value
	return nil
}

func classify(recipient string) (validation.RecipientKind, string, error) {
	kind, err := validation.ClassifyRecipient(recipient)
	if err != nil {
		return validation.RecipientUnknown, "", &InvalidRecipientError{Recipient: recipient, Err: err}
	}
	return kind, strings.TrimSpace(recipient), nil
}
