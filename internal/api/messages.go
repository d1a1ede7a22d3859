package api

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pure360/pure360-cli/internal/schedule"
	"github.com/pure360/pure360-cli/internal/validation"
)

// ContentType is the channel of a one-to-one message.
type ContentType string

const (
	ContentTypeEmail ContentType = "EMAIL"
	ContentTypeSMS   ContentType = "SMS"
)

// ParseContentType accepts EMAIL or SMS in any case.
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(strings.ToUpper(strings.TrimSpace(s)))
	switch ct {
	case ContentTypeEmail, ContentTypeSMS:
		return ct, nil
	}
	return "", &InvalidContentTypeError{ContentType: s}
}

// One-to-one form fields.
const (
	FieldUserName      = "userName"
	FieldPassword      = "password"
	FieldContentType   = "message_contentType"
	FieldToAddress     = "toAddress"
	FieldDeliveryTime  = "deliveryDtTm"
	FieldJSON          = "json"
	FieldMessageName   = "message_messageName"
	FieldBodyPlain     = "message_bodyPlain"
	FieldBodyHTML      = "message_bodyHtml"
	FieldSubject       = "message_subject"
	FieldTrackHTMLInd  = "message_trackHtmlInd"
	FieldTrackPlainInd = "message_trackPlainInd"
	FieldBodySMS       = "message_bodySms"
)

// reservedMessageFields are set from MessageRequest and may not be passed in Params.
var reservedMessageFields = []string{
	FieldUserName, FieldPassword, FieldContentType, FieldToAddress, FieldDeliveryTime, FieldJSON,
}

var requiredMessageFields = map[ContentType][]string{
	ContentTypeEmail: {FieldBodyPlain, FieldBodyHTML, FieldSubject, FieldTrackHTMLInd, FieldTrackPlainInd},
	ContentTypeSMS:   {FieldBodySMS},
}

// RequiredMessageFields returns the fields an inline message of ct must carry.
func RequiredMessageFields(ct ContentType) []string {
	return append([]string(nil), requiredMessageFields[ct]...)
}

// MessageRequest describes one one-to-one send.
type MessageRequest struct {
	UserName    string      `json:"user_name"`
	Password    string      `json:"-"`
	ContentType ContentType `json:"content_type"`
	Recipient   string      `json:"recipient"`
	// Params holds message fields, a message_messageName template reference
	// and any personalisation fields.
	Params        map[string]string `json:"params,omitempty"`
	DeliveryTime  string            `json:"delivery_time,omitempty"`
	PlainResponse bool              `json:"plain_response,omitempty"`
}

// FormatDeliveryTime formats t in the platform's delivery layout.
func FormatDeliveryTime(t time.Time) string {
	return t.Format(schedule.PlatformLayout)
}

// BuildMessageFields validates req and assembles the one-to-one payload.
// now supplies the delivery time when req has none.
func BuildMessageFields(req MessageRequest, now time.Time) (Fields, error) {
	switch req.ContentType {
	case ContentTypeEmail, ContentTypeSMS:
	default:
		return nil, &InvalidContentTypeError{ContentType: string(req.ContentType)}
	}

	for _, name := range reservedMessageFields {
		if _, ok := req.Params[name]; ok {
			return nil, &ReservedFieldError{Field: name}
		}
	}

	kind, recipient, err := classify(req.Recipient)
	if err != nil {
		return nil, err
	}
	if (req.ContentType == ContentTypeSMS && kind != validation.RecipientMobile) ||
		(req.ContentType == ContentTypeEmail && kind != validation.RecipientEmail) {
		return nil, &RecipientContentTypeMismatchError{ContentType: req.ContentType, Recipient: recipient}
	}

	if !hasField(req.Params, FieldMessageName) {
		var missing []string
		for _, name := range requiredMessageFields[req.ContentType] {
			if !hasField(req.Params, name) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return nil, &MissingMessageFieldsError{ContentType: req.ContentType, Missing: missing}
		}
	}

	deliveryTime := strings.TrimSpace(req.DeliveryTime)
	if deliveryTime == "" {
		deliveryTime = FormatDeliveryTime(now)
	}
	jsonFlag := "true"
	if req.PlainResponse {
		jsonFlag = "false"
	}

	fields := Fields{
		FieldUserName:     req.UserName,
		FieldPassword:     req.Password,
		FieldContentType:  string(req.ContentType),
		FieldToAddress:    recipient,
		FieldDeliveryTime: deliveryTime,
		FieldJSON:         jsonFlag,
	}
	return fields.Merge(req.Params), nil
}

// Send validates and posts a one-to-one message, returning the raw response.
func (c *Client) Send(ctx context.Context, req MessageRequest) (string, error) {
	fields, err := BuildMessageFields(req, c.clock())
	if err != nil {
		return "", err
	}
	return c.Post(ctx, c.Endpoints.OneToOne, fields, "")
}

func hasField(params map[string]string, name string) bool {
	v, ok := params[name]
	return ok && strings.TrimSpace(v) != ""
}
