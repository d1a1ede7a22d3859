package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pure360/pure360-cli/internal/debug"
)

// TransactionMode selects how an upload affects the named list.
type TransactionMode string

const (
	TransactionCreate  TransactionMode = "CREATE"
	TransactionReplace TransactionMode = "REPLACE"
	TransactionAppend  TransactionMode = "APPEND"
)

// Valid reports whether m is one of the known modes.
func (m TransactionMode) Valid() bool {
	switch m {
	case TransactionCreate, TransactionReplace, TransactionAppend:
		return true
	}
	return false
}

// List upload form fields.
const (
	FieldProfileName     = "profileName"
	FieldToken           = "token"
	FieldResponseType    = "responseType"
	FieldResponseURI     = "responseUri"
	FieldListName        = "listName"
	FieldTransactionType = "transactionType"
	FieldTransactionID   = "transactionId"
)

// ListUploadRequest describes one list upload.
type ListUploadRequest struct {
	ProfileName  string `json:"profile_name"`
	Token        string `json:"-"`
	ResponseType string `json:"response_type"`
	ResponseURI  string `json:"response_uri"`
	ListName     string `json:"list_name"`
	File         string `json:"file"`
}

// ListUploadResult is the outcome of a completed upload.
type ListUploadResult struct {
	TransactionID string `json:"transaction_id"`
	Body          string `json:"body"`
}

// UploadError reports a data upload that failed after the transaction was
// registered. The transaction exists remotely without data.
type UploadError struct {
	TransactionID string
	Err           error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload for transaction %s failed: %v", e.TransactionID, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// BuildListMetadata assembles the metadata payload for mode.
func BuildListMetadata(req ListUploadRequest, mode TransactionMode, headers HeaderMap) Fields {
	fields := Fields{
		FieldProfileName:     req.ProfileName,
		FieldToken:           req.Token,
		FieldResponseType:    req.ResponseType,
		FieldResponseURI:     req.ResponseURI,
		FieldListName:        req.ListName,
		FieldTransactionType: string(mode),
	}
	return fields.Merge(headers.Fields())
}

// BuildListData assembles the data payload sent alongside the file.
func BuildListData(transactionID, profileName string) Fields {
	return Fields{
		FieldTransactionID: transactionID,
		FieldProfileName:   profileName,
	}
}

// ParseTransactionID extracts the transaction id from a metadata response:
// the final colon-separated segment, trimmed.
func ParseTransactionID(endpoint, response string) (string, error) {
	idx := strings.LastIndex(response, ":")
	if idx < 0 {
		return "", &ProtocolError{Endpoint: endpoint, Response: response, Reason: "no colon-delimited transaction id"}
	}
	id := strings.TrimSpace(response[idx+1:])
	if id == "" {
		return "", &ProtocolError{Endpoint: endpoint, Response: response, Reason: "empty transaction id"}
	}
	return id, nil
}

// CreateList uploads a file as a new list.
func (c *Client) CreateList(ctx context.Context, req ListUploadRequest) (*ListUploadResult, error) {
	return c.processList(ctx, req, TransactionCreate)
}

// ReplaceList replaces the contents of an existing list.
func (c *Client) ReplaceList(ctx context.Context, req ListUploadRequest) (*ListUploadResult, error) {
	return c.processList(ctx, req, TransactionReplace)
}

// AppendList appends the file's rows to an existing list.
func (c *Client) AppendList(ctx context.Context, req ListUploadRequest) (*ListUploadResult, error) {
	return c.processList(ctx, req, TransactionAppend)
}

// UploadList runs the upload with an explicit mode.
func (c *Client) UploadList(ctx context.Context, req ListUploadRequest, mode TransactionMode) (*ListUploadResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid transaction mode %q: must be CREATE, REPLACE or APPEND", mode)
	}
	return c.processList(ctx, req, mode)
}

func (c *Client) processList(ctx context.Context, req ListUploadRequest, mode TransactionMode) (*ListUploadResult, error) {
	headers, err := ReadHeaderMap(req.File)
	if err != nil {
		return nil, err
	}

	metaResp, err := c.Post(ctx, c.Endpoints.ListUploadMeta, BuildListMetadata(req, mode, headers), "")
	if err != nil {
		return nil, fmt.Errorf("register %s transaction for list %q: %w", mode, req.ListName, err)
	}
	transactionID, err := ParseTransactionID(c.Endpoints.ListUploadMeta, metaResp)
	if err != nil {
		return nil, err
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("transaction registered", "list", req.ListName, "mode", string(mode), "transaction_id", transactionID)
	}

	body, err := c.Post(ctx, c.Endpoints.ListUploadData, BuildListData(transactionID, req.ProfileName), req.File)
	if err != nil {
		return nil, &UploadError{TransactionID: transactionID, Err: err}
	}
	return &ListUploadResult{TransactionID: transactionID, Body: body}, nil
}
