package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pure360/pure360-cli/internal/debug"
)

// Fields is a flat set of form fields.
type Fields map[string]string

// Merge copies every entry of other into f, overwriting existing keys.
func (f Fields) Merge(other map[string]string) Fields {
	for k, v := range other {
		f[k] = v
	}
	return f
}

// Keys returns the field names in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values converts f into url.Values.
func (f Fields) Values() url.Values {
	values := make(url.Values, len(f))
	for k, v := range f {
		values.Set(k, v)
	}
	return values
}

const (
	uploadFieldName   = "file"
	uploadContentType = "text/csv"
	maxResponseBytes  = 10 << 20
)

// Post sends fields to rawURL and returns the raw response body.
//
// Without a file the body is form-urlencoded. When filePath is not empty the
// body is multipart/form-data with the file attached under the "file" part;
// relative paths are resolved against the working directory first.
func (c *Client) Post(ctx context.Context, rawURL string, fields Fields, filePath string) (string, error) {
	var (
		body        []byte
		contentType string
		err         error
	)
	if filePath != "" {
		body, contentType, err = encodeMultipart(fields, filePath)
		if err != nil {
			return "", err
		}
	} else {
		body = []byte(fields.Values().Encode())
		contentType = "application/x-www-form-urlencoded"
	}
	return c.send(ctx, rawURL, body, contentType)
}

func (c *Client) send(ctx context.Context, rawURL string, body []byte, contentType string) (string, error) {
	requestID := newRequestID()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{URL: rawURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-Id", requestID)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", http.MethodPost, "url", rawURL, "request_id", requestID, "error", err)
		}
		return "", &TransportError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &TransportError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", http.MethodPost, "url", rawURL, "request_id", requestID, "status", resp.StatusCode, "bytes", len(respBody), "duration", time.Since(start))
	}

	if resp.StatusCode >= 400 {
		return "", &TransportError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return string(respBody), nil
}

func encodeMultipart(fields Fields, filePath string) ([]byte, string, error) {
	path, err := filepath.Abs(filePath)
	if err != nil {
		return nil, "", &FileReadError{Path: filePath, Err: err}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &FileReadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, key := range fields.Keys() {
		if err := writer.WriteField(key, fields[key]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadFieldName, escapeQuotes(filepath.Base(path))))
	header.Set("Content-Type", uploadContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file %s: %w", path, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", &FileReadError{Path: path, Err: err}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func newRequestID() string {
	return ulid.Make().String()
}
