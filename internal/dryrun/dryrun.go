// Package dryrun previews the requests a command would send.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

type contextKey struct{}

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(contextKey{}).(bool); ok {
		return v
	}
	return false
}

// secretFields are masked in every preview.
var secretFields = map[string]bool{
	"token":    true,
	"password": true,
}

// Request is one POST that would be sent.
type Request struct {
	Endpoint string            `json:"endpoint"`
	Fields   map[string]string `json:"fields"`
	File     string            `json:"file,omitempty"`
}

// Preview represents a dry-run preview of an operation
type Preview struct {
	Operation string    `json:"operation"`
	Requests  []Request `json:"requests"`
	Warnings  []string  `json:"warnings,omitempty"`
}

// NewPreview returns a preview for operation.
func NewPreview(operation string) *Preview {
	return &Preview{Operation: operation}
}

// Add records a request with secret fields masked.
func (p *Preview) Add(endpoint string, fields map[string]string, file string) *Preview {
	masked := make(map[string]string, len(fields))
	for k, v := range fields {
		if secretFields[k] && v != "" {
			v = "********"
		}
		masked[k] = v
	}
	p.Requests = append(p.Requests, Request{Endpoint: endpoint, Fields: masked, File: file})
	return p
}

// Warn records a warning.
func (p *Preview) Warn(format string, args ...any) *Preview {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
	return p
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n[DRY-RUN] Would %s\n", p.Operation)
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 39))

	for i, req := range p.Requests {
		_, _ = fmt.Fprintf(w, "%d. POST %s\n", i+1, req.Endpoint)
		keys := make([]string, 0, len(req.Fields))
		for k := range req.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", k, req.Fields[k])
		}
		if req.File != "" {
			_, _ = fmt.Fprintf(w, "  file: %s\n", req.File)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, strings.Repeat("─", 39))
	_, _ = fmt.Fprintln(w, "No requests sent (dry-run mode)")
}
