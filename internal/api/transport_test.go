package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestPost_FormEncoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", ct)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("expected X-Request-Id header")
		}
		if ua := r.Header.Get("User-Agent"); ua != "pure360-cli" {
			t.Errorf("unexpected user agent %q", ua)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("accName") != "acme" || r.PostForm.Get("mode") != "OPTOUT" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		_, _ = w.Write([]byte("raw body"))
	}))
	defer server.Close()

	body, err := New().Post(context.Background(), server.URL, Fields{"accName": "acme", "mode": "OPTOUT"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "raw body" {
		t.Errorf("expected raw body, got %q", body)
	}
}

func TestPost_MultipartWithFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "contacts.csv", "email,name\na@b.com,Ann\n")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart body, got %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("transactionId"); got != "42" {
			t.Errorf("expected transactionId 42, got %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("expected file part: %v", err)
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "contacts.csv" {
			t.Errorf("expected base filename, got %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "text/csv" {
			t.Errorf("expected text/csv part, got %q", ct)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "email,name\na@b.com,Ann\n" {
			t.Errorf("unexpected file content %q", data)
		}
		_, _ = w.Write([]byte("OK"))
	}))
	defer server.Close()

	body, err := New().Post(context.Background(), server.URL, Fields{"transactionId": "42"}, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "OK" {
		t.Errorf("expected OK, got %q", body)
	}
}

func TestPost_RelativePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rel.csv", "email\n")
	t.Chdir(dir)

	var filename string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("expected file part: %v", err)
		}
		filename = header.Filename
	}))
	defer server.Close()

	if _, err := New().Post(context.Background(), server.URL, nil, "rel.csv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filename != "rel.csv" {
		t.Errorf("expected rel.csv, got %q", filename)
	}
}

func TestPost_MissingFile(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	_, err := New().Post(context.Background(), server.URL, nil, filepath.Join(t.TempDir(), "missing.csv"))
	var fileErr *FileReadError
	if !errors.As(err, &fileErr) {
		t.Fatalf("expected FileReadError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
	if called {
		t.Error("no request should be sent when the file cannot be opened")
	}
}

func TestPost_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	_, err := New().Post(context.Background(), server.URL, Fields{}, "")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transportErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", transportErr.StatusCode)
	}
	if transportErr.Body != "upstream down" {
		t.Errorf("unexpected body %q", transportErr.Body)
	}
	if CodeOf(err) != ErrTransport {
		t.Errorf("expected transport code, got %s", CodeOf(err))
	}
}

func TestPost_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New().Post(context.Background(), url, Fields{}, "")
	if !IsTransportError(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestPost_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	_, err := New(WithTimeout(50*time.Millisecond)).Post(context.Background(), server.URL, Fields{}, "")
	if !IsTransportError(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if CodeOf(err) != ErrTimeout {
		t.Errorf("expected timeout code, got %s", CodeOf(err))
	}
}

func TestPost_ZeroValueClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer server.Close()

	body, err := (&Client{}).Post(context.Background(), server.URL, Fields{"a": "1"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "ok" {
		t.Errorf("unexpected body %q", body)
	}

	_, err = (&Client{}).Post(context.Background(), "http://127.0.0.1:1", Fields{}, "")
	if !IsTransportError(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestFields_Helpers(t *testing.T) {
	f := Fields{"b": "2", "a": "1"}
	if f.Values().Encode() != "a=1&b=2" {
		t.Errorf("unexpected encoding %q", f.Values().Encode())
	}
	keys := f.Merge(map[string]string{"a": "override", "c": "3"}).Keys()
	if strings.Join(keys, ",") != "a,b,c" {
		t.Errorf("unexpected keys %v", keys)
	}
	if f["a"] != "override" {
		t.Errorf("Merge should overwrite, got %q", f["a"])
	}
	if f.Values().Encode() != "a=override&b=2&c=3" {
		t.Errorf("unexpected encoding %q", f.Values().Encode())
	}
}

func TestNewRequestID_Unique(t *testing.T) {
	a, b := newRequestID(), newRequestID()
	if a == b {
		t.Errorf("request ids should differ: %s", a)
	}
	if len(a) != 26 {
		t.Errorf("expected 26-char ULID, got %q", a)
	}
}
