package cmd

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/99designs/keyring"

	"github.com/pure360/pure360-cli/internal/config"
	"github.com/pure360/pure360-cli/internal/iocontext"
)

// recordedRequest is one POST received by the mock platform.
type recordedRequest struct {
	Path   string
	Fields url.Values
	// File holds the uploaded "file" part, if any.
	File     string
	FileName string
}

// routeHandler answers POSTs by path and records every request it sees.
// Unknown paths get 404.
type routeHandler struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers a handler for path.
func (h *routeHandler) On(path string, handler http.HandlerFunc) *routeHandler {
	h.routes[path] = handler
	return h
}

func (h *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Path: r.URL.Path}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			rec.Fields = url.Values(r.MultipartForm.Value)
			if file, header, err := r.FormFile("file"); err == nil {
				data, _ := io.ReadAll(file)
				_ = file.Close()
				rec.File = string(data)
				rec.FileName = header.Filename
			}
		}
	} else if err := r.ParseForm(); err == nil {
		rec.Fields = r.PostForm
	}

	h.mu.Lock()
	h.requests = append(h.requests, rec)
	handler, ok := h.routes[r.URL.Path]
	h.mu.Unlock()

	if !ok || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

// Requests returns a copy of the requests received so far.
func (h *routeHandler) Requests() []recordedRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]recordedRequest(nil), h.requests...)
}

// textResponse answers with a fixed status and body.
func textResponse(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// testEnv is an isolated CLI environment pointed at a mock platform.
type testEnv struct {
	t       *testing.T
	server  *httptest.Server
	handler *routeHandler
	ring    keyring.Keyring
}

var credentialEnv = []string{
	"PURE360_PROFILE", "PURE360_PROFILE_NAME", "PURE360_TOKEN", "PURE360_ACCOUNT",
	"PURE360_USERNAME", "PURE360_PASSWORD", "PURE360_RESPONSE_TYPE", "PURE360_RESPONSE_URI",
}

// setupTestEnv starts a mock platform and isolates config, credentials and
// keyring for the test. Credentials come only from what the test sets.
func setupTestEnv(t *testing.T, handler *routeHandler) *testEnv {
	t.Helper()
	if handler == nil {
		handler = newRouteHandler()
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PURE360_CONFIG", "")
	t.Setenv("PURE360_ENV_FILE", "")
	t.Setenv("PURE360_BASE_URL", "")
	t.Setenv("PURE360_OUTPUT", "text")
	for _, key := range credentialEnv {
		t.Setenv(key, "")
	}

	ring := keyring.NewArrayKeyring(nil)
	t.Cleanup(config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))

	return &testEnv{t: t, server: server, handler: handler, ring: ring}
}

// setCredentials exports every credential the commands look for.
func (e *testEnv) setCredentials() {
	e.t.Helper()
	e.t.Setenv("PURE360_PROFILE_NAME", "acme")
	e.t.Setenv("PURE360_TOKEN", "list-token")
	e.t.Setenv("PURE360_ACCOUNT", "acme-account")
	e.t.Setenv("PURE360_USERNAME", "acme-api")
	e.t.Setenv("PURE360_PASSWORD", "s3cret-pass")
}

// run executes the CLI against the mock platform with empty stdin.
func (e *testEnv) run(args ...string) (stdout, stderr string, err error) {
	e.t.Helper()
	return e.runWithInput("", args...)
}

func (e *testEnv) runWithInput(stdin string, args ...string) (stdout, stderr string, err error) {
	e.t.Helper()
	full := append([]string{"--base-url", e.server.URL}, args...)
	return runCLI(stdin, full...)
}

// runCLI executes the CLI with buffered streams.
func runCLI(stdin string, args ...string) (stdout, stderr string, err error) {
	streams, out, errOut := iocontext.Buffered(stdin)
	err = Execute(iocontext.WithIO(context.Background(), streams), args)
	return out.String(), errOut.String(), err
}

// writeFile writes content under a temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
