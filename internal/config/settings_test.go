package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure360/pure360-cli/internal/api"
)

func isolateConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	original := userConfigDir
	userConfigDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDir = original })
	t.Setenv(envConfigFile, "")
	return dir
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigDir(t)

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, api.DefaultBaseURL, s.BaseURL)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.Equal(t, "text", s.Output)
	assert.Equal(t, 4, s.Concurrency)
	assert.Empty(t, s.Source)
	assert.Equal(t, api.DefaultEndpoints(), s.ResolvedEndpoints())
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolateConfigDir(t)
	path := filepath.Join(t.TempDir(), "p360.yaml")
	writeConfig(t, path, `
base_url: http://localhost:9000/interface
timeout: 5s
endpoints:
  one_to_one: http://sms.local/send.php
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Source)
	assert.Equal(t, 5*time.Second, s.Timeout)

	e := s.ResolvedEndpoints()
	assert.Equal(t, "http://localhost:9000/interface/list.php", e.List)
	assert.Equal(t, "http://sms.local/send.php", e.OneToOne)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolateConfigDir(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_UserConfigFile(t *testing.T) {
	dir := isolateConfigDir(t)
	path := filepath.Join(dir, serviceName, configFileName)
	writeConfig(t, path, "output: json\n")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", s.Output)
	assert.Equal(t, path, s.Source)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateConfigDir(t)
	t.Setenv("PURE360_BASE_URL", "http://127.0.0.1:8080")
	t.Setenv("PURE360_TIMEOUT", "2s")
	t.Setenv("PURE360_CONCURRENCY", "8")
	t.Setenv("PURE360_ENDPOINTS_LIST", "http://lists.local/list.php")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, s.Timeout)
	assert.Equal(t, 8, s.Concurrency)
	e := s.ResolvedEndpoints()
	assert.Equal(t, "http://127.0.0.1:8080/list_upload_meta.php", e.ListUploadMeta)
	assert.Equal(t, "http://lists.local/list.php", e.List)
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	isolateConfigDir(t)
	path := filepath.Join(t.TempDir(), "env.yaml")
	writeConfig(t, path, "log_format: json\n")
	t.Setenv(envConfigFile, path)

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", s.LogFormat)
}

func TestSettings_Validate(t *testing.T) {
	base := Settings{BaseURL: api.DefaultBaseURL, Output: "text"}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "valid", mutate: func(*Settings) {}},
		{name: "bad output", mutate: func(s *Settings) { s.Output = "xml" }, wantErr: "invalid output"},
		{name: "negative timeout", mutate: func(s *Settings) { s.Timeout = -time.Second }, wantErr: "timeout"},
		{name: "negative concurrency", mutate: func(s *Settings) { s.Concurrency = -1 }, wantErr: "concurrency"},
		{name: "bad scheme", mutate: func(s *Settings) { s.BaseURL = "ftp://example.com" }, wantErr: "scheme"},
		{name: "credentials in endpoint", mutate: func(s *Settings) { s.Endpoints.List = "https://u:p@example.com/list.php" }, wantErr: "credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettings_WithBaseURL(t *testing.T) {
	s := Settings{Endpoints: api.Endpoints{List: "https://other.example.com/list.php"}}.WithBaseURL("http://localhost:1234")
	assert.Equal(t, "http://localhost:1234/list.php", s.ResolvedEndpoints().List)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PURE360_TOKEN=from-file\nPURE360_ACCOUNT=acme\n"), 0o600))
	t.Setenv(envEnvFile, path)
	t.Setenv("PURE360_TOKEN", "already-set")
	t.Setenv("PURE360_ACCOUNT", "")
	require.NoError(t, os.Unsetenv("PURE360_ACCOUNT"))

	require.NoError(t, LoadDotEnv())
	assert.Equal(t, "already-set", os.Getenv("PURE360_TOKEN"))
	assert.Equal(t, "acme", os.Getenv("PURE360_ACCOUNT"))
}

func TestLoadDotEnv_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(envEnvFile, "")
	assert.NoError(t, LoadDotEnv())
}

func TestLoadDotEnv_MissingExplicitFile(t *testing.T) {
	t.Setenv(envEnvFile, filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, LoadDotEnv())
}
