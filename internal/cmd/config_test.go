package cmd

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigShow_JSON(t *testing.T) {
	env := setupTestEnv(t, nil)

	stdout, _, err := env.run("config", "show", "--json", "--timeout", "5s")
	require.NoError(t, err)

	var got struct {
		BaseURL     string `json:"base_url"`
		Timeout     string `json:"timeout"`
		Concurrency int    `json:"concurrency"`
		Endpoints   struct {
			ListUploadMeta string `json:"list_upload_meta"`
			List           string `json:"list"`
			OneToOne       string `json:"one_to_one"`
		} `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, env.server.URL, got.BaseURL)
	assert.Equal(t, "5s", got.Timeout)
	assert.Equal(t, 4, got.Concurrency)
	assert.Equal(t, env.server.URL+"/list_upload_meta.php", got.Endpoints.ListUploadMeta)
	assert.Equal(t, env.server.URL+"/list.php", got.Endpoints.List)
	assert.Equal(t, env.server.URL+"/common/one2OneCreate.php", got.Endpoints.OneToOne)
}

func TestConfigShow_FileAndEnv(t *testing.T) {
	setupTestEnv(t, nil)
	path := writeFile(t, "config.yaml", strings.Join([]string{
		"base_url: https://staging.example.com/interface",
		"timeout: 12s",
		"endpoints:",
		"  one_to_one: https://sms.example.com/send.php",
	}, "\n"))
	t.Setenv("PURE360_CONCURRENCY", "9")

	stdout, _, err := runCLI("", "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, path)
	assert.Contains(t, stdout, "12s")
	assert.Contains(t, stdout, "9")
	assert.Contains(t, stdout, "https://staging.example.com/interface/list.php")
	assert.Contains(t, stdout, "https://sms.example.com/send.php")
}

func TestConfigShow_Defaults(t *testing.T) {
	setupTestEnv(t, nil)

	stdout, _, err := runCLI("", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(defaults)")
	assert.Contains(t, stdout, "https://response.pure360.com/interface/list.php")
}

func TestConfig_InvalidBaseURL(t *testing.T) {
	setupTestEnv(t, nil)

	_, stderr, err := runCLI("", "--base-url", "ftp://example.com", "config", "show")
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid --base-url")
}

func TestConfig_MissingExplicitFile(t *testing.T) {
	setupTestEnv(t, nil)

	_, _, err := runCLI("", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestConfigPath(t *testing.T) {
	setupTestEnv(t, nil)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	stdout, _, err := runCLI("", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pure360-cli", "config.yaml")+"\n", stdout)
}
