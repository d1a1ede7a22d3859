package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure360/pure360-cli/internal/config"
)

func TestAuthLogin_SavesAndMerges(t *testing.T) {
	setupTestEnv(t, nil)

	stdout, _, err := runCLI("", "auth", "login", "--profile-name", "acme", "--token", "tok-123456")
	require.NoError(t, err)
	assert.Equal(t, "Saved credentials to profile \"default\"\n", stdout)

	_, _, err = runCLI("", "auth", "login", "--account", "acme-account")
	require.NoError(t, err)

	creds, err := config.LoadProfile("default")
	require.NoError(t, err)
	assert.Equal(t, config.Credentials{ProfileName: "acme", Token: "tok-123456", AccName: "acme-account"}, creds)
}

func TestAuthLogin_PasswordFromStdin(t *testing.T) {
	setupTestEnv(t, nil)

	_, _, err := runCLI("hunter2-pass\n", "--profile", "staging", "auth", "login", "--user-name", "api", "--password-stdin")
	require.NoError(t, err)

	creds, err := config.LoadProfile("staging")
	require.NoError(t, err)
	assert.Equal(t, "api", creds.UserName)
	assert.Equal(t, "hunter2-pass", creds.Password)

	current, err := config.CurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "staging", current)
}

func TestAuthLogin_Errors(t *testing.T) {
	setupTestEnv(t, nil)

	_, _, err := runCLI("", "auth", "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one credential")

	_, _, err = runCLI("x", "auth", "login", "--password-stdin", "--token-stdin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be used together")

	_, _, err = runCLI("", "auth", "login", "--token-stdin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no secret on stdin")
}

func TestAuthStatus_RedactsSecrets(t *testing.T) {
	setupTestEnv(t, nil)
	require.NoError(t, config.SaveProfile("default", config.Credentials{
		ProfileName: "acme",
		Token:       "tok-123456",
		Password:    "pw",
	}))

	stdout, _, err := runCLI("", "auth", "status", "--json")
	require.NoError(t, err)

	var got struct {
		Profile     string             `json:"profile"`
		Configured  bool               `json:"configured"`
		Credentials config.Credentials `json:"credentials"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "default", got.Profile)
	assert.True(t, got.Configured)
	assert.Equal(t, "acme", got.Credentials.ProfileName)
	assert.Equal(t, "to******56", got.Credentials.Token)
	assert.Equal(t, "****", got.Credentials.Password)

	text, _, err := runCLI("", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, text, "to******56")
	assert.NotContains(t, text, "tok-123456")
}

func TestAuthStatus_NotConfigured(t *testing.T) {
	setupTestEnv(t, nil)

	stdout, _, err := runCLI("", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "is not configured")
}

func TestAuthProfilesUseLogout(t *testing.T) {
	setupTestEnv(t, nil)
	require.NoError(t, config.SaveProfile("production", config.Credentials{AccName: "prod"}))
	require.NoError(t, config.SaveProfile("staging", config.Credentials{AccName: "stage"}))

	stdout, _, err := runCLI("", "auth", "profiles", "--json")
	require.NoError(t, err)
	var listed struct {
		Current  string   `json:"current"`
		Profiles []string `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &listed))
	assert.Equal(t, "staging", listed.Current)
	assert.ElementsMatch(t, []string{"production", "staging"}, listed.Profiles)

	_, stderr, err := runCLI("", "auth", "use", "prodution")
	require.Error(t, err)
	assert.Contains(t, stderr, `did you mean "production"?`)

	_, _, err = runCLI("", "auth", "use", "production")
	require.NoError(t, err)
	current, err := config.CurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "production", current)

	stdout, _, err = runCLI("", "auth", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Deleted profile \"production\"\n", stdout)

	profiles, err := config.ListProfiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"staging"}, profiles)
}

func TestAuthProfiles_Empty(t *testing.T) {
	setupTestEnv(t, nil)

	_, stderr, err := runCLI("", "auth", "profiles")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No profiles stored")
}

func TestStoredProfileFeedsCommands(t *testing.T) {
	handler := newRouteHandler().On("/list.php", textResponse(200, "OK"))
	env := setupTestEnv(t, handler)
	require.NoError(t, config.SaveProfile("default", config.Credentials{AccName: "stored-account"}))

	_, _, err := env.run("contacts", "optout", "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "stored-account", handler.Requests()[0].Fields.Get("accName"))
}
