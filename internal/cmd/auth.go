package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pure360/pure360-cli/internal/config"
	"github.com/pure360/pure360-cli/internal/iocontext"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage Pure360 credentials",
		Long: strings.TrimSpace(`
Store Pure360 credentials in your OS keychain (or an encrypted file on
headless Linux, see PURE360_KEYRING_BACKEND).

Each interface authenticates differently: list uploads use a profile name
and token, signup and opt-out an account name, one-to-one sends a user name
and password. Several sets can be kept under named profiles (--profile).
PURE360_* environment variables override stored values.
`),
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthProfilesCmd())
	cmd.AddCommand(newAuthUseCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		creds         config.Credentials
		passwordStdin bool
		tokenStdin    bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save credentials to a profile",
		Long: strings.TrimSpace(`
Save credentials to the --profile profile (default "default") and make it
the active profile. Values not given keep what the profile already stores.
`),
		Example: strings.TrimSpace(`
  p360 auth login --profile-name acme --token "$TOKEN" --account acme
  printf '%s' "$PASSWORD" | p360 auth login --user-name acme-api --password-stdin
  p360 --profile staging auth login --profile-name acme-staging --token "$STAGING_TOKEN"
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if passwordStdin && tokenStdin {
				return fmt.Errorf("--password-stdin and --token-stdin cannot be used together")
			}
			if passwordStdin || tokenStdin {
				secret, err := readSecret(iocontext.GetIO(cmd.Context()).In)
				if err != nil {
					return err
				}
				if passwordStdin {
					creds.Password = secret
				} else {
					creds.Token = secret
				}
			}
			if creds.IsZero() {
				return fmt.Errorf("at least one credential is required (see p360 auth login --help)")
			}

			profile := profileOrDefault()
			existing, err := config.LoadProfile(profile)
			if err != nil && !errors.Is(err, config.ErrNotConfigured) {
				return err
			}
			merged := mergeCredentials(existing, creds)
			if err := config.SaveProfile(profile, merged); err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"profile":     profile,
					"credentials": merged.Redacted(),
				})
			}
			_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).Out, "Saved credentials to profile %q\n", profile)
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&creds.ProfileName, "profile-name", "", "Pure360 profile name (list uploads)")
	f.StringVar(&creds.Token, "token", "", "Security token (list uploads)")
	f.StringVar(&creds.AccName, "account", "", "Account name (signup and opt-out)")
	f.StringVar(&creds.UserName, "user-name", "", "One-to-one user name")
	f.StringVar(&creds.Password, "password", "", "One-to-one password")
	f.StringVar(&creds.ResponseType, "response-type", "", "Default list upload response type")
	f.StringVar(&creds.ResponseURI, "response-uri", "", "Default list upload response URI")
	f.BoolVar(&passwordStdin, "password-stdin", false, "Read the one-to-one password from stdin")
	f.BoolVar(&tokenStdin, "token-stdin", false, "Read the security token from stdin")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active credentials",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := flags.Profile
			if profile == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				profile = current
			}
			creds, err := config.LoadCredentials(profile)
			configured := err == nil
			if err != nil && !errors.Is(err, config.ErrNotConfigured) {
				return err
			}
			redacted := creds.Redacted()

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"profile":     profile,
					"configured":  configured,
					"credentials": redacted,
				})
			}

			out := iocontext.GetIO(cmd.Context()).Out
			if !configured {
				_, _ = fmt.Fprintf(out, "Profile %q is not configured. Run: p360 auth login\n", profile)
				return nil
			}
			f := newFormatter(cmd)
			f.Row("Profile:", profile)
			for _, row := range [][2]string{
				{"Profile name:", redacted.ProfileName},
				{"Token:", redacted.Token},
				{"Account:", redacted.AccName},
				{"User name:", redacted.UserName},
				{"Password:", redacted.Password},
				{"Response type:", redacted.ResponseType},
				{"Response URI:", redacted.ResponseURI},
			} {
				f.Row(row[0], valueOrDash(row[1]))
			}
			return f.EndTable()
		}),
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete a stored profile",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := flags.Profile
			if profile == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				profile = current
			}
			if err := config.DeleteProfile(profile); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profile": profile, "deleted": true})
			}
			_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).Out, "Deleted profile %q\n", profile)
			return nil
		}),
	}
}

func newAuthProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, err := config.CurrentProfile()
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"current": current, "profiles": profiles})
			}
			f := newFormatter(cmd)
			if len(profiles) == 0 {
				f.Empty("No profiles stored. Run: p360 auth login")
				return nil
			}
			f.StartTable("PROFILE", "CURRENT")
			for _, p := range profiles {
				marker := ""
				if p == current {
					marker = "*"
				}
				f.Row(p, marker)
			}
			return f.EndTable()
		}),
	}
}

func newAuthUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use PROFILE",
		Short: "Switch the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			if !slices.Contains(profiles, name) {
				msg := fmt.Sprintf("profile %q not found", name)
				if suggestion := suggestCommand(name, profiles); suggestion != "" {
					msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
				}
				return errors.New(msg)
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"current": name})
			}
			_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).Out, "Switched to profile %q\n", name)
			return nil
		}),
	}
}

func profileOrDefault() string {
	if p := strings.TrimSpace(flags.Profile); p != "" {
		return p
	}
	return "default"
}

// mergeCredentials overlays the non-empty fields of update onto base.
func mergeCredentials(base, update config.Credentials) config.Credentials {
	for _, pair := range []struct {
		dst *string
		src string
	}{
		{&base.ProfileName, update.ProfileName},
		{&base.Token, update.Token},
		{&base.AccName, update.AccName},
		{&base.UserName, update.UserName},
		{&base.Password, update.Password},
		{&base.ResponseType, update.ResponseType},
		{&base.ResponseURI, update.ResponseURI},
	} {
		if strings.TrimSpace(pair.src) != "" {
			*pair.dst = pair.src
		}
	}
	return base
}

func readSecret(in io.Reader) (string, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", fmt.Errorf("no secret on stdin")
	}
	return secret, nil
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
