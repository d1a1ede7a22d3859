package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pure360/pure360-cli/internal/api"
	"github.com/pure360/pure360-cli/internal/config"
	"github.com/pure360/pure360-cli/internal/debug"
	"github.com/pure360/pure360-cli/internal/dryrun"
	"github.com/pure360/pure360-cli/internal/iocontext"
	"github.com/pure360/pure360-cli/internal/outfmt"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output     string
	JSON       bool
	JQ         string
	Compact    bool
	Debug      bool
	DryRun     bool
	Timeout    time.Duration
	BaseURL    string
	ConfigPath string
	Profile    string
}

// flags holds the global command flags and settings the loaded config.
// Both are package-level state and MUST be reset at the start of every
// Execute() call; tests rely on that for isolation.
var (
	flags    = rootFlags{Output: "text", Timeout: api.DefaultTimeout}
	settings config.Settings
)

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	flags = rootFlags{Output: "text", Timeout: api.DefaultTimeout}
	settings = config.Settings{}

	ioStreams := iocontext.GetIO(ctx)

	root := &cobra.Command{
		Use:                "p360",
		Short:              "CLI for the Pure360 marketing API",
		Long:               "Upload contact lists, manage signups and opt-outs, and send one-to-one email and SMS through Pure360.",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // did-you-mean comes from enhanceUnknownError
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			loaded, err := config.Load(flags.ConfigPath)
			if err != nil {
				return err
			}
			if flags.BaseURL != "" {
				loaded = loaded.WithBaseURL(flags.BaseURL)
				if err := loaded.Validate(); err != nil {
					return fmt.Errorf("invalid --base-url: %w", err)
				}
			}
			settings = loaded

			if !flagOrAliasChanged(cmd, "output") && settings.Output != "" {
				flags.Output = settings.Output
			}
			if flags.JSON {
				if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			if flags.JQ != "" && flags.Output != "json" {
				if flagOrAliasChanged(cmd, "output") {
					return fmt.Errorf("--jq requires --output json (or --json)")
				}
				flags.Output = "json"
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			if flags.JQ != "" {
				ctx = outfmt.WithQuery(ctx, outfmt.NormalizeExpression(flags.JQ))
			}

			if !flagOrAliasChanged(cmd, "timeout") && settings.Timeout > 0 {
				flags.Timeout = settings.Timeout
			}
			if flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be >= 0")
			}

			ctx = iocontext.WithIO(ctx, ioStreams)

			debug.SetupLogger(flags.Debug, settings.LogFormat)
			ctx = debug.WithDebug(ctx, flags.Debug)

			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	root.SetIn(ioStreams.In)
	root.SetOut(ioStreams.Out)
	root.SetErr(ioStreams.ErrOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json (env PURE360_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVar(&flags.JQ, "jq", "", "JQ expression to filter JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Print the requests that would be sent without sending them")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "Base URL for every Pure360 interface script (overrides config)")
	pf.StringVar(&flags.ConfigPath, "config", "", "Config file (default $XDG_CONFIG_HOME/pure360-cli/config.yaml, env PURE360_CONFIG)")
	pf.StringVar(&flags.Profile, "profile", "", "Credential profile (env PURE360_PROFILE)")

	flagAlias(pf, "dry-run", "dr")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "output", "out")
	flagAlias(pf, "timeout", "to")
	flagAlias(pf, "debug", "dbg")

	root.AddCommand(newListCmd())
	root.AddCommand(newContactsCmd())
	root.AddCommand(newMessageCmd())
	root.AddCommand(newHeadersCmd())
	root.AddCommand(newAuthCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
// targetCmd is the command Cobra resolved before the error (may be root itself).
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			parent := root
			if targetCmd != nil {
				parent = targetCmd
			}
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		if unknown := extractFlag(msg); unknown != "" {
			seen := make(map[string]bool)
			var flagNames []string
			addFlags := func(fs *pflag.FlagSet) {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Hidden {
						return
					}
					name := "--" + f.Name
					if !seen[name] {
						seen[name] = true
						flagNames = append(flagNames, name)
					}
				})
			}
			helpCmd := "p360 --help"
			if targetCmd != nil {
				addFlags(targetCmd.Flags())
				addFlags(targetCmd.InheritedFlags())
				helpCmd = targetCmd.CommandPath() + " --help"
			} else {
				addFlags(root.PersistentFlags())
			}
			if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		// "unknown shorthand flag: 'a' in -a"
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		idx++
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimRight(rest, ".,;:!?\"'")
	if len(rest) < 2 || !strings.HasPrefix(rest, "-") {
		return ""
	}
	return rest
}
