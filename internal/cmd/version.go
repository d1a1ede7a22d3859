package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pure360/pure360-cli/internal/iocontext"
	"github.com/pure360/pure360-cli/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

// newUpdateChecker is replaced in tests.
var newUpdateChecker = update.NewChecker

func newVersionCmd() *cobra.Command {
	var noCheck bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ioStreams := iocontext.GetIO(cmd.Context())

			var result *update.CheckResult
			if !noCheck {
				// Never fails: a failed check yields nil.
				result = newUpdateChecker().Check(cmd.Context(), version)
			}

			if isJSON(cmd) {
				payload := map[string]any{"version": version}
				if result != nil {
					payload["update"] = result
				}
				return printJSON(cmd, payload)
			}

			_, _ = fmt.Fprintf(ioStreams.Out, "pure360-cli version %s\n", version)
			if result != nil && result.UpdateAvailable {
				_, _ = fmt.Fprintf(ioStreams.ErrOut, "\nUpdate available: %s -> %s\n", result.CurrentVersion, result.LatestVersion)
				_, _ = fmt.Fprintf(ioStreams.ErrOut, "Download: %s\n", result.UpdateURL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCheck, "no-update-check", false, "Skip the release check")
	return cmd
}
