package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pure360/pure360-cli/internal/config"
	"github.com/pure360/pure360-cli/internal/iocontext"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Inspect CLI settings",
		Long: strings.TrimSpace(`
Settings are merged from built-in defaults, the config file (--config,
PURE360_CONFIG or the per-user file) and PURE360_* environment variables,
e.g. PURE360_BASE_URL, PURE360_TIMEOUT or PURE360_ENDPOINTS_ONE_TO_ONE.
`),
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings and endpoints",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			effective := settings
			effective.Endpoints = settings.ResolvedEndpoints()
			effective.Timeout = flags.Timeout

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"source":      effective.Source,
					"base_url":    effective.BaseURL,
					"timeout":     effective.Timeout.String(),
					"output":      effective.Output,
					"log_format":  effective.LogFormat,
					"concurrency": effective.Concurrency,
					"endpoints":   effective.Endpoints,
				})
			}

			f := newFormatter(cmd)
			source := effective.Source
			if source == "" {
				source = "(defaults)"
			}
			for _, row := range [][2]string{
				{"config:", source},
				{"base_url:", effective.BaseURL},
				{"timeout:", effective.Timeout.String()},
				{"output:", effective.Output},
				{"log_format:", effective.LogFormat},
				{"concurrency:", fmt.Sprintf("%d", effective.Concurrency)},
				{"list_upload_meta:", effective.Endpoints.ListUploadMeta},
				{"list_upload_data:", effective.Endpoints.ListUploadData},
				{"list:", effective.Endpoints.List},
				{"one_to_one:", effective.Endpoints.OneToOne},
			} {
				f.Row(row[0], row[1])
			}
			return f.EndTable()
		}),
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the per-user config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(iocontext.GetIO(cmd.Context()).Out, config.DefaultConfigPath())
		},
	}
}
