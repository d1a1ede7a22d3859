package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pure360/pure360-cli/internal/api"
	"github.com/pure360/pure360-cli/internal/dryrun"
	"github.com/pure360/pure360-cli/internal/outfmt"
	"github.com/pure360/pure360-cli/internal/validation"
)

func newContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact", "ct"},
		Short:   "Sign up and opt out recipients",
		Long: strings.TrimSpace(`
Subscribe or unsubscribe single recipients.

A recipient made of digits (with an optional leading + and separators) is
sent as a mobile number, anything else that looks like an address as an
email.
`),
	}
	cmd.AddCommand(newContactsSignupCmd())
	cmd.AddCommand(newContactsOptoutCmd())
	return cmd
}

func newContactsSignupCmd() *cobra.Command {
	var (
		listName    string
		account     string
		fields      []string
		doubleOptin bool
	)

	cmd := &cobra.Command{
		Use:   "signup RECIPIENT",
		Short: "Subscribe a recipient to a list",
		Example: strings.TrimSpace(`
  p360 contacts signup jane@example.com --list newsletter
  p360 contacts signup +447700900123 --list alerts --field firstName=Jane
  p360 contacts signup jane@example.com --list newsletter --double-optin
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateName("list", listName); err != nil {
				return err
			}
			custom, err := parseKeyValues("field", fields)
			if err != nil {
				return err
			}
			for key := range custom {
				if err := validation.ValidateName("field", key); err != nil {
					return err
				}
			}
			creds, err := loadCredentials()
			if err != nil {
				return err
			}
			req := api.SignupRequest{
				Account:      firstNonEmpty(account, creds.AccName),
				List:         listName,
				Recipient:    args[0],
				CustomFields: custom,
				DoubleOptin:  doubleOptin,
			}
			if err := requireCredentials("signup needs an account name", req.Account); err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if dryrun.IsEnabled(cmd.Context()) {
				payload, err := api.BuildSignupFields(req)
				if err != nil {
					return err
				}
				preview := dryrun.NewPreview(fmt.Sprintf("sign up %s to list %q", strings.TrimSpace(req.Recipient), req.List)).
					Add(client.Endpoints.List, payload, "")
				_, err = maybeDryRun(cmd, preview)
				return err
			}

			body, err := client.Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResponse(cmd, outfmt.NewResponse("contacts signup", strings.TrimSpace(req.Recipient), body))
		}),
	}

	cmd.Flags().StringVarP(&listName, "list", "l", "", "List name (required)")
	cmd.Flags().StringVar(&account, "account", "", "Account name (default from credentials)")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Custom field as key=value (repeatable)")
	cmd.Flags().BoolVar(&doubleOptin, "double-optin", false, "Ask the recipient to confirm the subscription")
	_ = cmd.MarkFlagRequired("list")

	return cmd
}

// optoutRow is one opt-out outcome in JSON output.
type optoutRow struct {
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	Body      any    `json:"body,omitempty"`
	Error     string `json:"error,omitempty"`
}

func newContactsOptoutCmd() *cobra.Command {
	var (
		account     string
		concurrency int
		progress    bool
	)

	cmd := &cobra.Command{
		Use:   "optout RECIPIENT...",
		Short: "Opt out one or more recipients",
		Example: strings.TrimSpace(`
  p360 contacts optout jane@example.com
  p360 contacts optout jane@example.com +447700900123 --concurrency 2
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			creds, err := loadCredentials()
			if err != nil {
				return err
			}
			accName := firstNonEmpty(account, creds.AccName)
			if err := requireCredentials("opt-out needs an account name", accName); err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if dryrun.IsEnabled(cmd.Context()) {
				preview := dryrun.NewPreview(fmt.Sprintf("opt out %d recipient(s)", len(args)))
				for _, recipient := range args {
					payload, err := api.BuildOptoutFields(accName, recipient)
					if err != nil {
						return err
					}
					preview.Add(client.Endpoints.List, payload, "")
				}
				_, err = maybeDryRun(cmd, preview)
				return err
			}

			if len(args) == 1 {
				body, err := client.Optout(cmd.Context(), accName, args[0])
				if err != nil {
					return err
				}
				return printResponse(cmd, outfmt.NewResponse("contacts optout", strings.TrimSpace(args[0]), body))
			}

			if !flagOrAliasChanged(cmd, "concurrency") && settings.Concurrency > 0 {
				concurrency = settings.Concurrency
			}
			results := runBulkOperation(cmd.Context(), args, int64(concurrency), progress, cmd.ErrOrStderr(),
				func(ctx context.Context, recipient string) (string, error) {
					return client.Optout(ctx, accName, recipient)
				})
			return writeOptoutResults(cmd, results)
		}),
	}

	cmd.Flags().StringVar(&account, "account", "", "Account name (default from credentials)")
	cmd.Flags().IntVar(&concurrency, "concurrency", DefaultConcurrency, "Max concurrent requests")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show progress on stderr")
	flagAlias(cmd.Flags(), "concurrency", "cc")

	return cmd
}

func writeOptoutResults(cmd *cobra.Command, results []BulkResult) error {
	success, failure := countResults(results)

	if isJSON(cmd) {
		rows := make([]optoutRow, 0, len(results))
		for _, r := range results {
			row := optoutRow{Recipient: strings.TrimSpace(r.Item), Success: r.Success}
			if r.Success {
				row.Body = outfmt.RawBody(r.Body)
			} else if r.Error != nil {
				row.Error = r.Error.Error()
			}
			rows = append(rows, row)
		}
		if err := printJSON(cmd, map[string]any{
			"operation": "contacts optout",
			"succeeded": success,
			"failed":    failure,
			"results":   rows,
		}); err != nil {
			return err
		}
	} else {
		f := newFormatter(cmd)
		f.StartTable("RECIPIENT", "STATUS", "DETAIL")
		for _, r := range results {
			status, detail := "ok", strings.TrimSpace(r.Body)
			if !r.Success {
				status, detail = "failed", r.Error.Error()
			}
			f.Row(strings.TrimSpace(r.Item), status, oneLine(detail))
		}
		if err := f.EndTable(); err != nil {
			return err
		}
	}

	if failure > 0 {
		return fmt.Errorf("%d of %d opt-outs failed", failure, len(results))
	}
	return nil
}

// oneLine collapses whitespace so a response body fits a table cell.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
