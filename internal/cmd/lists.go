package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pure360/pure360-cli/internal/api"
	"github.com/pure360/pure360-cli/internal/dryrun"
	"github.com/pure360/pure360-cli/internal/outfmt"
	"github.com/pure360/pure360-cli/internal/validation"
)

// pendingTransactionID stands in for the id the metadata call would return.
const pendingTransactionID = "<transactionId>"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"lists"},
		Short:   "Upload contact lists from CSV files",
		Long: strings.TrimSpace(`
Upload a CSV file to a Pure360 list.

Each upload registers a transaction with the file's header map and then
sends the file. The first line of the file names the columns; the first
column whose name contains "email" becomes the email column, every other
column is sent as COL_<name>. Preview the map with "p360 headers FILE".

The two steps are not atomic. When the file upload fails the transaction
stays registered on the platform without data; the error names its id.
`),
	}
	for _, mode := range []api.TransactionMode{api.TransactionCreate, api.TransactionReplace, api.TransactionAppend} {
		cmd.AddCommand(newListUploadCmd(mode))
	}
	return cmd
}

func newListUploadCmd(mode api.TransactionMode) *cobra.Command {
	var (
		listName     string
		profileName  string
		token        string
		responseType string
		responseURI  string
	)

	verb := strings.ToLower(string(mode))
	short := map[api.TransactionMode]string{
		api.TransactionCreate:  "Create a new list from a CSV file",
		api.TransactionReplace: "Replace the contents of a list with a CSV file",
		api.TransactionAppend:  "Append the rows of a CSV file to a list",
	}[mode]

	cmd := &cobra.Command{
		Use:   verb + " FILE",
		Short: short,
		Example: fmt.Sprintf(strings.TrimSpace(`
  p360 list %[1]s contacts.csv --list newsletter
  p360 list %[1]s contacts.csv --list newsletter --dry-run
  p360 list %[1]s contacts.csv --list newsletter --profile-name acme --token "$PURE360_TOKEN"
`), verb),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := validation.ValidateName("list", listName); err != nil {
				return err
			}
			creds, err := loadCredentials()
			if err != nil {
				return err
			}
			req := api.ListUploadRequest{
				ProfileName:  firstNonEmpty(profileName, creds.ProfileName),
				Token:        firstNonEmpty(token, creds.Token),
				ResponseType: firstNonEmpty(responseType, creds.ResponseType),
				ResponseURI:  firstNonEmpty(responseURI, creds.ResponseURI),
				ListName:     listName,
				File:         args[0],
			}
			if err := requireCredentials("list upload needs a profile name and token", req.ProfileName, req.Token); err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if dryrun.IsEnabled(ctx) {
				headers, err := api.ReadHeaderMap(req.File)
				if err != nil {
					return err
				}
				preview := dryrun.NewPreview(fmt.Sprintf("%s list %q from %s", verb, req.ListName, req.File)).
					Add(client.Endpoints.ListUploadMeta, api.BuildListMetadata(req, mode, headers), "").
					Add(client.Endpoints.ListUploadData, api.BuildListData(pendingTransactionID, req.ProfileName), req.File)
				if _, ok := headers.EmailColumn(); !ok {
					preview.Warn("%s has no email column", req.File)
				}
				_, err = maybeDryRun(cmd, preview)
				return err
			}

			result, err := client.UploadList(ctx, req, mode)
			if err != nil {
				return err
			}
			resp := outfmt.NewResponse("list "+verb, req.ListName, result.Body)
			resp.TransactionID = result.TransactionID
			return printResponse(cmd, resp)
		}),
	}

	cmd.Flags().StringVarP(&listName, "list", "l", "", "List name (required)")
	cmd.Flags().StringVar(&profileName, "profile-name", "", "Pure360 profile name (default from credentials)")
	cmd.Flags().StringVar(&token, "token", "", "Security token (default from credentials)")
	cmd.Flags().StringVar(&responseType, "response-type", "", "How the platform reports completion, e.g. EMAIL or NONE")
	cmd.Flags().StringVar(&responseURI, "response-uri", "", "Where the platform reports completion")
	_ = cmd.MarkFlagRequired("list")

	return cmd
}
