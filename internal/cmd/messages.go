package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pure360/pure360-cli/internal/api"
	"github.com/pure360/pure360-cli/internal/dryrun"
	"github.com/pure360/pure360-cli/internal/iocontext"
	"github.com/pure360/pure360-cli/internal/outfmt"
	"github.com/pure360/pure360-cli/internal/schedule"
	"github.com/pure360/pure360-cli/internal/validation"
)

// now is replaced in tests.
var now = time.Now

func newMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "message",
		Aliases: []string{"messages", "msg"},
		Short:   "Send one-to-one email and SMS messages",
	}
	cmd.AddCommand(newMessageSendCmd())
	return cmd
}

type messageOptions struct {
	contentType   string
	template      string
	subject       string
	html          string
	plain         string
	sms           string
	trackHTML     bool
	trackPlain    bool
	params        []string
	deliverAt     string
	plainResponse bool
	userName      string
	password      string
}

func newMessageSendCmd() *cobra.Command {
	var opts messageOptions

	cmd := &cobra.Command{
		Use:   "send RECIPIENT",
		Short: "Send a one-to-one message",
		Long: strings.TrimSpace(`
Send a single EMAIL or SMS message.

Reference a message stored on the platform with --template, or supply the
content inline: an EMAIL needs --subject, --html and --plain, an SMS needs
--sms. Bodies given as @path are read from a file, @- reads stdin.

--param passes any other one-to-one field (e.g. personalisation values).
--deliver-at accepts "30m", "in 2h", "tomorrow", "next mon", "2026-01-27 10:30",
dd/mm/yyyy HH:mm:ss or RFC3339; the default is now.
`),
		Example: strings.TrimSpace(`
  p360 message send jane@example.com --type email --template welcome
  p360 message send jane@example.com --type email --subject Hi --html @body.html --plain @body.txt
  p360 message send +447700900123 --type sms --sms "Your code is 1234" --deliver-at "in 10m"
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			creds, err := loadCredentials()
			if err != nil {
				return err
			}
			req, err := buildMessageRequest(cmd, opts, args[0], creds.UserName, creds.Password)
			if err != nil {
				return err
			}
			if err := requireCredentials("one-to-one send needs a user name and password", req.UserName, req.Password); err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if dryrun.IsEnabled(cmd.Context()) {
				payload, err := api.BuildMessageFields(req, now())
				if err != nil {
					return err
				}
				preview := dryrun.NewPreview(fmt.Sprintf("send %s to %s", req.ContentType, strings.TrimSpace(req.Recipient))).
					Add(client.Endpoints.OneToOne, payload, "")
				_, err = maybeDryRun(cmd, preview)
				return err
			}

			body, err := client.Send(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResponse(cmd, outfmt.NewResponse("message send", strings.TrimSpace(req.Recipient), body))
		}),
	}

	f := cmd.Flags()
	f.StringVarP(&opts.contentType, "type", "t", "", "Message type: EMAIL|SMS (required)")
	f.StringVar(&opts.template, "template", "", "Name of a stored message (message_messageName)")
	f.StringVar(&opts.subject, "subject", "", "Email subject")
	f.StringVar(&opts.html, "html", "", "Email HTML body (or @path)")
	f.StringVar(&opts.plain, "plain", "", "Email plain-text body (or @path)")
	f.StringVar(&opts.sms, "sms", "", "SMS body (or @path)")
	f.BoolVar(&opts.trackHTML, "track-html", true, "Track HTML opens and clicks")
	f.BoolVar(&opts.trackPlain, "track-plain", true, "Track plain-text clicks")
	f.StringArrayVarP(&opts.params, "param", "p", nil, "Extra one-to-one field as key=value (repeatable)")
	f.StringVar(&opts.deliverAt, "deliver-at", "", "Delivery time (default now)")
	f.BoolVar(&opts.plainResponse, "plain-response", false, "Ask for a plain-text response instead of JSON")
	f.StringVar(&opts.userName, "user-name", "", "One-to-one user name (default from credentials)")
	f.StringVar(&opts.password, "password", "", "One-to-one password (default from credentials)")
	flagAlias(f, "deliver-at", "at")
	_ = cmd.MarkFlagRequired("type")
	registerStaticCompletions(cmd, "type", []string{"EMAIL", "SMS"})

	return cmd
}

// buildMessageRequest turns flags into a request; content validation is left
// to the api package.
func buildMessageRequest(cmd *cobra.Command, opts messageOptions, recipient, userName, password string) (api.MessageRequest, error) {
	ct, err := api.ParseContentType(opts.contentType)
	if err != nil {
		return api.MessageRequest{}, err
	}

	params, err := parseKeyValues("param", opts.params)
	if err != nil {
		return api.MessageRequest{}, err
	}
	if params == nil {
		params = map[string]string{}
	}

	in := iocontext.GetIO(cmd.Context()).In
	set := func(field, value string) error {
		if value == "" {
			return nil
		}
		resolved, err := readValueArg(value, in)
		if err != nil {
			return err
		}
		if err := validation.ValidateMessageContent(field, resolved); err != nil {
			return err
		}
		params[field] = resolved
		return nil
	}

	if opts.template != "" {
		if err := validation.ValidateName("template", opts.template); err != nil {
			return api.MessageRequest{}, err
		}
		params[api.FieldMessageName] = opts.template
	}
	switch ct {
	case api.ContentTypeEmail:
		for field, value := range map[string]string{
			api.FieldSubject:   opts.subject,
			api.FieldBodyHTML:  opts.html,
			api.FieldBodyPlain: opts.plain,
		} {
			if err := set(field, value); err != nil {
				return api.MessageRequest{}, err
			}
		}
		if opts.template == "" || cmd.Flags().Changed("track-html") {
			params[api.FieldTrackHTMLInd] = yesNo(opts.trackHTML)
		}
		if opts.template == "" || cmd.Flags().Changed("track-plain") {
			params[api.FieldTrackPlainInd] = yesNo(opts.trackPlain)
		}
	case api.ContentTypeSMS:
		if opts.subject != "" || opts.html != "" || opts.plain != "" {
			return api.MessageRequest{}, fmt.Errorf("--subject, --html and --plain are only valid with --type EMAIL")
		}
		if err := set(api.FieldBodySMS, opts.sms); err != nil {
			return api.MessageRequest{}, err
		}
	}
	if ct == api.ContentTypeEmail && opts.sms != "" {
		return api.MessageRequest{}, fmt.Errorf("--sms is only valid with --type SMS")
	}

	req := api.MessageRequest{
		UserName:      firstNonEmpty(opts.userName, userName),
		Password:      firstNonEmpty(opts.password, password),
		ContentType:   ct,
		Recipient:     recipient,
		Params:        params,
		PlainResponse: opts.plainResponse,
	}
	if opts.deliverAt != "" {
		at, err := schedule.ParseDeliveryTime(opts.deliverAt, now())
		if err != nil {
			return api.MessageRequest{}, fmt.Errorf("invalid --deliver-at: %w", err)
		}
		req.DeliveryTime = api.FormatDeliveryTime(at)
	}
	return req, nil
}

// readValueArg resolves @path and @- values.
func readValueArg(value string, stdin io.Reader) (string, error) {
	path, ok := strings.CutPrefix(value, "@")
	if !ok {
		return value, nil
	}
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &api.FileReadError{Path: path, Err: err}
	}
	return string(data), nil
}

func yesNo(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}

func registerStaticCompletions(cmd *cobra.Command, flagName string, values []string) {
	_ = cmd.RegisterFlagCompletionFunc(flagName, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
}
