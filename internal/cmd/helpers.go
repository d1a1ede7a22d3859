package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pure360/pure360-cli/internal/api"
	"github.com/pure360/pure360-cli/internal/dryrun"
	"github.com/pure360/pure360-cli/internal/iocontext"
	"github.com/pure360/pure360-cli/internal/outfmt"
)

func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

func printJSON(cmd *cobra.Command, v any) error {
	ctx := cmd.Context()
	return outfmt.WriteJSONFiltered(iocontext.GetIO(ctx).Out, v, outfmt.GetQuery(ctx), outfmt.IsCompact(ctx))
}

// printJSONErr writes a structured error to stderr so stdout stays parseable.
func printJSONErr(cmd *cobra.Command, v any) error {
	ctx := cmd.Context()
	return outfmt.WriteJSON(iocontext.GetIO(ctx).ErrOut, v, outfmt.IsCompact(ctx))
}

func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
}

// printResponse writes a platform response: the JSON envelope in JSON mode,
// the raw body otherwise.
func printResponse(cmd *cobra.Command, resp outfmt.Response) error {
	if isJSON(cmd) {
		return printJSON(cmd, resp)
	}
	out := iocontext.GetIO(cmd.Context()).Out
	if resp.TransactionID != "" {
		_, _ = fmt.Fprintf(out, "Transaction %s: ", resp.TransactionID)
	}
	var body string
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		body = string(resp.Body)
	}
	_, _ = fmt.Fprintln(out, strings.TrimRight(body, "\r\n"))
	return nil
}

// maybeDryRun writes the preview and reports true when --dry-run is set.
func maybeDryRun(cmd *cobra.Command, preview *dryrun.Preview) (bool, error) {
	if !dryrun.IsEnabled(cmd.Context()) {
		return false, nil
	}
	if isJSON(cmd) {
		payload := map[string]any{
			"dry_run":   true,
			"operation": preview.Operation,
			"requests":  preview.Requests,
			"warnings":  preview.Warnings,
		}
		return true, printJSON(cmd, payload)
	}
	preview.Write(iocontext.GetIO(cmd.Context()).Out)
	return true, nil
}

// parseKeyValues parses repeated key=value flag values. Later keys win.
func parseKeyValues(flagName string, pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s %q: must be key=value", flagName, pair)
		}
		out[key] = value
	}
	return out, nil
}

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// aliasBridgeValue wraps a pflag.Value so that setting the alias also marks
// the canonical flag as Changed.
type aliasBridgeValue struct {
	pflag.Value
	canonical *pflag.Flag
}

func (v *aliasBridgeValue) Set(s string) error {
	if err := v.Value.Set(s); err != nil {
		return err
	}
	v.canonical.Changed = true
	return nil
}

// flagAlias registers a hidden alias sharing the canonical flag's value.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("flagAlias: flag %q not found", name))
	}
	a := *f
	a.Name = alias
	a.Shorthand = ""
	a.Usage = ""
	a.Hidden = true
	a.Value = &aliasBridgeValue{Value: f.Value, canonical: f}
	a.Annotations = map[string][]string{"alias-of": {name}}
	fs.AddFlag(&a)
}

// flagOrAliasChanged returns true if the named flag or any of its
// hidden aliases was explicitly set by the user.
func flagOrAliasChanged(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Changed(name) || cmd.InheritedFlags().Changed(name) {
		return true
	}
	aliasChanged := func(fs *pflag.FlagSet) bool {
		found := false
		fs.VisitAll(func(f *pflag.Flag) {
			if ann, ok := f.Annotations["alias-of"]; ok && len(ann) > 0 && ann[0] == name && f.Changed {
				found = true
			}
		})
		return found
	}
	return aliasChanged(cmd.Flags()) || aliasChanged(cmd.InheritedFlags())
}

// errAlreadyHandled is a sentinel error indicating the error was already printed to stderr.
// Commands using RunE return this to signal Cobra that an error occurred (for exit code)
// without Cobra printing it again (since SilenceErrors is true on root command).
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() []error {
	return []error{errAlreadyHandled, e.err}
}

// RunE wraps a command body: failures are printed once (structured JSON in
// JSON mode) and returned as handled errors carrying the exit code.
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		if isJSON(cmd) {
			_ = printJSONErr(cmd, api.NewStructuredError(err))
		} else {
			_, _ = fmt.Fprint(iocontext.GetIO(cmd.Context()).ErrOut, HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}
