package cmd

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pure360/pure360-cli/internal/api"
)

// headerColumn is one entry of the derived header map.
type headerColumn struct {
	Field  string `json:"field"`
	Column int    `json:"column"`
}

func newHeadersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "headers FILE",
		Short: "Show the header map a list upload would send",
		Long: strings.TrimSpace(`
Read the first line of a CSV file and print the field/column map that a
list upload registers with its transaction. Nothing is sent.
`),
		Example: strings.TrimSpace(`
  p360 headers contacts.csv
  p360 headers contacts.csv --json
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			headers, err := api.ReadHeaderMap(args[0])
			if err != nil {
				return err
			}

			columns := make([]headerColumn, 0, len(headers))
			for field, col := range headers {
				columns = append(columns, headerColumn{Field: field, Column: col})
			}
			sort.Slice(columns, func(i, j int) bool {
				if columns[i].Column != columns[j].Column {
					return columns[i].Column < columns[j].Column
				}
				return columns[i].Field < columns[j].Field
			})

			if isJSON(cmd) {
				_, hasEmail := headers.EmailColumn()
				return printJSON(cmd, map[string]any{
					"file":      args[0],
					"has_email": hasEmail,
					"fields":    headers.Fields(),
					"columns":   columns,
				})
			}

			f := newFormatter(cmd)
			if len(columns) == 0 {
				f.Empty("No columns found")
				return nil
			}
			f.StartTable("COLUMN", "FIELD")
			for _, c := range columns {
				f.Row(strconv.Itoa(c.Column), c.Field)
			}
			if err := f.EndTable(); err != nil {
				return err
			}
			if _, ok := headers.EmailColumn(); !ok {
				f.Empty("Warning: no email column found")
			}
			return nil
		}),
	}
}
