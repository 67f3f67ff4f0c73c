package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	Where []string // column=value
}

// SelectResult holds the rows read from a table.
type SelectResult struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows"`
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <table> [column...]",
		Short: "Read rows from a declared table",
		Long: `Read rows from a declared table.

With no columns every column is returned. Each --where column=value keeps
only rows where column equals value; several are combined with AND.

Example:
  fundb select --db ./app.db --tables ./tables.yaml users name --where age=30`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "keep rows where column=value (repeatable)")

	return cmd
}

func runSelect(opts *SelectOptions, name string, columns []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	filters := make(map[string]any, len(opts.Where))
	for _, s := range opts.Where {
		column, value, err := parseAssignment("where", s)
		if err != nil {
			return formatter.Fail(err)
		}
		filters[column] = value
	}

	db, _, err := openDatabase(opts.RootOptions, cmd, true)
	if err != nil {
		return formatter.Fail(err)
	}
	defer db.Close()

	t, err := lookupTable(db, name)
	if err != nil {
		return formatter.Fail(err)
	}

	rows, err := db.Select(commandContext(cmd), t, columns, filters)
	if err != nil {
		return formatter.Fail(err)
	}

	header := columns
	if len(header) == 0 {
		header = t.Columns()
	}
	result := SelectResult{Table: t.Name(), Columns: header, Rows: make([][]any, len(rows))}
	for i, r := range rows {
		result.Rows[i] = r
	}
	formatter.VerboseLog("%d row(s) from %s", len(rows), t.Name())

	text := fmt.Sprintf("(no rows in %s)", t.Name())
	if len(rows) > 0 {
		text = renderRows(header, result.Rows)
	}
	return formatter.Success(result, text)
}
