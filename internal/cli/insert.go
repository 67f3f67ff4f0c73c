package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InsertResult reports an inserted row.
type InsertResult struct {
	Table  string `json:"table"`
	Values []any  `json:"values"`
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert <table> <value...>",
		Short: "Insert one row into a declared table",
		Long: `Insert one row into a declared table and commit.

Values are positional and must match the declared columns. Each value is
read as a JSON scalar when possible (42, 1.5, "42", true, null) and as a
plain string otherwise.

Example:
  fundb insert --db ./app.db --tables ./tables.yaml users 1 alice 30`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runInsert(opts *RootOptions, name string, raw []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	db, _, err := openDatabase(opts, cmd, true)
	if err != nil {
		return formatter.Fail(err)
	}
	defer db.Close()

	t, err := lookupTable(db, name)
	if err != nil {
		return formatter.Fail(err)
	}

	values := make([]any, len(raw))
	for i, s := range raw {
		values[i] = parseValue(s)
	}

	if err := db.Insert(commandContext(cmd), t, values...); err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(
		InsertResult{Table: t.Name(), Values: values},
		fmt.Sprintf("✓ Inserted 1 row into %s", t.Name()),
	)
}
