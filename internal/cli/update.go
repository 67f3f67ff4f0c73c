package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fundb/internal/table"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Match  []string // column=value
	Change []string // column=old=new
}

// UpdateResult reports how many rows an update touched.
type UpdateResult struct {
	Table        string `json:"table"`
	RowsAffected int64  `json:"rows_affected"`
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <table>",
		Short: "Update rows of a declared table",
		Long: `Update rows of a declared table and commit.

Each --change column=old=new sets column to new where it currently equals
old. Each --match column=value further restricts the rows to those where
column equals value. At least one --change is required.

Example:
  fundb update --db ./app.db --tables ./tables.yaml users \
    --match name=alice --change age=30=31`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Match, "match", nil, "restrict rows to column=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Change, "change", nil, "set column=old=new (repeatable)")

	return cmd
}

func runUpdate(opts *UpdateOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	entries, err := opts.entries()
	if err != nil {
		return formatter.Fail(err)
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

	for _, e := range entries {
		formatter.VerboseLog("entry: %s", e)
	}

	n, err := db.Update(commandContext(cmd), t, entries...)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(
		UpdateResult{Table: t.Name(), RowsAffected: n},
		fmt.Sprintf("✓ Updated %d row(s) in %s", n, t.Name()),
	)
}

// entries parses the flags, search entries first.
func (o *UpdateOptions) entries() ([]table.Entry, error) {
	entries := make([]table.Entry, 0, len(o.Match)+len(o.Change))
	for _, s := range o.Match {
		column, value, err := parseAssignment("match", s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, table.Match(column, value))
	}
	for _, s := range o.Change {
		e, err := parseChange(s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
