package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fundb/internal/errs"
	"github.com/roach88/fundb/internal/table"
)

// CreateResult lists the tables that were created.
type CreateResult struct {
	Created []string `json:"created"`
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [table...]",
		Short: "Execute the CREATE TABLE statement of declared tables",
		Long: `Execute the CREATE TABLE statement of the named declared tables.

With no names, every declared table that carries a statement is created.
Naming a table without a statement fails with SCHEMA_NOT_REGISTERED and
nothing is created.

Example:
  fundb create --db ./app.db --tables ./tables.yaml users`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runCreate(opts *RootOptions, names []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	// Creation does not need registration; registering would already
	// create absent tables.
	db, declared, err := openDatabase(opts, cmd, false)
	if err != nil {
		return formatter.Fail(err)
	}
	defer db.Close()

	targets, err := selectTargets(declared, names)
	if err != nil {
		return formatter.Fail(err)
	}

	if err := db.Create(commandContext(cmd), targets...); err != nil {
		return formatter.Fail(err)
	}

	result := CreateResult{Created: make([]string, len(targets))}
	for i, t := range targets {
		result.Created[i] = t.Name()
	}
	text := "No tables to create"
	if len(targets) > 0 {
		text = fmt.Sprintf("✓ Created %s", strings.Join(result.Created, ", "))
	}
	return formatter.Success(result, text)
}

// selectTargets resolves names against declared tables. No names selects
// every declared table with a schema.
func selectTargets(declared []*table.Table, names []string) ([]*table.Table, error) {
	if len(names) == 0 {
		var out []*table.Table
		for _, t := range declared {
			if t.HasSchema() {
				out = append(out, t)
			}
		}
		return out, nil
	}

	out := make([]*table.Table, 0, len(names))
	for _, name := range names {
		var found *table.Table
		for _, t := range declared {
			if strings.EqualFold(t.Name(), name) {
				found = t
				break
			}
		}
		if found == nil {
			return nil, errs.NewTableNotFound(name, "table is not declared")
		}
		out = append(out, found)
	}
	return out, nil
}
