package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// TableInfo describes one declared table.
type TableInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Schema  string   `json:"schema,omitempty"`
}

// TablesResult lists declared tables and what the database holds.
type TablesResult struct {
	Declared []TableInfo `json:"declared"`
	Database []string    `json:"database"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List declared tables and the tables in the database",
		Long: `List the tables declared in --tables next to the tables present in --db.

Opening registers every declared table, so declared tables that carry a
CREATE TABLE statement and are missing from the database get created.

Example:
  fundb tables --db ./app.db --tables ./tables.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}

	return cmd
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	db, _, err := openDatabase(opts, cmd, true)
	if err != nil {
		return formatter.Fail(err)
	}
	defer db.Close()

	present, err := db.EngineTables(commandContext(cmd))
	if err != nil {
		return formatter.Fail(err)
	}

	result := TablesResult{Database: present}
	var b strings.Builder
	fmt.Fprintln(&b, "Declared:")
	for _, t := range db.Tables() {
		info := TableInfo{Name: t.Name(), Columns: t.Columns()}
		if t.HasSchema() {
			info.Schema = t.Schema().Statement()
		}
		result.Declared = append(result.Declared, info)
		fmt.Fprintf(&b, "  %s (%s)\n", t.Name(), strings.Join(t.Columns(), ", "))
	}
	if len(result.Declared) == 0 {
		fmt.Fprintln(&b, "  (none)")
	}

	fmt.Fprintln(&b, "Database:")
	for _, name := range present {
		fmt.Fprintf(&b, "  %s\n", name)
	}
	if len(present) == 0 {
		fmt.Fprint(&b, "  (none)")
	}

	return formatter.Success(result, strings.TrimRight(b.String(), "\n"))
}
