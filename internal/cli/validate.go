package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Tables []string `json:"tables,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <decl-file>",
		Short: "Validate a table declaration file",
		Long: `Validate a YAML or CUE table declaration file without touching a database.

Checks names, duplicate tables and every CREATE TABLE statement, and
reports all problems at once.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	tables, err := loadTables(path)
	if err != nil {
		return formatter.Fail(err)
	}

	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name()
		formatter.VerboseLog("table %s: %d column(s), schema=%t", t.Name(), len(t.Columns()), t.HasSchema())
	}

	return formatter.Success(
		ValidationResult{Valid: true, Tables: names},
		fmt.Sprintf("✓ %d table(s) valid", len(tables)),
	)
}

