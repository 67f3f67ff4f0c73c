// Package decl loads table declarations from YAML or CUE files.
//
// A declaration file lists tables with their columns and optional CREATE
// TABLE statement. YAML:
//
//	tables:
//	  - name: users
//	    columns: [id, name, age]
//	    schema: CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INT);
//
// CUE (tables keyed by name, in declaration order):
//
//	tables: users: {
//		columns: ["id", "name", "age"]
//		schema:  "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INT);"
//	}
package decl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fundb/internal/queryir"
	"github.com/roach88/fundb/internal/schema"
	"github.com/roach88/fundb/internal/table"
)

// Format identifies a declaration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// File is a parsed declaration file.
type File struct {
	Tables []Declaration `yaml:"tables" json:"tables" validate:"required,min=1,dive"`
}

// Declaration describes one table.
type Declaration struct {
	Name    string   `yaml:"name" json:"name" validate:"required,ident"`
	Columns []string `yaml:"columns" json:"columns" validate:"dive,required,ident"`
	Schema  string   `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported declaration file %q: want .yaml, .yml or .cue", path)
	}
}

// Load reads, parses and validates the declaration file at path.
func Load(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration file: %w", err)
	}

	return Parse(data, format, path)
}

// Parse parses and validates declaration data. filename is only used in
// error positions.
func Parse(data []byte, format Format, filename string) (*File, error) {
	var (
		f   *File
		err error
	)
	switch format {
	case FormatYAML:
		f, err = parseYAML(data)
	case FormatCUE:
		f, err = parseCUE(data, filename)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	f.normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// parseYAML decodes with strict field checking (catches typos like
// "column:" vs "columns:").
func parseYAML(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &f, nil
}

func parseCUE(data []byte, filename string) (*File, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", err)
	}

	tablesVal := value.LookupPath(cue.ParsePath("tables"))
	if !tablesVal.Exists() {
		return nil, fmt.Errorf("failed to parse CUE: missing tables")
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating tables: %w", err)
	}

	f := &File{}
	for iter.Next() {
		var d Declaration
		if err := iter.Value().Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding table %s: %w", iter.Label(), err)
		}
		if d.Name == "" {
			d.Name = iter.Label()
		}
		f.Tables = append(f.Tables, d)
	}
	return f, nil
}

// normalize puts every name in NFC so visually identical names compare equal.
func (f *File) normalize() {
	for i := range f.Tables {
		d := &f.Tables[i]
		d.Name = norm.NFC.String(strings.TrimSpace(d.Name))
		for j, c := range d.Columns {
			d.Columns[j] = norm.NFC.String(strings.TrimSpace(c))
		}
	}
}

// Validate checks struct constraints, duplicate names and every schema.
// All problems are reported together.
func (f *File) Validate() error {
	var problems []string

	if err := newValidator().Struct(f); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	seen := make(map[string]bool, len(f.Tables))
	for _, d := range f.Tables {
		key := strings.ToLower(d.Name)
		if d.Name != "" && seen[key] {
			problems = append(problems, fmt.Sprintf("duplicate table %q", d.Name))
		}
		seen[key] = true

		if d.Schema == "" {
			continue
		}
		for _, v := range schema.Validate(d.Name, d.Schema) {
			problems = append(problems, fmt.Sprintf("table %q: %s", d.Name, v))
		}
	}

	if len(problems) > 0 {
		return &Error{Problems: problems}
	}
	return nil
}

// Build turns the declarations into tables, in file order.
func (f *File) Build() ([]*table.Table, error) {
	tables := make([]*table.Table, 0, len(f.Tables))
	for _, d := range f.Tables {
		var def *schema.Definition
		if d.Schema != "" {
			var err error
			def, err = schema.New(d.Name, d.Schema)
			if err != nil {
				return nil, err
			}
		}
		t, err := table.New(d.Name, def, d.Columns...)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Error lists every problem found in a declaration file.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "invalid declarations: " + strings.Join(e.Problems, "; ")
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return queryir.IsIdentifier(fl.Field().String())
	})
	return v
}
