package queryir

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"time"
)

// identPattern matches identifiers that can be written into SQL unquoted.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationResult contains the problems found in a statement.
type ValidationResult struct {
	// Valid is true when the statement can be compiled and executed safely.
	Valid bool

	// Problems lists every issue found. Empty when Valid is true.
	Problems []string
}

// Validate checks that every identifier in the statement is a plain SQL
// identifier and every value can be bound as a SQLite parameter.
//
// Validate is a pure function with no side effects. It collects all
// problems rather than stopping at the first.
func Validate(stmt Statement) ValidationResult {
	v := &validator{
		problems: []string{},
	}
	v.validateStatement(stmt)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// IsIdentifier reports whether name can be used as a bare SQL identifier.
func IsIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

// IsBindable reports whether v can be passed to SQLite as a parameter.
func IsBindable(v any) bool {
	switch v.(type) {
	case nil, bool, string, []byte, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	case driver.Valuer:
		return true
	default:
		return false
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

// addProblem appends a problem message.
func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateStatement(s Statement) {
	if s == nil {
		v.addProblem("nil statement")
		return
	}

	switch stmt := s.(type) {
	case Insert:
		v.validateInsert(stmt)
	case *Insert:
		v.validateInsert(*stmt)
	case Update:
		v.validateUpdate(stmt)
	case *Update:
		v.validateUpdate(*stmt)
	case Select:
		v.validateSelect(stmt)
	case *Select:
		v.validateSelect(*stmt)
	default:
		v.addProblem("unknown statement type: %T", s)
	}
}

func (v *validator) validateTable(name string) {
	if name == "" {
		v.addProblem("table name is required")
		return
	}
	if !IsIdentifier(name) {
		v.addProblem("table name %q is not a valid identifier", name)
	}
}

func (v *validator) validateField(name string) {
	if !IsIdentifier(name) {
		v.addProblem("column name %q is not a valid identifier", name)
	}
}

func (v *validator) validateValue(field string, value any) {
	if !IsBindable(value) {
		v.addProblem("value of type %T for %q cannot be bound as a parameter", value, field)
	}
}

func (v *validator) validateInsert(ins Insert) {
	v.validateTable(ins.Into)
	if len(ins.Values) == 0 {
		v.addProblem("insert requires at least one value")
	}
	for i, val := range ins.Values {
		v.validateValue(fmt.Sprintf("values[%d]", i), val)
	}
}

func (v *validator) validateUpdate(upd Update) {
	v.validateTable(upd.Table)
	if len(upd.Set) == 0 {
		v.addProblem("update requires at least one assignment")
	}
	for _, a := range upd.Set {
		v.validateField(a.Field)
		v.validateValue(a.Field, a.Value)
	}
	v.validatePredicate(upd.Filter)
}

func (v *validator) validateSelect(sel Select) {
	v.validateTable(sel.From)
	for _, c := range sel.Columns {
		v.validateField(c)
	}
	v.validatePredicate(sel.Filter)
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return // nil predicates are valid (no filter)
	}

	switch pred := p.(type) {
	case Equals:
		v.validateField(pred.Field)
		v.validateValue(pred.Field, pred.Value)
	case *Equals:
		v.validateField(pred.Field)
		v.validateValue(pred.Field, pred.Value)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}
