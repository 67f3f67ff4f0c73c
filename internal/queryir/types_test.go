package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatement_SealedTypeSwitch(t *testing.T) {
	stmts := []Statement{
		Insert{Into: "t", Values: []any{1}},
		Update{Table: "t", Set: []Assign{{Field: "a", Value: 1}}},
		Select{From: "t"},
	}

	var kinds []string
	for _, s := range stmts {
		switch s.(type) {
		case Insert:
			kinds = append(kinds, "insert")
		case Update:
			kinds = append(kinds, "update")
		case Select:
			kinds = append(kinds, "select")
		}
	}
	assert.Equal(t, []string{"insert", "update", "select"}, kinds)
}

func TestEqualsAll(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, EqualsAll(nil, nil))
	})

	t.Run("single field is a bare Equals", func(t *testing.T) {
		p := EqualsAll([]string{"a"}, []any{1})
		assert.Equal(t, Equals{Field: "a", Value: 1}, p)
	})

	t.Run("multiple fields are an And", func(t *testing.T) {
		p := EqualsAll([]string{"a", "b"}, []any{1, "x"})
		assert.Equal(t, And{Predicates: []Predicate{
			Equals{Field: "a", Value: 1},
			Equals{Field: "b", Value: "x"},
		}}, p)
	})
}
