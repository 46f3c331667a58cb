package schema

import (
	"strings"

	"github.com/leengari/recordstore/internal/domain/errors"
)

// AnyField is the reserved selector for "every column". No column may use it
// as a name, in any letter case.
const AnyField = "ANY_FIELD"

// Schema is the ordered column list of a database plus its optional primary
// key. Columns are only ever appended.
type Schema struct {
	Columns    []Column
	PrimaryKey string // empty when no primary key is declared
}

func New() *Schema {
	return &Schema{Columns: make([]Column, 0)}
}

// AddColumn appends a column. A primary key can be declared at most once.
func (s *Schema) AddColumn(name string, typ ColumnType, isPrimaryKey bool) error {
	if strings.TrimSpace(name) == "" {
		return &errors.InvalidColumnError{Column: name, Reason: "name must not be empty"}
	}
	if strings.EqualFold(name, AnyField) {
		return &errors.InvalidColumnError{Column: name, Reason: "name is reserved"}
	}
	if !typ.Valid() {
		return &errors.InvalidColumnError{Column: name, Reason: "unsupported type " + string(typ)}
	}
	if isPrimaryKey && s.PrimaryKey != "" {
		return &errors.DuplicatePrimaryKeyError{Column: name, Existing: s.PrimaryKey, Position: -1}
	}
	if s.HasColumn(name) {
		return &errors.DuplicateColumnError{Column: name}
	}

	s.Columns = append(s.Columns, Column{Name: name, Type: typ, PrimaryKey: isPrimaryKey})
	if isPrimaryKey {
		s.PrimaryKey = name
	}
	return nil
}

// Column returns the named column.
func (s *Schema) Column(name string) (Column, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

func (s *Schema) HasColumn(name string) bool {
	_, ok := s.Column(name)
	return ok
}

// GetPrimaryKeyColumn returns nil when no primary key is declared.
func (s *Schema) GetPrimaryKeyColumn() *Column {
	for i := range s.Columns {
		if s.Columns[i].PrimaryKey {
			return &s.Columns[i]
		}
	}
	return nil
}

func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

func (s *Schema) Copy() *Schema {
	cols := make([]Column, len(s.Columns))
	copy(cols, s.Columns)
	return &Schema{Columns: cols, PrimaryKey: s.PrimaryKey}
}
