package errors

import (
	"fmt"
	"strings"
)

// All engine errors are local and recoverable: a call that returns one of
// these has left the record store and its indexes untouched.

// DuplicatePrimaryKeyError is returned when a second primary-key column is
// declared, or when a record would reuse a key value already held by another
// live record.
type DuplicatePrimaryKeyError struct {
	Column   string // key column (or the column being declared as key)
	Value    any    // offending key value, nil for schema-level violations
	Existing string // already-defined key column for schema-level violations
	Position int    // position of the record already holding Value (-1 if unknown)
}

func (e *DuplicatePrimaryKeyError) Error() string {
	if e.Existing != "" {
		return joinParts(
			fmt.Sprintf("cannot make %q a primary key", e.Column),
			fmt.Sprintf("primary key already defined on %q", e.Existing),
		)
	}
	parts := []string{
		fmt.Sprintf("duplicate primary key in %s", e.Column),
		fmt.Sprintf("value=%v", e.Value),
	}
	if e.Position >= 0 {
		parts = append(parts, fmt.Sprintf("held by record at position %d", e.Position))
	}
	return joinParts(parts...)
}

// MissingKeyValueError is returned when a record is inserted without a value
// for the declared primary key.
type MissingKeyValueError struct {
	Column string
}

func (e *MissingKeyValueError) Error() string {
	return joinParts(fmt.Sprintf("missing primary key value for %s", e.Column), "primary key value required")
}

// UnknownFieldError is returned when a record, patch or query names a column
// that the schema does not declare.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// TypeMismatchError is returned when a value does not match (and cannot be
// converted to) a column's declared type.
type TypeMismatchError struct {
	Column   string
	Value    any
	Expected string
	Reason   string
}

func (e *TypeMismatchError) Error() string {
	parts := []string{fmt.Sprintf("type mismatch in %s", e.Column)}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	parts = append(parts, fmt.Sprintf("expected %s", e.Expected))
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return joinParts(parts...)
}

// RecordNotFoundError is returned when an update or targeted lookup finds no
// matching record.
type RecordNotFoundError struct {
	Field string
	Value any
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("no record with %s=%v", e.Field, e.Value)
}

// NoPrimaryKeyError is returned by key-addressed operations on a schema
// without a primary key.
type NoPrimaryKeyError struct {
	Operation string
}

func (e *NoPrimaryKeyError) Error() string {
	return fmt.Sprintf("%s requires a primary key, none is defined", e.Operation)
}

// DuplicateColumnError is returned when a column name is declared twice.
type DuplicateColumnError struct {
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("column %q already exists", e.Column)
}

// InvalidColumnError is returned for malformed column declarations.
type InvalidColumnError struct {
	Column string
	Reason string
}

func (e *InvalidColumnError) Error() string {
	return joinParts(fmt.Sprintf("invalid column %q", e.Column), e.Reason)
}

func joinParts(parts ...string) string {
	return strings.Join(parts, " - ")
}
