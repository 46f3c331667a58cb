package schema

import (
	"fmt"
	"strings"
)

type ColumnType string

const (
	ColumnTypeText    ColumnType = "TEXT"
	ColumnTypeInteger ColumnType = "INTEGER"
	ColumnTypeFloat   ColumnType = "FLOAT"
	ColumnTypeBoolean ColumnType = "BOOLEAN"
)

// Valid reports whether t is one of the four supported column types.
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnTypeText, ColumnTypeInteger, ColumnTypeFloat, ColumnTypeBoolean:
		return true
	}
	return false
}

// IsNumeric reports whether values of t take part in primary-key compaction.
func (t ColumnType) IsNumeric() bool {
	return t == ColumnTypeInteger || t == ColumnTypeFloat
}

// ParseColumnType accepts the canonical names case-insensitively, plus the
// common aliases users type at the prompt.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TEXT", "STRING", "STR":
		return ColumnTypeText, nil
	case "INTEGER", "INT":
		return ColumnTypeInteger, nil
	case "FLOAT", "DOUBLE", "REAL":
		return ColumnTypeFloat, nil
	case "BOOLEAN", "BOOL":
		return ColumnTypeBoolean, nil
	}
	return "", fmt.Errorf("unknown column type %q", s)
}

type Column struct {
	Name       string     `json:"name" yaml:"name"`
	Type       ColumnType `json:"type" yaml:"type"`
	PrimaryKey bool       `json:"primary_key" yaml:"primary_key"`
}
