package data

import (
	"cmp"
	"strconv"

	"github.com/leengari/recordstore/internal/domain/schema"
)

// Value is a closed variant over the four column types. It is comparable, so
// it can be used directly as an index key; values of different types never
// compare equal (Integer(3) != Float(3)).
//
// The zero Value carries no type and stands for "no value".
type Value struct {
	typ     schema.ColumnType
	text    string
	integer int64
	float   float64
	boolean bool
}

func Text(s string) Value {
	return Value{typ: schema.ColumnTypeText, text: s}
}

func Integer(i int64) Value {
	return Value{typ: schema.ColumnTypeInteger, integer: i}
}

func Float(f float64) Value {
	return Value{typ: schema.ColumnTypeFloat, float: f}
}

func Boolean(b bool) Value {
	return Value{typ: schema.ColumnTypeBoolean, boolean: b}
}

// Type returns the column type this value belongs to, or "" for the zero Value.
func (v Value) Type() schema.ColumnType {
	return v.typ
}

func (v Value) IsZero() bool {
	return v.typ == ""
}

func (v Value) AsText() (string, bool) {
	return v.text, v.typ == schema.ColumnTypeText
}

func (v Value) AsInteger() (int64, bool) {
	return v.integer, v.typ == schema.ColumnTypeInteger
}

func (v Value) AsFloat() (float64, bool) {
	return v.float, v.typ == schema.ColumnTypeFloat
}

func (v Value) AsBoolean() (bool, bool) {
	return v.boolean, v.typ == schema.ColumnTypeBoolean
}

// Interface unwraps v into its natural Go representation
// (string, int64, float64, bool) or nil for the zero Value.
func (v Value) Interface() any {
	switch v.typ {
	case schema.ColumnTypeText:
		return v.text
	case schema.ColumnTypeInteger:
		return v.integer
	case schema.ColumnTypeFloat:
		return v.float
	case schema.ColumnTypeBoolean:
		return v.boolean
	}
	return nil
}

func (v Value) String() string {
	switch v.typ {
	case schema.ColumnTypeText:
		return v.text
	case schema.ColumnTypeInteger:
		return strconv.FormatInt(v.integer, 10)
	case schema.ColumnTypeFloat:
		return strconv.FormatFloat(v.float, 'g', -1, 64)
	case schema.ColumnTypeBoolean:
		return strconv.FormatBool(v.boolean)
	}
	return ""
}

// Compare orders two values of the same type. Values of different types
// compare as equal, which keeps a stable sort from moving them.
func Compare(a, b Value) int {
	if a.typ != b.typ {
		return 0
	}
	switch a.typ {
	case schema.ColumnTypeText:
		return cmp.Compare(a.text, b.text)
	case schema.ColumnTypeInteger:
		return cmp.Compare(a.integer, b.integer)
	case schema.ColumnTypeFloat:
		return cmp.Compare(a.float, b.float)
	case schema.ColumnTypeBoolean:
		switch {
		case a.boolean == b.boolean:
			return 0
		case !a.boolean:
			return -1
		default:
			return 1
		}
	}
	return 0
}
