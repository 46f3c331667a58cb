package data

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leengari/recordstore/internal/domain/errors"
	"github.com/leengari/recordstore/internal/domain/schema"
)

// Convert turns a Go value into a Value of the column's type. Only the
// natural Go representations of the four types are accepted (plus the
// numeric shapes JSON decoding produces); everything else is a
// TypeMismatchError.
func Convert(col schema.Column, val any) (Value, error) {
	if v, ok := val.(Value); ok {
		if v.typ != col.Type {
			return Value{}, mismatch(col, v.Interface(), fmt.Sprintf("got %s value", v.typ))
		}
		return checkFloat(col, v)
	}

	switch col.Type {
	case schema.ColumnTypeText:
		if s, ok := val.(string); ok {
			return Text(s), nil
		}
	case schema.ColumnTypeInteger:
		if i, ok := normalizeToInt64(val); ok {
			return Integer(i), nil
		}
	case schema.ColumnTypeFloat:
		if f, ok := normalizeToFloat64(val); ok {
			return checkFloat(col, Float(f))
		}
	case schema.ColumnTypeBoolean:
		if b, ok := val.(bool); ok {
			return Boolean(b), nil
		}
	default:
		return Value{}, mismatch(col, val, "unknown column type")
	}
	return Value{}, mismatch(col, val, fmt.Sprintf("got %T", val))
}

// Parse converts user or CSV text into a Value of the column's type.
// Surrounding whitespace is ignored for non-text columns.
func Parse(col schema.Column, s string) (Value, error) {
	if col.Type == schema.ColumnTypeText {
		return Text(s), nil
	}

	trimmed := strings.TrimSpace(s)
	switch col.Type {
	case schema.ColumnTypeInteger:
		i, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return Value{}, mismatch(col, s, "not an integer")
		}
		return Integer(i), nil
	case schema.ColumnTypeFloat:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Value{}, mismatch(col, s, "not a number")
		}
		return checkFloat(col, Float(f))
	case schema.ColumnTypeBoolean:
		b, ok := ParseBool(trimmed)
		if !ok {
			return Value{}, mismatch(col, s, "expected true/false/1/0/yes/no/да/нет")
		}
		return Boolean(b), nil
	}
	return Value{}, mismatch(col, s, "unknown column type")
}

// ParseBool accepts the boolean spellings the import and prompt layers have
// always accepted.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "да":
		return true, true
	case "false", "0", "no", "нет":
		return false, true
	}
	return false, false
}

// NaN never equals itself, so it could be indexed but never found again.
// Infinities have no JSON encoding and would make every snapshot fail.
func checkFloat(col schema.Column, v Value) (Value, error) {
	if v.typ != schema.ColumnTypeFloat {
		return v, nil
	}
	if math.IsNaN(v.float) {
		return Value{}, mismatch(col, v.float, "NaN is not a storable value")
	}
	if math.IsInf(v.float, 0) {
		return Value{}, mismatch(col, v.float, "infinity is not a storable value")
	}
	return v, nil
}

func mismatch(col schema.Column, val any, reason string) *errors.TypeMismatchError {
	return &errors.TypeMismatchError{
		Column:   col.Name,
		Value:    val,
		Expected: string(col.Type),
		Reason:   reason,
	}
}

// normalizeToInt64 converts the integer shapes a caller or JSON decoder may
// hand us. Floats are accepted only when integral.
func normalizeToInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int64(v), true
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) {
			return int64(f), true
		}
	}
	return 0, false
}

func normalizeToFloat64(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}
