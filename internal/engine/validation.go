package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/errors"
)

// validateRecord checks a record or patch against the schema:
// - every field must name a declared column
// - every value must carry exactly the column's type
// Fields are checked in name order so the reported error is deterministic.
// Must be called while holding a lock.
func (db *Database) validateRecord(rec data.Record) error {
	fields := make([]string, 0, len(rec))
	for field := range rec {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		col, ok := db.schema.Column(field)
		if !ok {
			return &errors.UnknownFieldError{Field: field}
		}

		val := rec[field]
		if val.IsZero() {
			return &errors.TypeMismatchError{
				Column:   field,
				Expected: string(col.Type),
				Reason:   "untyped value",
			}
		}
		if val.Type() != col.Type {
			return &errors.TypeMismatchError{
				Column:   field,
				Value:    val.Interface(),
				Expected: string(col.Type),
				Reason:   fmt.Sprintf("got %s", val.Type()),
			}
		}
		if f, ok := val.AsFloat(); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return &errors.TypeMismatchError{
				Column:   field,
				Value:    f,
				Expected: string(col.Type),
				Reason:   "non-finite float is not a storable value",
			}
		}
	}
	return nil
}
