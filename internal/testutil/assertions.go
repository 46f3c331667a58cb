package testutil

import (
	"reflect"
	"testing"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/engine"
)

// AssertRecordCount checks if the result has the expected number of records
func AssertRecordCount(t *testing.T, actual, expected int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected %d records, got %d", context, expected, actual)
	}
}

// AssertNoError checks that an error is nil
func AssertNoError(t *testing.T, err error, context string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: expected no error, got: %v", context, err)
	}
}

// AssertError checks that an error is not nil
func AssertError(t *testing.T, err error, context string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected an error, got nil", context)
	}
}

// AssertConsistent checks that every index agrees with the records
func AssertConsistent(t *testing.T, db *engine.Database, context string) {
	t.Helper()
	if err := db.Verify(); err != nil {
		t.Errorf("%s: %v", context, err)
	}
}

// AssertExactLookups checks that every present value of every live record is
// found at its position by an exact search
func AssertExactLookups(t *testing.T, db *engine.Database, context string) {
	t.Helper()
	for pos, rec := range db.Records() {
		for field, val := range rec {
			positions, err := db.FindPositions(field, val, false)
			if err != nil {
				t.Errorf("%s: lookup %s=%v: %v", context, field, val, err)
				continue
			}
			if !containsPosition(positions, pos) {
				t.Errorf("%s: lookup %s=%v: position %d missing from %v", context, field, val, pos, positions)
			}
		}
	}
}

// Column extracts one column from records as plain values
func Column(records []data.Record, field string) []interface{} {
	out := make([]interface{}, len(records))
	for i, rec := range records {
		out[i] = rec[field].Interface()
	}
	return out
}

func containsPosition(positions []int, pos int) bool {
	for _, p := range positions {
		if p == pos {
			return true
		}
	}
	return false
}

// AssertSameRecords checks that two record lists hold the same values in the
// same order
func AssertSameRecords(t *testing.T, actual, expected []data.Record, context string) {
	t.Helper()
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("%s: records differ\n got: %v\nwant: %v", context, actual, expected)
	}
}
