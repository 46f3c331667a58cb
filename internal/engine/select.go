package engine

import (
	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/errors"
	"github.com/leengari/recordstore/internal/index"
)

// FindPositions resolves field/value/partialMatch to record positions,
// ascending and within [0, Count()).
//
//   - field == AnyField: union over every declared column
//   - field is the primary key and !partialMatch: primary-key lookup
//   - partialMatch with a Text value: token substring match
//   - otherwise: exact field-value lookup
//
// A value whose type differs from the column's simply matches nothing.
func (db *Database) FindPositions(field string, val data.Value, partialMatch bool) ([]int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.findPositionsUnsafe(field, val, partialMatch)
}

// Search returns independent copies of the matching records in position order.
func (db *Database) Search(field string, val data.Value, partialMatch bool) ([]data.Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	positions, err := db.findPositionsUnsafe(field, val, partialMatch)
	if err != nil {
		return nil, err
	}

	result := make([]data.Record, 0, len(positions))
	for _, pos := range positions {
		result = append(result, db.records[pos].Copy())
	}
	return result, nil
}

// Get returns a copy of the record holding the given primary-key value.
func (db *Database) Get(key data.Value) (data.Record, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.pkIndex == nil {
		return nil, false
	}
	pos, found := db.pkIndex.Lookup(key)
	if !found || pos < 0 || pos >= len(db.records) {
		return nil, false
	}
	return db.records[pos].Copy(), true
}

func (db *Database) findPositionsUnsafe(field string, val data.Value, partialMatch bool) ([]int, error) {
	if field == AnyField {
		union := index.NewPositionSet()
		for _, col := range db.schema.Columns {
			for _, pos := range db.matchColumnUnsafe(col.Name, val, partialMatch) {
				union.Add(pos)
			}
		}
		return union.Positions(), nil
	}

	if !db.schema.HasColumn(field) {
		return nil, &errors.UnknownFieldError{Field: field}
	}
	return db.matchColumnUnsafe(field, val, partialMatch), nil
}

func (db *Database) matchColumnUnsafe(field string, val data.Value, partialMatch bool) []int {
	limit := len(db.records)

	if db.pkIndex != nil && field == db.pkIndex.Column() && !partialMatch {
		pos, found := db.pkIndex.Lookup(val)
		if !found || pos < 0 || pos >= limit {
			return nil
		}
		return []int{pos}
	}

	if text, ok := val.AsText(); ok && partialMatch {
		return db.textIndex.Match(field, text, limit)
	}

	return db.fieldIndex.Lookup(field, val, limit)
}
