package engine

import (
	"log/slog"
	"slices"
	"sort"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
	"github.com/leengari/recordstore/internal/domain/transaction"
)

// Remove deletes every record matched by FindPositions(field, val,
// partialMatch) and returns how many were removed.
//
// Surviving index entries are renumbered to p - |{removed r : r < p}|.
//
// Compaction: when a primary key is declared and either the removal was
// keyed on it or the key column is numeric, records are re-sorted by key and
// a numeric key is reassigned as 1, 2, 3, ... This renumbers keys of records
// that were not removed. It is long-standing behaviour that callers depend on;
// confirm intent before building on it.
func (db *Database) Remove(field string, val data.Value, partialMatch bool) (int, error) {
	m := transaction.NewMutation(transaction.OpRemove)

	db.mu.Lock()
	removed, compacted, err := db.removeUnsafe(field, val, partialMatch)
	db.mu.Unlock()

	db.notify(m, EventRemove, map[string]interface{}{
		"field":     field,
		"partial":   partialMatch,
		"removed":   removed,
		"compacted": compacted,
	}, err)
	return removed, err
}

func (db *Database) removeUnsafe(field string, val data.Value, partialMatch bool) (int, bool, error) {
	positions, err := db.findPositionsUnsafe(field, val, partialMatch)
	if err != nil {
		return 0, false, err
	}
	if len(positions) == 0 {
		return 0, false, nil // Nothing to delete
	}

	// positions is ascending; walk it backwards so earlier positions stay
	// valid while later records are cut out.
	for i := len(positions) - 1; i >= 0; i-- {
		pos := positions[i]
		db.unindexRecordUnsafe(db.records[pos], pos)
		db.records = slices.Delete(db.records, pos, pos+1)
	}

	db.fieldIndex.Renumber(positions)
	db.textIndex.Renumber(positions)
	if db.pkIndex != nil {
		db.pkIndex.Rebuild(db.records)
	}

	compacted := false
	if db.shouldCompactUnsafe(field) {
		compacted = db.compactPrimaryKeysUnsafe()
	}
	db.version++

	slog.Debug("records removed",
		slog.String("database", db.name),
		slog.String("field", field),
		slog.Int("removed", len(positions)),
		slog.Bool("compacted", compacted))

	return len(positions), compacted, nil
}

func (db *Database) shouldCompactUnsafe(field string) bool {
	pkCol := db.schema.GetPrimaryKeyColumn()
	return pkCol != nil && (field == pkCol.Name || pkCol.Type.IsNumeric())
}

// compactPrimaryKeysUnsafe sorts records by primary key and reassigns a
// numeric key as the sequence 1..n, then rebuilds every index. Text or
// boolean keys are left alone.
func (db *Database) compactPrimaryKeysUnsafe() bool {
	pkCol := db.schema.GetPrimaryKeyColumn()
	if pkCol == nil || !pkCol.Type.IsNumeric() {
		return false
	}

	sort.SliceStable(db.records, func(i, j int) bool {
		return data.Compare(db.records[i][pkCol.Name], db.records[j][pkCol.Name]) < 0
	})

	for i, rec := range db.records {
		if pkCol.Type == schema.ColumnTypeInteger {
			rec[pkCol.Name] = data.Integer(int64(i + 1))
		} else {
			rec[pkCol.Name] = data.Float(float64(i + 1))
		}
	}

	db.rebuildIndexesUnsafe()
	return true
}
