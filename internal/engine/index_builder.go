package engine

import (
	"log/slog"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/transaction"
	"github.com/leengari/recordstore/internal/index"
)

// RebuildAllIndexes discards all three indexes and re-derives them by
// replaying every record through the insert indexing routine.
func (db *Database) RebuildAllIndexes() {
	m := transaction.NewMutation(transaction.OpRebuild)

	db.mu.Lock()
	db.rebuildIndexesUnsafe()
	count := len(db.records)
	db.mu.Unlock()

	db.notify(m, EventRebuild, map[string]interface{}{"records": count}, nil)
}

// rebuildIndexesUnsafe rebuilds all indexes.
// IMPORTANT: Must be called while holding write lock!
func (db *Database) rebuildIndexesUnsafe() {
	db.resetIndexesUnsafe()
	for pos, rec := range db.records {
		db.indexRecordUnsafe(rec, pos)
	}

	slog.Debug("indexes rebuilt",
		slog.String("database", db.name),
		slog.Int("records", len(db.records)),
		slog.String("primary_key", db.schema.PrimaryKey))
}

func (db *Database) resetIndexesUnsafe() {
	db.pkIndex = nil
	if db.schema.PrimaryKey != "" {
		db.pkIndex = index.NewPrimaryKeyIndex(db.schema.PrimaryKey)
	}
	db.fieldIndex = index.NewFieldValueIndex()
	db.textIndex = index.NewTextTokenIndex()
}

// indexRecordUnsafe adds rec at pos to all three indexes.
func (db *Database) indexRecordUnsafe(rec data.Record, pos int) {
	if db.pkIndex != nil {
		if key, ok := rec[db.pkIndex.Column()]; ok && !key.IsZero() {
			db.pkIndex.Insert(key, pos)
		}
	}
	db.fieldIndex.IndexRecord(rec, pos, db.schema.Columns)
	db.textIndex.IndexRecord(rec, pos, db.schema.Columns)
}

// unindexRecordUnsafe removes rec at pos from all three indexes, using the
// values rec holds right now.
func (db *Database) unindexRecordUnsafe(rec data.Record, pos int) {
	if db.pkIndex != nil {
		if key, ok := rec[db.pkIndex.Column()]; ok {
			db.pkIndex.Remove(key)
		}
	}
	db.fieldIndex.UnindexRecord(rec, pos, db.schema.Columns)
	db.textIndex.UnindexRecord(rec, pos, db.schema.Columns)
}
