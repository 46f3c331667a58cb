package engine

import (
	"fmt"

	"github.com/leengari/recordstore/internal/index"
)

// Verify re-derives all three indexes from the records and reports the first
// index that disagrees with the live one. A nil result means every live
// position is indexed exactly where it should be and nothing stale remains.
func (db *Database) Verify() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var wantPK *index.PrimaryKeyIndex
	if db.schema.PrimaryKey != "" {
		wantPK = index.NewPrimaryKeyIndex(db.schema.PrimaryKey)
		wantPK.Rebuild(db.records)
	}
	wantField := index.NewFieldValueIndex()
	wantText := index.NewTextTokenIndex()
	for pos, rec := range db.records {
		wantField.IndexRecord(rec, pos, db.schema.Columns)
		wantText.IndexRecord(rec, pos, db.schema.Columns)
	}

	if !wantPK.Equal(db.pkIndex) {
		return fmt.Errorf("database %s: primary key index out of sync with records", db.name)
	}
	if !wantField.Equal(db.fieldIndex) {
		return fmt.Errorf("database %s: field value index out of sync with records", db.name)
	}
	if !wantText.Equal(db.textIndex) {
		return fmt.Errorf("database %s: text token index out of sync with records", db.name)
	}
	return nil
}
