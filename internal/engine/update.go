package engine

import (
	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/errors"
	"github.com/leengari/recordstore/internal/domain/transaction"
)

// Update merges patch into the record holding key and reindexes it at the
// same position. Fields not named in patch are preserved. Patching the key
// column renames the key; the new value must not belong to another record.
func (db *Database) Update(key data.Value, patch data.Record) error {
	m := transaction.NewMutation(transaction.OpUpdate)

	db.mu.Lock()
	pos, err := db.updateUnsafe(key, patch)
	db.mu.Unlock()

	db.notify(m, EventUpdate, map[string]interface{}{
		"position": pos,
		"fields":   len(patch),
	}, err)
	return err
}

func (db *Database) updateUnsafe(key data.Value, patch data.Record) (int, error) {
	if db.pkIndex == nil {
		return -1, &errors.NoPrimaryKeyError{Operation: "update"}
	}
	pkCol := db.pkIndex.Column()

	pos, found := db.pkIndex.Lookup(key)
	if !found || pos < 0 || pos >= len(db.records) {
		return -1, &errors.RecordNotFoundError{Field: pkCol, Value: key.Interface()}
	}

	if err := db.validateRecord(patch); err != nil {
		return -1, err
	}

	// Renaming the key must not collide with another record
	if newKey, ok := patch[pkCol]; ok && newKey != key {
		if other, taken := db.pkIndex.Lookup(newKey); taken && other != pos {
			return -1, &errors.DuplicatePrimaryKeyError{
				Column:   pkCol,
				Value:    newKey.Interface(),
				Position: other,
			}
		}
	}

	// Remove old index entries, apply, add new index entries
	rec := db.records[pos]
	db.unindexRecordUnsafe(rec, pos)
	for field, val := range patch {
		rec[field] = val
	}
	db.indexRecordUnsafe(rec, pos)
	db.version++

	return pos, nil
}
