package engine

import (
	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/errors"
	"github.com/leengari/recordstore/internal/domain/transaction"
)

// Insert appends a copy of rec at the tail and indexes it. With a primary key
// declared, the record must carry a key value not held by any live record.
// On error nothing is changed.
func (db *Database) Insert(rec data.Record) error {
	m := transaction.NewMutation(transaction.OpInsert)

	db.mu.Lock()
	pos, err := db.insertUnsafe(rec)
	db.mu.Unlock()

	db.notify(m, EventInsert, map[string]interface{}{"position": pos}, err)
	return err
}

func (db *Database) insertUnsafe(mutRec data.Record) (int, error) {
	// 1. Validate fields and types
	if err := db.validateRecord(mutRec); err != nil {
		return -1, err
	}

	// 2. Check primary key presence and uniqueness
	if db.pkIndex != nil {
		pkCol := db.pkIndex.Column()
		key, exists := mutRec[pkCol]
		if !exists {
			return -1, &errors.MissingKeyValueError{Column: pkCol}
		}
		if existing, found := db.pkIndex.Lookup(key); found {
			return -1, &errors.DuplicatePrimaryKeyError{
				Column:   pkCol,
				Value:    key.Interface(),
				Position: existing,
			}
		}
	}

	// 3. Everything passed → safe to append a private copy
	rec := mutRec.Copy()
	newPos := len(db.records)
	db.records = append(db.records, rec)

	// 4. Update all indexes
	db.indexRecordUnsafe(rec, newPos)
	db.version++

	return newPos, nil
}
