package engine

import (
	"github.com/leengari/recordstore/internal/domain/schema"
	"github.com/leengari/recordstore/internal/domain/transaction"
)

// AddColumn appends a column to the schema. Declaring the primary key
// rebuilds every index from the current records, so it is correct even when
// data already exists.
func (db *Database) AddColumn(name string, typ schema.ColumnType, isPrimaryKey bool) error {
	m := transaction.NewMutation(transaction.OpAddColumn)

	db.mu.Lock()
	err := db.addColumnUnsafe(name, typ, isPrimaryKey)
	db.mu.Unlock()

	db.notify(m, EventAddColumn, map[string]interface{}{
		"column":      name,
		"type":        string(typ),
		"primary_key": isPrimaryKey,
	}, err)
	return err
}

func (db *Database) addColumnUnsafe(name string, typ schema.ColumnType, isPrimaryKey bool) error {
	if err := db.schema.AddColumn(name, typ, isPrimaryKey); err != nil {
		return err
	}
	if isPrimaryKey {
		db.rebuildIndexesUnsafe()
	}
	db.version++
	return nil
}
