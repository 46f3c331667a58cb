package engine

import (
	"sync"
	"time"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
	"github.com/leengari/recordstore/internal/domain/transaction"
	"github.com/leengari/recordstore/internal/index"
)

// AnyField selects every column of the schema in Search/Remove.
const AnyField = schema.AnyField

// Database is a single in-memory record store: the ordered records, their
// schema, and the three derived indexes. Records are addressed by position
// and every index entry is a position.
//
// All mutations hold the write lock for their full multi-step change and all
// reads hold the read lock, so readers never observe a half-updated index set.
type Database struct {
	mu   sync.RWMutex
	name string

	schema  *schema.Schema
	records []data.Record

	pkIndex    *index.PrimaryKeyIndex // nil when no primary key is declared
	fieldIndex *index.FieldValueIndex
	textIndex  *index.TextTokenIndex

	version      uint64 // bumped on every successful mutation
	savedVersion uint64

	observers []Observer
}

// New creates an empty database with an empty schema.
func New(name string) *Database {
	return &Database{
		name:       name,
		schema:     schema.New(),
		records:    make([]data.Record, 0),
		fieldIndex: index.NewFieldValueIndex(),
		textIndex:  index.NewTextTokenIndex(),
		observers:  make([]Observer, 0),
	}
}

// FromSnapshot builds a database from a persisted snapshot. Every record is
// replayed through the insert path, so indexes are rebuilt and the snapshot
// is validated against its own schema on the way in.
func FromSnapshot(snap data.Snapshot) (*Database, error) {
	db := New(snap.Name)
	m := transaction.NewMutation(transaction.OpLoad)

	for _, col := range snap.Columns {
		isPK := col.PrimaryKey || (snap.PrimaryKey != "" && col.Name == snap.PrimaryKey)
		if err := db.addColumnUnsafe(col.Name, col.Type, isPK); err != nil {
			return nil, err
		}
	}
	for i, rec := range snap.Records {
		if _, err := db.insertUnsafe(rec); err != nil {
			return nil, &SnapshotError{Record: i, Err: err}
		}
	}
	db.savedVersion = db.version

	db.notify(m, EventLoad, map[string]interface{}{
		"columns": len(snap.Columns),
		"records": len(db.records),
	}, nil)
	return db, nil
}

func (db *Database) Name() string {
	return db.name
}

// Schema returns a copy of the current schema.
func (db *Database) Schema() *schema.Schema {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.schema.Copy()
}

// PrimaryKey returns the primary-key column name, or "" if none is declared.
func (db *Database) PrimaryKey() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.schema.PrimaryKey
}

// Count returns the number of live records.
func (db *Database) Count() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.records)
}

// Records returns independent copies of all records in position order.
func (db *Database) Records() []data.Record {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.copyRecordsUnsafe()
}

// Snapshot returns a consistent copy of schema and records.
func (db *Database) Snapshot() data.Snapshot {
	snap, _ := db.VersionedSnapshot()
	return snap
}

// VersionedSnapshot returns a snapshot together with the mutation version it
// reflects, for use with MarkSaved.
func (db *Database) VersionedSnapshot() (data.Snapshot, uint64) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s := db.schema.Copy()
	return data.Snapshot{
		Name:       db.name,
		Columns:    s.Columns,
		PrimaryKey: s.PrimaryKey,
		Records:    db.copyRecordsUnsafe(),
	}, db.version
}

// Dirty reports whether the database changed since it was last saved.
func (db *Database) Dirty() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.version != db.savedVersion
}

// Version returns the current mutation version.
func (db *Database) Version() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.version
}

// MarkSaved records that the state at version has been persisted. A
// mutation that happened after the snapshot keeps the database dirty.
func (db *Database) MarkSaved(version uint64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if version > db.savedVersion {
		db.savedVersion = version
	}
}

// Clear removes every record and resets all indexes. The schema is kept.
func (db *Database) Clear() {
	m := transaction.NewMutation(transaction.OpClear)

	db.mu.Lock()
	removed := len(db.records)
	db.records = make([]data.Record, 0)
	db.resetIndexesUnsafe()
	db.version++
	db.mu.Unlock()

	db.notify(m, EventClear, map[string]interface{}{"removed": removed}, nil)
}

func (db *Database) copyRecordsUnsafe() []data.Record {
	out := make([]data.Record, len(db.records))
	for i, rec := range db.records {
		out[i] = rec.Copy()
	}
	return out
}

// notify sends an event to all registered observers. It must be called
// without holding db.mu so observers may query the database.
func (db *Database) notify(m *transaction.Mutation, typ EventType, payload map[string]interface{}, err error) {
	db.mu.RLock()
	observers := make([]Observer, len(db.observers))
	copy(observers, db.observers)
	db.mu.RUnlock()

	if len(observers) == 0 {
		return
	}

	event := Event{
		Type:      typ,
		Database:  db.name,
		TxID:      m.ID,
		Seq:       m.Seq,
		Started:   m.StartTime,
		Timestamp: time.Now(),
		Data:      payload,
		Err:       err,
	}
	for _, observer := range observers {
		observer.OnEvent(event)
	}
}
