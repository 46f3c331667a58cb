package data

import "github.com/leengari/recordstore/internal/domain/schema"

// Snapshot is the persisted form of a database: schema plus ordered records.
// Indexes are never part of it; they are rebuilt on load.
type Snapshot struct {
	Name       string
	Columns    []schema.Column
	PrimaryKey string
	Records    []Record
}
