package testutil

import (
	"testing"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
	"github.com/leengari/recordstore/internal/engine"
)

// CreatePeopleDatabase creates a people database keyed by an integer id
// with five records, ids 1..5
func CreatePeopleDatabase(t *testing.T) *engine.Database {
	t.Helper()
	db := engine.New("people")
	AssertNoError(t, db.AddColumn("id", schema.ColumnTypeInteger, true), "add id")
	AssertNoError(t, db.AddColumn("name", schema.ColumnTypeText, false), "add name")
	AssertNoError(t, db.AddColumn("city", schema.ColumnTypeText, false), "add city")
	AssertNoError(t, db.AddColumn("active", schema.ColumnTypeBoolean, false), "add active")

	people := []struct {
		name, city string
		active     bool
	}{
		{"Ann", "Oslo", true},
		{"Bob", "Ann Arbor", false},
		{"Cid", "Bergen", true},
		{"Dee", "Oslo", false},
		{"Eve", "Trondheim", true},
	}
	for i, p := range people {
		err := db.Insert(data.Record{
			"id":     data.Integer(int64(i + 1)),
			"name":   data.Text(p.name),
			"city":   data.Text(p.city),
			"active": data.Boolean(p.active),
		})
		AssertNoError(t, err, "insert "+p.name)
	}
	return db
}

// CreateNotesDatabase creates a database without a primary key
func CreateNotesDatabase(t *testing.T, notes ...string) *engine.Database {
	t.Helper()
	db := engine.New("notes")
	AssertNoError(t, db.AddColumn("body", schema.ColumnTypeText, false), "add body")
	AssertNoError(t, db.AddColumn("stars", schema.ColumnTypeInteger, false), "add stars")
	for i, n := range notes {
		err := db.Insert(data.Record{"body": data.Text(n), "stars": data.Integer(int64(i))})
		AssertNoError(t, err, "insert note")
	}
	return db
}
