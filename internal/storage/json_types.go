package storage

import (
	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
)

// snapshotVersion is bumped whenever the on-disk layout changes.
const snapshotVersion = 1

// SnapshotMeta is the header of every persisted snapshot.
type SnapshotMeta struct {
	Name       string       `json:"name"`
	Version    int          `json:"version"`
	PrimaryKey string       `json:"primary_key,omitempty"`
	Columns    []ColumnMeta `json:"columns"`
	RowCount   int          `json:"row_count"`
}

type ColumnMeta struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key"`
}

// snapshotFile is the JSON document written by SaveJSON.
type snapshotFile struct {
	SnapshotMeta
	Records []data.Record `json:"records"`
}

// rawSnapshotFile is decoded first; record values are only typed once the
// column list is known.
type rawSnapshotFile struct {
	SnapshotMeta
	Records []map[string]any `json:"records"`
}

func metaFromSnapshot(snap data.Snapshot) SnapshotMeta {
	meta := SnapshotMeta{
		Name:       snap.Name,
		Version:    snapshotVersion,
		PrimaryKey: snap.PrimaryKey,
		Columns:    make([]ColumnMeta, len(snap.Columns)),
		RowCount:   len(snap.Records),
	}
	for i, col := range snap.Columns {
		meta.Columns[i] = ColumnMeta{
			Name:       col.Name,
			Type:       string(col.Type),
			PrimaryKey: col.PrimaryKey,
		}
	}
	return meta
}

func (m SnapshotMeta) schemaColumns() ([]schema.Column, error) {
	cols := make([]schema.Column, len(m.Columns))
	for i, c := range m.Columns {
		typ, err := schema.ParseColumnType(c.Type)
		if err != nil {
			return nil, err
		}
		cols[i] = schema.Column{Name: c.Name, Type: typ, PrimaryKey: c.PrimaryKey}
	}
	return cols, nil
}
