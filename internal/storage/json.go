package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/errors"
	"github.com/leengari/recordstore/internal/domain/schema"
)

// SaveJSON writes the snapshot as a single JSON document using temp file +
// atomic rename, so a crash never leaves a half-written snapshot behind.
func SaveJSON(path string, snap data.Snapshot) error {
	doc := snapshotFile{
		SnapshotMeta: metaFromSnapshot(snap),
		Records:      snap.Records,
	}
	if doc.Records == nil {
		doc.Records = []data.Record{}
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", snap.Name, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, payload, 0644); err != nil {
		return fmt.Errorf("failed to write temp snapshot for %s: %w", snap.Name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp → %s: %w", path, err)
	}

	slog.Info("snapshot saved",
		slog.String("database", snap.Name),
		slog.String("path", path),
		slog.String("format", string(FormatJSON)),
		slog.Int("row_count", len(snap.Records)),
	)
	return nil
}

// LoadJSON reads a snapshot written by SaveJSON. Values are typed by their
// column, so an Integer column and a Float column holding 3 stay distinct.
func LoadJSON(path string) (data.Snapshot, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return data.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var raw rawSnapshotFile
	if err := dec.Decode(&raw); err != nil {
		return data.Snapshot{}, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	cols, err := raw.schemaColumns()
	if err != nil {
		return data.Snapshot{}, fmt.Errorf("snapshot %s: %w", path, err)
	}

	records := make([]data.Record, len(raw.Records))
	for i, fields := range raw.Records {
		rec, err := decodeRecord(cols, fields)
		if err != nil {
			return data.Snapshot{}, fmt.Errorf("snapshot %s: record %d: %w", path, i, err)
		}
		records[i] = rec
	}

	slog.Info("snapshot loaded",
		slog.String("database", raw.Name),
		slog.String("path", path),
		slog.Int("row_count", len(records)),
	)

	return data.Snapshot{
		Name:       raw.Name,
		Columns:    cols,
		PrimaryKey: raw.PrimaryKey,
		Records:    records,
	}, nil
}

// decodeRecord types a loosely decoded field map against the column list.
// Null fields are treated as absent.
func decodeRecord(cols []schema.Column, fields map[string]any) (data.Record, error) {
	rec := make(data.Record, len(fields))
	for name, raw := range fields {
		if raw == nil {
			continue
		}
		col, ok := findColumn(cols, name)
		if !ok {
			return nil, &errors.UnknownFieldError{Field: name}
		}
		val, err := data.Convert(col, raw)
		if err != nil {
			return nil, err
		}
		rec[name] = val
	}
	return rec, nil
}

func findColumn(cols []schema.Column, name string) (schema.Column, bool) {
	for _, c := range cols {
		if c.Name == name {
			return c, true
		}
	}
	return schema.Column{}, false
}
