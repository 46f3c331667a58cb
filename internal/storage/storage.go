package storage

import (
	"context"
	"fmt"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/engine"
)

// Save writes a snapshot at path in the given format.
func Save(ctx context.Context, path string, format Format, snap data.Snapshot) error {
	switch format {
	case FormatJSON, "":
		return SaveJSON(path, snap)
	case FormatSQLite:
		store, err := OpenSQLite(path)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Save(ctx, snap)
	}
	return fmt.Errorf("unknown snapshot format %q", format)
}

// Load reads a snapshot from path in the given format.
func Load(ctx context.Context, path string, format Format) (data.Snapshot, error) {
	switch format {
	case FormatJSON, "":
		return LoadJSON(path)
	case FormatSQLite:
		store, err := OpenSQLite(path)
		if err != nil {
			return data.Snapshot{}, err
		}
		defer store.Close()
		return store.Load(ctx)
	}
	return data.Snapshot{}, fmt.Errorf("unknown snapshot format %q", format)
}

// SaveDatabase persists db and marks the saved version clean.
func SaveDatabase(ctx context.Context, db *engine.Database, path string, format Format) error {
	snap, version := db.VersionedSnapshot()
	if err := Save(ctx, path, format, snap); err != nil {
		return err
	}
	db.MarkSaved(version)
	return nil
}

// LoadDatabase reads a snapshot and rebuilds a database from it.
func LoadDatabase(ctx context.Context, path string, format Format) (*engine.Database, error) {
	snap, err := Load(ctx, path, format)
	if err != nil {
		return nil, err
	}
	db, err := engine.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild database from %s: %w", path, err)
	}
	return db, nil
}

// FlushIfDirty saves the database only if it has unsaved changes. It
// reports whether anything was written.
func FlushIfDirty(ctx context.Context, db *engine.Database, path string, format Format) (bool, error) {
	if !db.Dirty() {
		return false, nil
	}
	if err := SaveDatabase(ctx, db, path, format); err != nil {
		return false, err
	}
	return true, nil
}
