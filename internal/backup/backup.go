package backup

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/leengari/recordstore/internal/engine"
	"github.com/leengari/recordstore/internal/storage"
)

// FileName returns the backup file name for a database taken at t:
// <name>_backup_<unix millis>.<ext>
func FileName(name string, format storage.Format, t time.Time) string {
	return name + "_backup_" + strconv.FormatInt(t.UnixMilli(), 10) + "." + format.Ext()
}

// Backup writes a snapshot of db into dir and returns the file path. The
// database's dirty flag is left alone: a backup is not a save.
func Backup(ctx context.Context, db *engine.Database, dir string, format storage.Format) (string, error) {
	path, _, err := backupAt(ctx, db, dir, format, time.Now())
	return path, err
}

func backupAt(ctx context.Context, db *engine.Database, dir string, format storage.Format, t time.Time) (string, uint64, error) {
	snap, version := db.VersionedSnapshot()
	path := filepath.Join(dir, FileName(snap.Name, format, t))

	if err := storage.Save(ctx, path, format, snap); err != nil {
		return "", 0, fmt.Errorf("backup of %s failed: %w", snap.Name, err)
	}

	slog.Info("backup written",
		slog.String("database", snap.Name),
		slog.String("path", path),
		slog.Int("row_count", len(snap.Records)),
	)
	return path, version, nil
}

// Restore loads a backup file, picking the format from its extension.
func Restore(ctx context.Context, path string) (*engine.Database, error) {
	return storage.LoadDatabase(ctx, path, storage.FormatFromPath(path))
}
