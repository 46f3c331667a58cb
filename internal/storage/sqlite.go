package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
)

// SQLiteStore keeps one snapshot in a SQLite file. Every Save replaces the
// previous snapshot inside a single transaction.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens (or creates) the SQLite file at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer
	conn.SetMaxOpenConns(1)

	store := &SQLiteStore{conn: conn, path: path}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS snapshot_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS snapshot_columns (
			ordinal INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			primary_key INTEGER NOT NULL DEFAULT 0
		)`,
		// value has no declared type so SQLite keeps the stored class
		`CREATE TABLE IF NOT EXISTS snapshot_cells (
			position INTEGER NOT NULL,
			column_name TEXT NOT NULL,
			value,
			PRIMARY KEY (position, column_name)
		)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Save replaces the stored snapshot.
func (s *SQLiteStore) Save(ctx context.Context, snap data.Snapshot) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"snapshot_meta", "snapshot_columns", "snapshot_cells"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	meta := metaFromSnapshot(snap)
	for key, value := range map[string]string{
		"name":        meta.Name,
		"version":     strconv.Itoa(meta.Version),
		"primary_key": meta.PrimaryKey,
		"row_count":   strconv.Itoa(meta.RowCount),
	} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO snapshot_meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}

	for i, col := range meta.Columns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_columns (ordinal, name, type, primary_key) VALUES (?, ?, ?, ?)`,
			i, col.Name, col.Type, col.PrimaryKey)
		if err != nil {
			return fmt.Errorf("insert column %s: %w", col.Name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_cells (position, column_name, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare cells: %w", err)
	}
	defer stmt.Close()

	for pos, rec := range snap.Records {
		for field, val := range rec {
			if val.IsZero() {
				continue
			}
			if _, err := stmt.ExecContext(ctx, pos, field, val.Interface()); err != nil {
				return fmt.Errorf("insert record %d field %s: %w", pos, field, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.Info("snapshot saved",
		slog.String("database", snap.Name),
		slog.String("path", s.path),
		slog.String("format", string(FormatSQLite)),
		slog.Int("row_count", len(snap.Records)),
	)
	return nil
}

// Load reads the stored snapshot. An empty store yields an empty snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (data.Snapshot, error) {
	meta := SnapshotMeta{}

	rows, err := s.conn.QueryContext(ctx, `SELECT key, value FROM snapshot_meta`)
	if err != nil {
		return data.Snapshot{}, fmt.Errorf("query meta: %w", err)
	}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return data.Snapshot{}, fmt.Errorf("scan meta: %w", err)
		}
		switch key {
		case "name":
			meta.Name = value
		case "primary_key":
			meta.PrimaryKey = value
		case "version":
			meta.Version, _ = strconv.Atoi(value)
		case "row_count":
			meta.RowCount, _ = strconv.Atoi(value)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return data.Snapshot{}, err
	}

	rows, err = s.conn.QueryContext(ctx, `SELECT name, type, primary_key FROM snapshot_columns ORDER BY ordinal`)
	if err != nil {
		return data.Snapshot{}, fmt.Errorf("query columns: %w", err)
	}
	for rows.Next() {
		var col ColumnMeta
		if err := rows.Scan(&col.Name, &col.Type, &col.PrimaryKey); err != nil {
			rows.Close()
			return data.Snapshot{}, fmt.Errorf("scan column: %w", err)
		}
		meta.Columns = append(meta.Columns, col)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return data.Snapshot{}, err
	}

	cols, err := meta.schemaColumns()
	if err != nil {
		return data.Snapshot{}, fmt.Errorf("sqlite snapshot %s: %w", s.path, err)
	}

	records := make([]data.Record, meta.RowCount)
	for i := range records {
		records[i] = data.Record{}
	}

	rows, err = s.conn.QueryContext(ctx, `SELECT position, column_name, value FROM snapshot_cells ORDER BY position`)
	if err != nil {
		return data.Snapshot{}, fmt.Errorf("query cells: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			pos   int
			field string
			raw   any
		)
		if err := rows.Scan(&pos, &field, &raw); err != nil {
			return data.Snapshot{}, fmt.Errorf("scan cell: %w", err)
		}
		if pos < 0 || pos >= len(records) {
			return data.Snapshot{}, fmt.Errorf("sqlite snapshot %s: cell position %d outside %d records", s.path, pos, len(records))
		}
		col, ok := findColumn(cols, field)
		if !ok {
			return data.Snapshot{}, fmt.Errorf("sqlite snapshot %s: record %d: unknown field %q", s.path, pos, field)
		}
		val, err := cellValue(col, raw)
		if err != nil {
			return data.Snapshot{}, fmt.Errorf("sqlite snapshot %s: record %d: %w", s.path, pos, err)
		}
		records[pos][field] = val
	}
	if err := rows.Err(); err != nil {
		return data.Snapshot{}, err
	}

	return data.Snapshot{
		Name:       meta.Name,
		Columns:    cols,
		PrimaryKey: meta.PrimaryKey,
		Records:    records,
	}, nil
}

// cellValue maps the storage classes the driver hands back onto the column type.
// SQLite has no boolean class, so booleans come back as 0/1 integers.
func cellValue(col schema.Column, raw any) (data.Value, error) {
	switch v := raw.(type) {
	case []byte:
		raw = string(v)
	case int64:
		if col.Type == schema.ColumnTypeBoolean {
			raw = v != 0
		}
	}
	return data.Convert(col, raw)
}
