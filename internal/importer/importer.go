package importer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/multierr"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
	"github.com/leengari/recordstore/internal/engine"
)

// Mode selects what an import does with the target database.
type Mode string

const (
	// ModeCreate builds a new database whose schema is inferred from the file.
	ModeCreate Mode = "create"
	// ModeAppend inserts rows into an existing database with matching headers.
	ModeAppend Mode = "append"
	// ModeReplace clears an existing database and then appends.
	ModeReplace Mode = "replace"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCreate, "new":
		return ModeCreate, nil
	case ModeAppend, "add":
		return ModeAppend, nil
	case ModeReplace:
		return ModeReplace, nil
	}
	return "", fmt.Errorf("unknown import mode %q", s)
}

type Options struct {
	Mode       Mode
	Name       string // database name for ModeCreate; derived from the file name when empty
	PrimaryKey string // key column for ModeCreate; empty for none
	Delimiter  rune
	SampleRows int
}

// Report summarises an import. Rows that fail do not stop the import; their
// errors are combined in Err.
type Report struct {
	Inserted int
	Failed   int
	Err      error
}

// HeaderMismatchError is returned when CSV headers do not match the schema
// of the database being appended to.
type HeaderMismatchError struct {
	CSV    []string
	Schema []string
}

func (e *HeaderMismatchError) Error() string {
	return fmt.Sprintf("csv columns %v do not match database columns %v", e.CSV, e.Schema)
}

// ImportFile reads a CSV file and imports it. For ModeCreate the returned
// database is new and db may be nil; otherwise it is db itself.
func ImportFile(db *engine.Database, path string, opts Options) (*engine.Database, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	table, err := ReadCSV(f, opts.Delimiter)
	if err != nil {
		return nil, Report{}, fmt.Errorf("%s: %w", path, err)
	}

	if opts.Name == "" {
		base := filepath.Base(path)
		opts.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return Import(db, table, opts)
}

// Import loads a parsed table into a database according to opts.Mode.
func Import(db *engine.Database, table *Table, opts Options) (*engine.Database, Report, error) {
	if opts.Mode == "" {
		opts.Mode = ModeCreate
	}

	switch opts.Mode {
	case ModeCreate:
		created, err := createDatabase(table, opts)
		if err != nil {
			return nil, Report{}, err
		}
		db = created
	case ModeAppend, ModeReplace:
		if db == nil {
			return nil, Report{}, fmt.Errorf("%s import needs an existing database", opts.Mode)
		}
		if names := db.Schema().ColumnNames(); !slices.Equal(names, table.Headers) {
			return nil, Report{}, &HeaderMismatchError{CSV: table.Headers, Schema: names}
		}
		if opts.Mode == ModeReplace {
			db.Clear()
		}
	default:
		return nil, Report{}, fmt.Errorf("unknown import mode %q", opts.Mode)
	}

	report := insertRows(db, table)

	slog.Info("csv imported",
		slog.String("database", db.Name()),
		slog.String("mode", string(opts.Mode)),
		slog.Int("inserted", report.Inserted),
		slog.Int("failed", report.Failed),
	)
	return db, report, nil
}

func createDatabase(table *Table, opts Options) (*engine.Database, error) {
	if opts.PrimaryKey != "" && !slices.Contains(table.Headers, opts.PrimaryKey) {
		return nil, fmt.Errorf("primary key %q is not a csv column", opts.PrimaryKey)
	}

	db := engine.New(opts.Name)
	types := InferTypes(table.Headers, table.Rows, opts.SampleRows)
	for i, header := range table.Headers {
		if err := db.AddColumn(header, types[i], header == opts.PrimaryKey); err != nil {
			return nil, fmt.Errorf("csv column %q: %w", header, err)
		}
	}
	return db, nil
}

func insertRows(db *engine.Database, table *Table) Report {
	var report Report
	s := db.Schema()

	for i, row := range table.Rows {
		rec, err := buildRecord(s, table.Headers, row)
		if err == nil {
			err = db.Insert(rec)
		}
		if err != nil {
			report.Failed++
			report.Err = multierr.Append(report.Err, fmt.Errorf("line %d: %w", table.Lines[i], err))
			continue
		}
		report.Inserted++
	}
	return report
}

// buildRecord converts one CSV row. Empty text cells become "", empty cells
// of other types are left out of the record.
func buildRecord(s *schema.Schema, headers []string, row []string) (data.Record, error) {
	rec := make(data.Record, len(headers))
	for i, header := range headers {
		col, ok := s.Column(header)
		if !ok {
			continue
		}
		cell := row[i]
		if cell == "" && col.Type != schema.ColumnTypeText {
			continue
		}
		val, err := data.Parse(col, cell)
		if err != nil {
			return nil, err
		}
		rec[header] = val
	}
	return rec, nil
}
