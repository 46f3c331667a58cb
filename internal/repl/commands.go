package repl

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/leengari/recordstore/internal/backup"
	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/errors"
	"github.com/leengari/recordstore/internal/domain/schema"
	"github.com/leengari/recordstore/internal/engine"
	"github.com/leengari/recordstore/internal/importer"
	"github.com/leengari/recordstore/internal/storage"
)

type command struct {
	usage   string
	help    string
	mutates bool
	run     func(ctx context.Context, s *Session, args []string) (*Result, error)
}

var commands map[string]*command

func init() {
	commands = map[string]*command{
		"help":       {usage: "help", help: "list commands", run: cmdHelp},
		"schema":     {usage: "schema", help: "show columns and primary key", run: cmdSchema},
		"add-column": {usage: "add-column <name> <type> [--pk]", help: "add a TEXT/INTEGER/FLOAT/BOOLEAN column", mutates: true, run: cmdAddColumn},
		"insert":     {usage: "insert field=value ...", help: "insert a record", mutates: true, run: cmdInsert},
		"search":     {usage: "search <field|*> <value> [--exact|--partial]", help: "find records", run: cmdSearch},
		"remove":     {usage: "remove <field|*> <value> [--exact|--partial]", help: "delete matching records", mutates: true, run: cmdRemove},
		"update":     {usage: "update <key> field=value ...", help: "change fields of the record with this key", mutates: true, run: cmdUpdate},
		"list":       {usage: "list", help: "show all records", run: cmdList},
		"count":      {usage: "count", help: "number of records", run: cmdCount},
		"clear":      {usage: "clear", help: "delete all records, keep the schema", mutates: true, run: cmdClear},
		"import":     {usage: "import <file.csv> [create|append|replace] [key=<column>]", help: "load records from CSV", mutates: true, run: cmdImport},
		"save":       {usage: "save [path]", help: "write a snapshot (.json or .db)", run: cmdSave},
		"load":       {usage: "load <path>", help: "replace the database with a snapshot", run: cmdLoad},
		"backup":     {usage: "backup [dir]", help: "write a timestamped backup", run: cmdBackup},
		"restore":    {usage: "restore <path>", help: "replace the database with a backup", run: cmdRestore},
		"exit":       {usage: "exit", help: "quit", run: cmdExit},
	}
	commands["quit"] = commands["exit"]
	commands[`\q`] = commands["exit"]
}

func cmdHelp(_ context.Context, _ *Session, _ []string) (*Result, error) {
	seen := make(map[*command]bool)
	lines := make([]string, 0, len(commands))
	for _, c := range commands {
		if seen[c] {
			continue
		}
		seen[c] = true
		lines = append(lines, fmt.Sprintf("  %-58s %s", c.usage, c.help))
	}
	sort.Strings(lines)
	return &Result{Message: "Commands:\n" + strings.Join(lines, "\n")}, nil
}

func cmdExit(_ context.Context, _ *Session, _ []string) (*Result, error) {
	return nil, ErrExit
}

func cmdSchema(_ context.Context, s *Session, _ []string) (*Result, error) {
	sc := s.db.Schema()
	rows := make([]data.Record, len(sc.Columns))
	for i, col := range sc.Columns {
		rows[i] = data.Record{
			"column":      data.Text(col.Name),
			"type":        data.Text(string(col.Type)),
			"primary_key": data.Boolean(col.PrimaryKey),
		}
	}
	return &Result{
		Message: fmt.Sprintf("database %s: %d columns, %d records", s.db.Name(), len(sc.Columns), s.db.Count()),
		Columns: []schema.Column{
			{Name: "column", Type: schema.ColumnTypeText},
			{Name: "type", Type: schema.ColumnTypeText},
			{Name: "primary_key", Type: schema.ColumnTypeBoolean},
		},
		Rows:  rows,
		Table: true,
	}, nil
}

func cmdAddColumn(_ context.Context, s *Session, args []string) (*Result, error) {
	args, flags := takeFlags(args)
	isPK := flags["pk"]
	if len(args) == 3 && strings.EqualFold(args[2], "pk") {
		isPK = true
		args = args[:2]
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("usage: %s", commands["add-column"].usage)
	}

	typ, err := schema.ParseColumnType(args[1])
	if err != nil {
		return nil, err
	}
	if err := s.db.AddColumn(args[0], typ, isPK); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("column %s %s added", args[0], typ)}, nil
}

func cmdInsert(_ context.Context, s *Session, args []string) (*Result, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: %s", commands["insert"].usage)
	}
	rec, err := parseAssignments(s.db.Schema(), args)
	if err != nil {
		return nil, err
	}
	if err := s.db.Insert(rec); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("1 record inserted (%d total)", s.db.Count())}, nil
}

func cmdSearch(_ context.Context, s *Session, args []string) (*Result, error) {
	q, err := parseQuery(s.db.Schema(), args, "search")
	if err != nil {
		return nil, err
	}
	records, err := s.db.Search(q.field, q.value, q.partial)
	if err != nil {
		return nil, err
	}
	return &Result{
		Message: fmt.Sprintf("%d record(s) found", len(records)),
		Columns: s.db.Schema().Columns,
		Rows:    records,
	}, nil
}

func cmdRemove(_ context.Context, s *Session, args []string) (*Result, error) {
	q, err := parseQuery(s.db.Schema(), args, "remove")
	if err != nil {
		return nil, err
	}
	removed, err := s.db.Remove(q.field, q.value, q.partial)
	if err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("%d record(s) removed", removed)}, nil
}

func cmdUpdate(_ context.Context, s *Session, args []string) (*Result, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("usage: %s", commands["update"].usage)
	}
	sc := s.db.Schema()
	pk := sc.GetPrimaryKeyColumn()
	if pk == nil {
		return nil, &errors.NoPrimaryKeyError{Operation: "update"}
	}

	key, err := data.Parse(*pk, args[0])
	if err != nil {
		return nil, err
	}
	patch, err := parseAssignments(sc, args[1:])
	if err != nil {
		return nil, err
	}
	if err := s.db.Update(key, patch); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("record %s updated", key)}, nil
}

func cmdList(_ context.Context, s *Session, _ []string) (*Result, error) {
	records := s.db.Records()
	return &Result{
		Message: fmt.Sprintf("%d record(s)", len(records)),
		Columns: s.db.Schema().Columns,
		Rows:    records,
		Table:   true,
	}, nil
}

func cmdCount(_ context.Context, s *Session, _ []string) (*Result, error) {
	return &Result{Message: fmt.Sprintf("%d", s.db.Count())}, nil
}

func cmdClear(_ context.Context, s *Session, _ []string) (*Result, error) {
	n := s.db.Count()
	s.db.Clear()
	return &Result{Message: fmt.Sprintf("%d record(s) cleared", n)}, nil
}

func cmdImport(_ context.Context, s *Session, args []string) (*Result, error) {
	if len(args) == 0 || len(args) > 3 {
		return nil, fmt.Errorf("usage: %s", commands["import"].usage)
	}

	opts := importer.Options{
		Delimiter:  s.opts.Import.DelimiterRune(),
		SampleRows: s.opts.Import.SampleRows,
	}
	if len(s.db.Schema().Columns) == 0 {
		opts.Mode = importer.ModeCreate
	} else {
		opts.Mode = importer.ModeAppend
	}
	for _, arg := range args[1:] {
		if field, value, ok := strings.Cut(arg, "="); ok && strings.EqualFold(field, "key") {
			opts.PrimaryKey = value
			continue
		}
		mode, err := importer.ParseMode(arg)
		if err != nil {
			return nil, err
		}
		opts.Mode = mode
	}

	db, report, err := importer.ImportFile(s.db, args[0], opts)
	if err != nil {
		return nil, err
	}
	if db != s.db {
		s.swap(db)
	}

	msg := fmt.Sprintf("%d record(s) imported into %s", report.Inserted, db.Name())
	if report.Failed > 0 {
		lines := []string{fmt.Sprintf("%s, %d failed:", msg, report.Failed)}
		for _, e := range multierr.Errors(report.Err) {
			lines = append(lines, "  "+e.Error())
		}
		msg = strings.Join(lines, "\n")
	}
	return &Result{Message: msg}, nil
}

func cmdSave(ctx context.Context, s *Session, args []string) (*Result, error) {
	path, format := s.opts.Path, s.opts.Format
	if len(args) > 0 {
		path, format = args[0], storage.FormatFromPath(args[0])
	}
	if path == "" {
		return nil, fmt.Errorf("no snapshot path configured, usage: %s", commands["save"].usage)
	}

	if err := storage.SaveDatabase(ctx, s.db, path, format); err != nil {
		return nil, err
	}
	s.opts.Path, s.opts.Format = path, format
	return &Result{Message: fmt.Sprintf("saved %d record(s) to %s", s.db.Count(), path)}, nil
}

func cmdLoad(ctx context.Context, s *Session, args []string) (*Result, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("usage: %s", commands["load"].usage)
	}
	format := storage.FormatFromPath(args[0])
	db, err := storage.LoadDatabase(ctx, args[0], format)
	if err != nil {
		return nil, err
	}
	s.swap(db)
	s.opts.Path, s.opts.Format = args[0], format
	return &Result{Message: fmt.Sprintf("loaded %s: %d record(s)", db.Name(), db.Count())}, nil
}

func cmdBackup(ctx context.Context, s *Session, args []string) (*Result, error) {
	dir := s.opts.Backup.Dir
	if len(args) > 0 {
		dir = args[0]
	}
	format, err := storage.ParseFormat(s.opts.Backup.Format)
	if err != nil {
		return nil, err
	}
	path, err := backup.Backup(ctx, s.db, dir, format)
	if err != nil {
		return nil, err
	}
	return &Result{Message: "backup written to " + path}, nil
}

func cmdRestore(ctx context.Context, s *Session, args []string) (*Result, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("usage: %s", commands["restore"].usage)
	}
	db, err := backup.Restore(ctx, args[0])
	if err != nil {
		return nil, err
	}
	s.swap(db)
	return &Result{Message: fmt.Sprintf("restored %s: %d record(s)", db.Name(), db.Count())}, nil
}

type query struct {
	field   string
	value   data.Value
	partial bool
}

// parseQuery resolves <field|*> <value> [--exact|--partial]. Without a flag,
// '*' and text columns (a text key included) match partially, every other
// column exactly.
func parseQuery(sc *schema.Schema, args []string, name string) (query, error) {
	args, flags := takeFlags(args)
	if len(args) != 2 {
		return query{}, fmt.Errorf("usage: %s", commands[name].usage)
	}
	field, raw := args[0], args[1]

	if field == "*" || strings.EqualFold(field, engine.AnyField) {
		return query{field: engine.AnyField, value: data.Text(raw), partial: !flags["exact"]}, nil
	}

	col, ok := sc.Column(field)
	if !ok {
		return query{}, &errors.UnknownFieldError{Field: field}
	}
	val, err := data.Parse(col, raw)
	if err != nil {
		return query{}, err
	}

	partial := col.Type == schema.ColumnTypeText
	switch {
	case flags["exact"]:
		partial = false
	case flags["partial"]:
		partial = true
	}
	return query{field: field, value: val, partial: partial}, nil
}

// parseAssignments turns field=value words into a record typed by the
// schema. Empty values of non-text columns are left out.
func parseAssignments(sc *schema.Schema, args []string) (data.Record, error) {
	rec := make(data.Record, len(args))
	for _, arg := range args {
		field, raw, err := splitAssignment(arg)
		if err != nil {
			return nil, err
		}
		col, ok := sc.Column(field)
		if !ok {
			return nil, &errors.UnknownFieldError{Field: field}
		}
		if raw == "" && col.Type != schema.ColumnTypeText {
			continue
		}
		val, err := data.Parse(col, raw)
		if err != nil {
			return nil, err
		}
		rec[field] = val
	}
	return rec, nil
}
