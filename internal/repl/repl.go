package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leengari/recordstore/internal/config"
	"github.com/leengari/recordstore/internal/engine"
	"github.com/leengari/recordstore/internal/storage"
)

// ErrExit is returned by Execute for the exit command.
var ErrExit = errors.New("exit")

type Options struct {
	Path     string // snapshot path used by save/load without an argument
	Format   storage.Format
	Autosave bool
	Import   config.ImportConfig
	Backup   config.BackupConfig

	// Observers are attached to every database the session opens.
	Observers []engine.Observer
	// OnSwap is called after load or import replaces the active database.
	OnSwap func(db *engine.Database)
}

// Session runs commands against one active database.
type Session struct {
	db   *engine.Database
	opts Options
}

func NewSession(db *engine.Database, opts Options) *Session {
	if opts.Format == "" {
		opts.Format = storage.FormatFromPath(opts.Path)
	}
	return &Session{db: db, opts: opts}
}

// Database returns the active database.
func (s *Session) Database() *engine.Database {
	return s.db
}

// Snapshot returns the path and format save uses without an argument.
func (s *Session) Snapshot() (string, storage.Format) {
	return s.opts.Path, s.opts.Format
}

// Run reads commands from in until EOF or exit, printing results to out.
// Command errors are printed and do not stop the loop.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintf(out, "recordstore: database %q (%d records)\n", s.db.Name(), s.db.Count())
	fmt.Fprintln(out, "Type 'help' for commands, 'exit' or '\\q' to quit.")

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		result, err := s.Execute(ctx, line)
		if errors.Is(err, ErrExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		PrintResult(out, result)

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Execute runs a single command line.
func (s *Session) Execute(ctx context.Context, line string) (*Result, error) {
	args, err := splitArgs(line)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return &Result{}, nil
	}

	name := strings.ToLower(args[0])
	cmd, ok := commands[name]
	if !ok {
		return nil, fmt.Errorf("unknown command %q, try 'help'", args[0])
	}

	result, err := cmd.run(ctx, s, args[1:])
	if err != nil {
		return nil, err
	}

	if cmd.mutates && s.opts.Autosave && s.opts.Path != "" {
		if _, err := storage.FlushIfDirty(ctx, s.db, s.opts.Path, s.opts.Format); err != nil {
			slog.Error("autosave failed", slog.String("path", s.opts.Path), slog.Any("error", err))
			return result, fmt.Errorf("command succeeded but autosave failed: %w", err)
		}
	}
	return result, nil
}

// swap makes db the active database.
func (s *Session) swap(db *engine.Database) {
	for _, o := range s.opts.Observers {
		db.AddObserver(o)
	}
	s.db = db
	if s.opts.OnSwap != nil {
		s.opts.OnSwap(db)
	}
}
