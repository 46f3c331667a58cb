package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leengari/recordstore/internal/backup"
	"github.com/leengari/recordstore/internal/config"
	"github.com/leengari/recordstore/internal/engine"
	"github.com/leengari/recordstore/internal/logging"
	"github.com/leengari/recordstore/internal/repl"
	"github.com/leengari/recordstore/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to recordstore.yaml")
	dbPath := flag.String("db", "", "snapshot file to open (overrides database.path)")
	formatName := flag.String("format", "", "snapshot format: json or sqlite (default: from file extension)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", *configPath), slog.Any("error", err))
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *formatName != "" {
		cfg.Database.Format = *formatName
	}

	logger, closeFn := logging.SetupLogger(cfg.Logging)
	defer closeFn()
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("recordstore stopped with error", slog.Any("error", err))
		closeFn()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format := storage.FormatFromPath(cfg.Database.Path)
	if cfg.Database.Format != "" {
		f, err := storage.ParseFormat(cfg.Database.Format)
		if err != nil {
			return err
		}
		format = f
	}

	db, err := openDatabase(ctx, cfg, format)
	if err != nil {
		return err
	}

	observers := []engine.Observer{engine.NewLoggingObserver(slog.Default())}
	if tp := logging.SetupTracing(cfg.Tracing, slog.Default()); tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				slog.Warn("tracer shutdown failed", slog.Any("error", err))
			}
		}()
		observers = append(observers, engine.NewTracingObserver(tp))
	}
	for _, o := range observers {
		db.AddObserver(o)
	}

	var scheduler *backup.Scheduler
	startBackups := func(db *engine.Database) {
		if !cfg.Backup.Enabled {
			return
		}
		if scheduler != nil {
			scheduler.Stop()
		}
		s, err := backup.NewScheduler(db, cfg.Backup)
		if err != nil {
			slog.Error("backups disabled", slog.Any("error", err))
			scheduler = nil
			return
		}
		scheduler = s
		scheduler.Start()
	}
	startBackups(db)
	defer func() {
		if scheduler != nil {
			scheduler.Stop()
		}
	}()

	session := repl.NewSession(db, repl.Options{
		Path:      cfg.Database.Path,
		Format:    format,
		Autosave:  cfg.Database.Autosave,
		Import:    cfg.Import,
		Backup:    cfg.Backup,
		Observers: observers,
		OnSwap:    startBackups,
	})

	// Unblock the prompt on interrupt
	go func() {
		<-ctx.Done()
		os.Stdin.Close()
	}()

	runErr := session.Run(ctx, os.Stdin, os.Stdout)
	if ctx.Err() != nil {
		runErr = nil
	}

	// Save database on shutdown
	path, pathFormat := session.Snapshot()
	if path != "" {
		slog.Info("shutting down, saving database", slog.String("path", path))
		if _, err := storage.FlushIfDirty(context.Background(), session.Database(), path, pathFormat); err != nil {
			slog.Error("shutdown save failed", slog.Any("error", err))
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

// openDatabase loads the configured snapshot, or starts an empty database
// when the file does not exist yet.
func openDatabase(ctx context.Context, cfg *config.Config, format storage.Format) (*engine.Database, error) {
	if cfg.Database.Path == "" {
		return engine.New(cfg.Database.Name), nil
	}
	if _, err := os.Stat(cfg.Database.Path); errors.Is(err, os.ErrNotExist) {
		slog.Info("no snapshot found, starting empty database",
			slog.String("name", cfg.Database.Name),
			slog.String("path", cfg.Database.Path),
		)
		return engine.New(cfg.Database.Name), nil
	}
	return storage.LoadDatabase(ctx, cfg.Database.Path, format)
}
