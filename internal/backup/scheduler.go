package backup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/leengari/recordstore/internal/config"
	"github.com/leengari/recordstore/internal/engine"
	"github.com/leengari/recordstore/internal/storage"
)

// Scheduler takes periodic backups of one database on a cron schedule.
// A run is skipped when nothing changed since the previous backup.
type Scheduler struct {
	db     *engine.Database
	dir    string
	format storage.Format
	cron   *cron.Cron
	now    func() time.Time

	mu          sync.Mutex
	hasBackup   bool
	lastVersion uint64
	lastPath    string
}

// NewScheduler validates the schedule and format but does not start anything.
func NewScheduler(db *engine.Database, cfg config.BackupConfig) (*Scheduler, error) {
	format, err := storage.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		db:     db,
		dir:    cfg.Dir,
		format: format,
		cron:   cron.New(),
		now:    time.Now,
	}

	if _, err := s.cron.AddFunc(cfg.Schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("backup scheduler started",
		slog.String("database", s.db.Name()),
		slog.String("dir", s.dir),
	)
}

// Stop halts the schedule and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("backup scheduler stopped", slog.String("database", s.db.Name()))
}

func (s *Scheduler) run() {
	path, written, err := s.RunNow(context.Background())
	if err != nil {
		slog.Error("scheduled backup failed",
			slog.String("database", s.db.Name()),
			slog.Any("error", err),
		)
		return
	}
	if !written {
		slog.Debug("scheduled backup skipped, no changes", slog.String("database", s.db.Name()))
		return
	}
	slog.Debug("scheduled backup done", slog.String("path", path))
}

// RunNow takes a backup immediately unless the database is unchanged since
// the last one. It returns the path of the newest backup and whether a new
// file was written.
func (s *Scheduler) RunNow(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasBackup && s.db.Version() == s.lastVersion {
		return s.lastPath, false, nil
	}

	path, version, err := backupAt(ctx, s.db, s.dir, s.format, s.now())
	if err != nil {
		return "", false, err
	}
	s.hasBackup = true
	s.lastVersion = version
	s.lastPath = path
	return path, true, nil
}
