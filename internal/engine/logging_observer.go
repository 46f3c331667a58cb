package engine

import (
	"context"
	"log/slog"
)

// LoggingObserver logs every mutation event using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a logging observer; a nil logger means slog.Default()
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

// OnEvent implements the Observer interface.
// Rejected mutations are logged at warn level with the error attached.
func (lo *LoggingObserver) OnEvent(event Event) {
	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("event", string(event.Type)),
		slog.String("database", event.Database),
		slog.String("tx_id", event.TxID),
		slog.Uint64("seq", event.Seq),
		slog.Duration("elapsed", event.Timestamp.Sub(event.Started)),
		slog.Any("data", event.Data),
	}
	if event.Err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.Any("error", event.Err))
	}
	lo.logger.LogAttrs(context.Background(), level, "mutation", attrs...)
}
