package sync

import (
	"log/slog"

	"pool-tracker-service/internal/logging"
)

// Level grades user-facing notifications.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notifier receives user-facing messages: validation failures, blocked
// operations, and persistence errors that left optimistic state unconfirmed.
type Notifier interface {
	Notify(level Level, message string)
}

// EventSink is told when an in-memory collection changes, so live views can
// refresh.
type EventSink interface {
	CollectionChanged(collection string)
}

// Collection names passed to EventSink.
const (
	CollectionMatches = "matches"
	CollectionSeasons = "seasons"
)

type logNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a Notifier that writes notifications to the logger.
func NewLogNotifier(logger *slog.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(level Level, message string) {
	switch level {
	case LevelError:
		logging.Error(n.logger, message, nil)
	case LevelWarn:
		logging.Warn(n.logger, message)
	default:
		logging.Info(n.logger, message)
	}
}
