package watcher

import (
	"log/slog"
	"time"
)

// EventType says what happened to a watched file.
type EventType string

const (
	// EventAdded reports a new file that has stopped growing.
	EventAdded EventType = "added"
	// EventModified reports a known file that changed and settled again.
	EventModified EventType = "modified"
	// EventRemoved reports a known file that was deleted or renamed away.
	EventRemoved EventType = "removed"
)

// Event is one settled change. Size and ModTime are zero for removals.
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}

// LogValue renders the event as a log group.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", string(e.Type)),
		slog.String("path", e.Path),
	}
	if e.Type != EventRemoved {
		attrs = append(attrs, slog.Int64("size", e.Size))
	}
	return slog.GroupValue(attrs...)
}
