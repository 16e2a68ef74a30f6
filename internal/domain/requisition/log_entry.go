package requisition

import (
	"time"

	"github.com/google/uuid"
)

// LogAction classifies audit log entries
type LogAction string

const (
	LogActionCreate       LogAction = "CREATE"
	LogActionStatusChange LogAction = "STATUS_CHANGE"
)

// LogEntry is one immutable line of a requisition's audit history
type LogEntry struct {
	ID        string
	Timestamp time.Time
	ActorID   string
	Action    LogAction
	Message   string
}

func newLogEntry(at time.Time, actorID string, action LogAction, message string) LogEntry {
	return LogEntry{
		ID:        uuid.New().String(),
		Timestamp: at,
		ActorID:   actorID,
		Action:    action,
		Message:   message,
	}
}
