package events

import (
	"fmt"
	"time"

	"github.com/entrhq/dossier/pkg/types"
)

// EventType defines the kind of event published by the engine.
type EventType string

const (
	EventTypeLog          EventType = "log"           // EventTypeLog carries a human-readable status line.
	EventTypeStatusChange EventType = "status_change" // EventTypeStatusChange carries a record's new status.
)

// Event is a single notification from the engine. Log events use Message;
// status events use Identifier, Status and Error.
type Event struct {
	Type       EventType
	Time       time.Time
	Message    string
	Identifier string
	Status     types.Status
	Error      string
}

// NewLogEvent creates a log-line event stamped with the current time.
func NewLogEvent(message string) Event {
	return Event{
		Type:    EventTypeLog,
		Time:    time.Now(),
		Message: message,
	}
}

// NewStatusEvent creates a status-change event from a record snapshot.
func NewStatusEvent(record *types.Record) Event {
	return Event{
		Type:       EventTypeStatusChange,
		Time:       time.Now(),
		Identifier: record.Identifier,
		Status:     record.Status,
		Error:      record.Error,
	}
}

// String renders the event as a timestamped status line.
func (e Event) String() string {
	stamp := e.Time.Format("15:04:05")
	if e.Type == EventTypeStatusChange {
		if e.Error != "" {
			return fmt.Sprintf("[%s] %s -> %s: %s", stamp, e.Identifier, e.Status, e.Error)
		}
		return fmt.Sprintf("[%s] %s -> %s", stamp, e.Identifier, e.Status)
	}
	return fmt.Sprintf("[%s] %s", stamp, e.Message)
}
