package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// WorkflowID records the workflow identifier under the key "workflow_id".
func WorkflowID(id string) slog.Attr {
	return slog.String("workflow_id", id)
}

// RecordID records the business record identifier under the key "record_id".
func RecordID(id string) slog.Attr {
	return slog.String("record_id", id)
}

// DocumentType records the document type under the key "document_type".
func DocumentType(t string) slog.Attr {
	return slog.String("document_type", t)
}

// Event records the workflow event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// FromState records the source state under the key "from".
func FromState(name string) slog.Attr {
	return slog.String("from", name)
}

// ToState records the target state under the key "to".
func ToState(name string) slog.Attr {
	return slog.String("to", name)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
