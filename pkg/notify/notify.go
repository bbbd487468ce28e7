package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Level represents the notification severity shown to the user.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is the payload delivered to notification channels.
type Notification struct {
	ID        string         `json:"id"`
	Level     Level          `json:"level"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// New builds a notification with a fresh id and timestamp.
func New(level Level, title, body string) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Level:     level,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

// Dispatcher delivers user-facing notifications. Workflow actions treat a
// dispatch failure as a failed action, so implementations backing remote
// channels should carry their own timeouts.
type Dispatcher interface {
	Notify(ctx context.Context, level Level, title, body string) error
}

// Noop discards all notifications. Useful for tests and for workflows that
// run without a user-facing channel.
type Noop struct{}

// Notify does nothing and returns nil.
func (Noop) Notify(context.Context, Level, string, string) error {
	return nil
}
