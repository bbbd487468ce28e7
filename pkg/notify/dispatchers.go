package notify

import (
	"context"
	"log/slog"

	"github.com/docflowhq/docflow/pkg/eventbus"
	"github.com/docflowhq/docflow/pkg/logger"
)

// SlogDispatcher writes notifications to a structured logger. It never
// fails, which makes it a safe default channel.
type SlogDispatcher struct {
	logger *slog.Logger
}

// NewSlogDispatcher creates a logger-backed dispatcher. A nil logger falls
// back to slog.Default().
func NewSlogDispatcher(log *slog.Logger) *SlogDispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &SlogDispatcher{logger: log}
}

func (d *SlogDispatcher) Notify(ctx context.Context, level Level, title, body string) error {
	slogLevel := slog.LevelInfo
	switch level {
	case LevelWarning:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	}

	d.logger.LogAttrs(ctx, slogLevel, title,
		slog.String("notification_level", string(level)),
		slog.String("body", body),
	)
	return nil
}

// BusDispatcher publishes notifications to an in-process event bus so UI
// listeners can render them in real time.
type BusDispatcher struct {
	bus *eventbus.Bus[Notification]
}

// NewBusDispatcher creates a bus-backed dispatcher.
func NewBusDispatcher(bus *eventbus.Bus[Notification]) *BusDispatcher {
	return &BusDispatcher{bus: bus}
}

func (d *BusDispatcher) Notify(ctx context.Context, level Level, title, body string) error {
	return d.bus.Publish(ctx, New(level, title, body))
}

// Multi fans a notification out to several channels, best effort: failures
// are logged and the remaining channels still receive the notification.
// Multi itself never returns an error; workflows that need delivery to be
// transactional should use a single fallible dispatcher instead.
type Multi struct {
	dispatchers []Dispatcher
	logger      *slog.Logger
}

// MultiOption configures a Multi dispatcher.
type MultiOption func(*Multi)

// WithLogger sets the logger used to report per-channel failures.
func WithLogger(log *slog.Logger) MultiOption {
	return func(m *Multi) {
		if log != nil {
			m.logger = log
		}
	}
}

// NewMulti creates a best-effort multi-channel dispatcher.
func NewMulti(dispatchers []Dispatcher, opts ...MultiOption) *Multi {
	m := &Multi{
		dispatchers: dispatchers,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Multi) Notify(ctx context.Context, level Level, title, body string) error {
	for i, d := range m.dispatchers {
		if err := d.Notify(ctx, level, title, body); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "failed to deliver notification",
				slog.String("title", title),
				slog.Int("dispatcher_index", i),
				logger.Error(err),
			)
		}
	}
	return nil
}
