package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/docflowhq/docflow/pkg/eventbus"
	"github.com/docflowhq/docflow/pkg/logger"
	"github.com/docflowhq/docflow/pkg/notify"
	"github.com/docflowhq/docflow/pkg/statemachine"
)

// Config holds the environment-driven settings of the workflow service.
type Config struct {
	// BusBuffer is the per-subscriber buffer of the state-changed bus.
	BusBuffer int `env:"DOCFLOW_BUS_BUFFER" envDefault:"16"`
	// LogFormat selects the logger output format (json or text).
	LogFormat string `env:"DOCFLOW_LOG_FORMAT" envDefault:"json"`
}

// Service owns the built-in workflow definitions and one live machine per
// open record. Records live only as long as the process: after a successful
// transition the caller commits the new status to the system of record,
// which stays authoritative.
type Service struct {
	logger *slog.Logger
	bus    *eventbus.Bus[statemachine.StateChanged]

	mu      sync.RWMutex
	defs    map[string]*statemachine.Definition
	records map[string]*record
}

type record struct {
	docType string
	binding *statemachine.Binding
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the structured logger used by the service and its
// machines.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithDefinition registers an additional workflow definition, keyed by its
// workflow id. Built-in definitions of the same id are replaced.
func WithDefinition(def *statemachine.Definition) ServiceOption {
	return func(s *Service) {
		s.defs[def.ID()] = def
	}
}

// NewService creates a workflow service with the quotation, invoice, and
// purchase-order definitions registered. The dispatcher is wired into the
// workflows' notification actions; nil disables notifications.
func NewService(cfg Config, dispatcher notify.Dispatcher, opts ...ServiceOption) *Service {
	log := slog.Default()
	if cfg.LogFormat != "" {
		log = logger.New(logger.WithFormat(logger.Format(cfg.LogFormat)))
	}

	s := &Service{
		logger:  log,
		bus:     eventbus.New[statemachine.StateChanged](cfg.BusBuffer),
		defs:    make(map[string]*statemachine.Definition),
		records: make(map[string]*record),
	}

	for _, def := range []*statemachine.Definition{
		Quotation(dispatcher),
		Invoice(dispatcher),
		PurchaseOrder(dispatcher),
	} {
		s.defs[def.ID()] = def
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Definition returns a registered workflow definition by document type.
func (s *Service) Definition(docType string) (*statemachine.Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[docType]
	return def, ok
}

// Open creates a machine instance for a new record of the given document
// type, seeded with the overrides, and returns the record id with its
// binding. The generated id is written into the instance context under
// record_id.
func (s *Service) Open(docType string, overrides statemachine.Context) (string, *statemachine.Binding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.defs[docType]
	if !ok {
		return "", nil, fmt.Errorf("unknown document type '%s'", docType)
	}

	id := uuid.New().String()
	seed := overrides.Clone()
	seed[KeyRecordID] = id

	m, err := statemachine.New(def,
		statemachine.WithContextOverrides(seed),
		statemachine.WithLogger(s.logger),
		statemachine.WithPublisher(s.bus),
	)
	if err != nil {
		return "", nil, err
	}

	binding := statemachine.NewBinding(m)
	s.records[id] = &record{docType: docType, binding: binding}

	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "record opened",
		logger.Component("workflows"),
		logger.DocumentType(docType),
		logger.RecordID(id),
	)

	return id, binding, nil
}

// Get returns the binding of an open record.
func (s *Service) Get(recordID string) (*statemachine.Binding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordID]
	if !ok {
		return nil, false
	}
	return rec.binding, true
}

// CloseRecord discards the machine instance of a record, e.g. when its view
// closes. The record itself lives on in the system of record.
func (s *Service) CloseRecord(recordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, recordID)
}

// Subscribe returns a subscription to state-changed events of all records.
func (s *Service) Subscribe(ctx context.Context) *eventbus.Subscription[statemachine.StateChanged] {
	return s.bus.Subscribe(ctx)
}

// Close shuts down the service's event bus and discards all open records.
func (s *Service) Close() error {
	s.mu.Lock()
	clear(s.records)
	s.mu.Unlock()
	return s.bus.Close()
}
