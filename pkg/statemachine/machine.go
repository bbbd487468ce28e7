package statemachine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docflowhq/docflow/pkg/logger"
)

// Machine is a live workflow instance: a current state plus a mutable
// business context, executing validated transitions against a shared
// Definition. Each instance is exclusively owned by one caller; transitions
// on different instances never block each other.
type Machine struct {
	def       *Definition
	logger    *slog.Logger
	publisher Publisher
	rollback  bool

	mu      sync.Mutex
	current string
	context Context
	busy    bool
}

// Option configures a Machine during construction.
type Option func(*Machine)

// WithContextOverrides merges record-specific fields over the definition's
// initial context, typically to seed the instance from a loaded record.
func WithContextOverrides(c Context) Option {
	return func(m *Machine) {
		m.context.Merge(c)
	}
}

// WithLogger sets the structured logger used for transition lifecycle and
// configuration-defect logging. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(m *Machine) {
		if log != nil {
			m.logger = log
		}
	}
}

// WithPublisher sets the event bus that receives StateChanged events after
// successful transitions.
func WithPublisher(p Publisher) Option {
	return func(m *Machine) {
		m.publisher = p
	}
}

// WithRollbackOnFailure makes a failed transition discard the pipeline's
// context mutations and restore the pre-transition state. The default
// commits partial mutations, matching callers that re-synchronize from the
// authoritative record after a failure.
func WithRollbackOnFailure() Option {
	return func(m *Machine) {
		m.rollback = true
	}
}

// New creates an instance positioned at the definition's initial state.
func New(def *Definition, opts ...Option) (*Machine, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}

	m := &Machine{
		def:     def,
		logger:  slog.Default(),
		current: def.initial,
		context: def.initialContext.Clone(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if _, ok := def.states[m.current]; !ok {
		return nil, fmt.Errorf("workflow '%s': initial state '%s' is not defined", def.id, m.current)
	}

	return m, nil
}

// MustNew is like New but panics on error.
func MustNew(def *Definition, opts ...Option) *Machine {
	m, err := New(def, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create machine: %v", err))
	}
	return m
}

// Definition returns the shared workflow definition.
func (m *Machine) Definition() *Definition {
	return m.def
}

// Current returns the current state name.
func (m *Machine) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Context returns a snapshot of the current business context.
func (m *Machine) Context() Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.context.Clone()
}

// Done reports whether the current state is final.
func (m *Machine) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.def.states[m.current].def.Final
}

// Transitioning reports whether a transition is currently in flight.
func (m *Machine) Transitioning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// AvailableEvents returns the event names with an outgoing mapping from the
// current state, in lexical order.
func (m *Machine) AvailableEvents() []string {
	return m.def.Events(m.Current())
}

// CanTransition probes whether firing the event would currently be accepted:
// an outgoing mapping exists and at least one candidate's guard passes. It
// never mutates state or context and never runs actions.
func (m *Machine) CanTransition(ctx context.Context, event string, payload map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := m.def.candidates(m.current, event)
	if len(candidates) == 0 {
		return false
	}

	e := Event{Name: event, Payload: payload}
	for _, t := range candidates {
		if t.Guard == nil || t.Guard(ctx, m.context, e) {
			return true
		}
	}
	return false
}

// UpdateContext merges fields into the context without changing state, e.g.
// to reconcile a server-confirmed identifier after the caller persisted the
// new status. It does not touch the busy flag.
func (m *Machine) UpdateContext(partial Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.context.Merge(partial)
}

// TransitionResult reports the outcome of one Transition call. State and
// Context are a snapshot of the instance after the attempt.
type TransitionResult struct {
	Success bool
	State   string
	Context Context
	Err     error
}

// ErrorMessage returns the failure message, or "" on success.
func (r TransitionResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Transition fires an event against the instance. The pipeline runs strictly
// in order: source exit hook, each transition action, state swap, target
// enter hook. Any step failure stops the pipeline at that point; mutations
// already applied are retained unless WithRollbackOnFailure was set. The
// call never panics and never queues: a concurrent call on the same
// instance fails immediately with a reentrancy error.
func (m *Machine) Transition(ctx context.Context, event string, payload map[string]any) TransitionResult {
	e := Event{Name: event, Payload: payload}

	m.mu.Lock()
	if m.busy {
		res := TransitionResult{State: m.current, Context: m.context.Clone(), Err: ErrTransitionInProgress}
		m.mu.Unlock()
		return res
	}

	from := m.current
	node := m.def.states[from]

	candidates := m.def.candidates(from, event)
	if len(candidates) == 0 {
		res := TransitionResult{State: from, Context: m.context.Clone(), Err: &NoTransitionError{State: from, Event: event}}
		m.mu.Unlock()
		m.logger.LogAttrs(ctx, slog.LevelDebug, "no transition for event",
			logger.WorkflowID(m.def.id),
			slog.String("state", from),
			logger.Event(event),
		)
		return res
	}

	chosen, guardMessage := resolveCandidate(ctx, candidates, m.context, e)
	if chosen == nil {
		res := TransitionResult{State: from, Context: m.context.Clone(), Err: &GuardRejectedError{State: from, Event: event, Message: guardMessage}}
		m.mu.Unlock()
		m.logger.LogAttrs(ctx, slog.LevelInfo, "transition rejected by guard",
			logger.WorkflowID(m.def.id),
			slog.String("state", from),
			logger.Event(event),
		)
		return res
	}

	if _, ok := m.def.states[chosen.Target]; !ok {
		res := TransitionResult{State: from, Context: m.context.Clone(), Err: &InvalidDefinitionError{State: from, Event: event, Target: chosen.Target}}
		m.mu.Unlock()
		m.logger.LogAttrs(ctx, slog.LevelError, "transition targets unknown state",
			logger.WorkflowID(m.def.id),
			slog.String("state", from),
			logger.Event(event),
			slog.String("target", chosen.Target),
		)
		return res
	}

	m.busy = true
	// The pipeline mutates a working copy with the lock released. The live
	// context stays readable by concurrent probes and is only replaced under
	// the lock once the pipeline has stopped.
	c := m.context.Clone()
	m.mu.Unlock()

	start := time.Now()

	m.logger.LogAttrs(ctx, slog.LevelDebug, "transition started",
		logger.WorkflowID(m.def.id),
		logger.FromState(from),
		logger.ToState(chosen.Target),
		logger.Event(event),
	)

	if node.def.OnExit != nil {
		if err := runStep("exit hook", func() error { return node.def.OnExit(ctx, c) }); err != nil {
			return m.fail(ctx, from, c, err)
		}
	}

	for i, action := range chosen.Actions {
		if action == nil {
			continue
		}
		step := fmt.Sprintf("action %d", i+1)
		if err := runStep(step, func() error { return action(ctx, c, e) }); err != nil {
			return m.fail(ctx, from, c, err)
		}
	}

	m.mu.Lock()
	m.current = chosen.Target
	m.mu.Unlock()

	target := m.def.states[chosen.Target]
	if target.def.OnEnter != nil {
		if err := runStep("enter hook", func() error { return target.def.OnEnter(ctx, c) }); err != nil {
			// The state swap has already happened; it is only reverted when
			// rollback is enabled.
			return m.fail(ctx, from, c, err)
		}
	}

	m.mu.Lock()
	m.context = c
	m.busy = false
	newState := m.current
	snapshot := c.Clone()
	m.mu.Unlock()

	m.logger.LogAttrs(ctx, slog.LevelInfo, "transition completed",
		logger.WorkflowID(m.def.id),
		logger.FromState(from),
		logger.ToState(newState),
		logger.Event(event),
		logger.Duration(time.Since(start)),
	)

	if m.publisher != nil {
		ev := StateChanged{
			WorkflowID: m.def.id,
			RecordID:   snapshot.String(KeyRecordID),
			From:       from,
			To:         newState,
			Event:      event,
		}
		if err := m.publisher.Publish(ctx, ev); err != nil {
			// Listener failures never surface in the result.
			m.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish state change",
				logger.WorkflowID(m.def.id),
				logger.RecordID(ev.RecordID),
				logger.Error(err),
			)
		}
	}

	return TransitionResult{Success: true, State: newState, Context: snapshot}
}

// fail finalizes a transition after a pipeline step error: commits the
// working copy (or discards it and restores the pre-transition state when
// rollback is enabled), clears busy, and snapshots the instance for the
// result.
func (m *Machine) fail(ctx context.Context, from string, working Context, err error) TransitionResult {
	m.mu.Lock()
	if m.rollback {
		m.current = from
	} else {
		m.context = working
	}
	m.busy = false
	res := TransitionResult{State: m.current, Context: m.context.Clone(), Err: err}
	m.mu.Unlock()

	m.logger.LogAttrs(ctx, slog.LevelWarn, "transition failed",
		logger.WorkflowID(m.def.id),
		logger.FromState(from),
		logger.Error(err),
	)
	return res
}

// runStep invokes one pipeline step and converts a panic into an
// ActionError so no failure ever escapes Transition.
func runStep(step string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ActionError{Step: step, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if stepErr := fn(); stepErr != nil {
		return &ActionError{Step: step, Err: stepErr}
	}
	return nil
}

// resolveCandidate evaluates candidates in declared order and returns the
// first whose guard passes or that has no guard. When none pass it returns
// the first non-empty guard message among the candidates for the rejection
// error.
func resolveCandidate(ctx context.Context, candidates []TransitionDefinition, c Context, e Event) (*TransitionDefinition, string) {
	var message string
	for i := range candidates {
		t := &candidates[i]
		if t.Guard == nil || t.Guard(ctx, c, e) {
			return t, ""
		}
		if message == "" {
			message = t.GuardMessage
		}
	}
	return nil, message
}
