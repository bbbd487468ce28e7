package statemachine

import (
	"context"
	"maps"
)

// KeyRecordID is the context key holding the identifier of the business
// record a machine instance is bound to. It is included in every
// StateChanged event so listeners can correlate transitions with records.
const KeyRecordID = "record_id"

// Context carries the extended business state of a record alongside its
// current workflow state. Actions and hooks mutate it in place during a
// transition; outside of a transition it changes only via UpdateContext.
type Context map[string]any

// Clone returns a shallow copy of the context.
func (c Context) Clone() Context {
	if c == nil {
		return Context{}
	}
	return maps.Clone(c)
}

// Merge copies all fields from partial into the context, overwriting
// existing keys.
func (c Context) Merge(partial Context) {
	maps.Copy(c, partial)
}

// String returns the string stored under key, or "" when absent or of a
// different type.
func (c Context) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// Event is a named trigger with an optional payload supplied by the caller.
type Event struct {
	Name    string
	Payload map[string]any
}

// Guard decides whether a transition candidate may be taken. Guards must be
// pure: the engine evaluates them from CanTransition probes as well as from
// Transition, and a rejected transition must leave no observable trace.
type Guard func(ctx context.Context, c Context, e Event) bool

// Action executes a side effect during a transition and may mutate the
// context in place. Returning an error aborts the transition.
type Action func(ctx context.Context, c Context, e Event) error

// Hook runs when a state is entered or exited. Enter hooks observe the
// context after all transition actions have applied their mutations.
type Hook func(ctx context.Context, c Context) error

// StateDefinition describes one lifecycle stage of a document.
type StateDefinition struct {
	Name        string
	Label       string
	Description string
	Final       bool
	OnEnter     Hook
	OnExit      Hook
}

// TransitionDefinition is one candidate edge for an event. An event may map
// to several candidates with complementary guards; the first candidate whose
// guard passes (or that has no guard) wins.
type TransitionDefinition struct {
	Target       string
	Guard        Guard
	GuardMessage string
	Actions      []Action
}

// StateChanged is published to the configured Publisher after a transition
// completes successfully.
type StateChanged struct {
	WorkflowID string `json:"workflow_id"`
	RecordID   string `json:"record_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Event      string `json:"event"`
}

// Publisher receives state-changed events. Publish failures are logged by
// the machine and never surface in a TransitionResult.
type Publisher interface {
	Publish(ctx context.Context, ev StateChanged) error
}
