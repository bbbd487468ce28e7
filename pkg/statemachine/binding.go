package statemachine

import (
	"context"
	"sync"
)

// genericErrorMessage is shown for failures whose message is not meant for
// end users (reentrancy, configuration defects, action errors).
const genericErrorMessage = "action failed, please retry"

// Binding is a thin adapter over a Machine for UI consumption: reactive-style
// reads of the current state plus a Send wrapper that remembers the last
// failure for display. It owns no business rules.
type Binding struct {
	machine *Machine

	mu      sync.Mutex
	lastErr error
}

// NewBinding wraps a machine instance.
func NewBinding(m *Machine) *Binding {
	return &Binding{machine: m}
}

// Machine returns the wrapped instance.
func (b *Binding) Machine() *Machine {
	return b.machine
}

// State returns the current state name.
func (b *Binding) State() string {
	return b.machine.Current()
}

// Label returns the current state's human label, falling back to its name.
func (b *Binding) Label() string {
	def, ok := b.machine.def.State(b.machine.Current())
	if !ok || def.Label == "" {
		return b.machine.Current()
	}
	return def.Label
}

// Description returns the current state's description, if any.
func (b *Binding) Description() string {
	def, _ := b.machine.def.State(b.machine.Current())
	return def.Description
}

// Done reports whether the record reached a final state.
func (b *Binding) Done() bool {
	return b.machine.Done()
}

// Events returns the events currently available to the user.
func (b *Binding) Events() []string {
	return b.machine.AvailableEvents()
}

// Can reports whether the event would currently be accepted.
func (b *Binding) Can(ctx context.Context, event string) bool {
	return b.machine.CanTransition(ctx, event, nil)
}

// Send fires the event and records the failure, if any, for display.
func (b *Binding) Send(ctx context.Context, event string, payload map[string]any) bool {
	res := b.machine.Transition(ctx, event, payload)

	b.mu.Lock()
	b.lastErr = res.Err
	b.mu.Unlock()

	return res.Success
}

// LastError returns the error from the most recent Send, or nil.
func (b *Binding) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// ErrorMessage renders the last failure for display: guard rejections carry
// business-meaningful text and are shown verbatim, everything else is
// rendered generically.
func (b *Binding) ErrorMessage() string {
	err := b.LastError()
	if err == nil {
		return ""
	}
	if IsGuardRejectedError(err) {
		return err.Error()
	}
	return genericErrorMessage
}
