package statemachine

import (
	"fmt"
	"sort"
)

// Definition is an immutable description of one document workflow: the full
// state table plus the adjacency map of event-triggered transitions. A
// single Definition is built once and shared by many Machine instances.
type Definition struct {
	id             string
	initial        string
	initialContext Context
	states         map[string]*stateNode
	// declaration order of states, kept for stable validation errors
	order []string
}

type stateNode struct {
	def StateDefinition
	on  map[string][]TransitionDefinition
}

// DefinitionOption configures a Definition during construction.
type DefinitionOption func(*Definition) error

// NewDefinition builds and validates a workflow definition. It fails fast on
// an unknown initial state, duplicate state names, or transitions whose
// source or target state is missing from the state table.
func NewDefinition(id, initial string, opts ...DefinitionOption) (*Definition, error) {
	if id == "" {
		return nil, fmt.Errorf("workflow id cannot be empty")
	}
	if initial == "" {
		return nil, fmt.Errorf("workflow '%s': initial state cannot be empty", id)
	}

	d := &Definition{
		id:             id,
		initial:        initial,
		initialContext: Context{},
		states:         make(map[string]*stateNode),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, fmt.Errorf("workflow '%s': %w", id, err)
		}
	}

	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("workflow '%s': %w", id, err)
	}

	return d, nil
}

// MustNewDefinition is like NewDefinition but panics on error. Workflow
// definitions are static configuration; a broken one should prevent startup.
func MustNewDefinition(id, initial string, opts ...DefinitionOption) *Definition {
	d, err := NewDefinition(id, initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build workflow definition: %v", err))
	}
	return d
}

// WithInitialContext sets the seed context every new instance starts from.
// The map is cloned so instances never share it.
func WithInitialContext(c Context) DefinitionOption {
	return func(d *Definition) error {
		d.initialContext = c.Clone()
		return nil
	}
}

// WithState adds a state to the table.
func WithState(def StateDefinition) DefinitionOption {
	return func(d *Definition) error {
		if def.Name == "" {
			return fmt.Errorf("state name cannot be empty")
		}
		if _, exists := d.states[def.Name]; exists {
			return fmt.Errorf("duplicate state '%s'", def.Name)
		}
		d.states[def.Name] = &stateNode{
			def: def,
			on:  make(map[string][]TransitionDefinition),
		}
		d.order = append(d.order, def.Name)
		return nil
	}
}

// WithTransition appends one transition candidate for the given event on the
// given source state. Calling it repeatedly for the same (from, event) pair
// builds an ordered candidate list; candidates are resolved in declaration
// order at fire time.
func WithTransition(from, event string, t TransitionDefinition) DefinitionOption {
	return func(d *Definition) error {
		if from == "" || event == "" || t.Target == "" {
			return fmt.Errorf("transition requires source state, event, and target")
		}
		node, ok := d.states[from]
		if !ok {
			return fmt.Errorf("transition '%s' declared on unknown state '%s'", event, from)
		}
		node.on[event] = append(node.on[event], t)
		return nil
	}
}

// WithTransitions appends several candidates for one event at once,
// preserving their order.
func WithTransitions(from, event string, ts ...TransitionDefinition) DefinitionOption {
	return func(d *Definition) error {
		if len(ts) == 0 {
			return fmt.Errorf("transition '%s' from state '%s' has no candidates", event, from)
		}
		for _, t := range ts {
			if err := WithTransition(from, event, t)(d); err != nil {
				return err
			}
		}
		return nil
	}
}

func (d *Definition) validate() error {
	if _, ok := d.states[d.initial]; !ok {
		return fmt.Errorf("initial state '%s' is not defined", d.initial)
	}
	for _, name := range d.order {
		node := d.states[name]
		for event, candidates := range node.on {
			for _, t := range candidates {
				if _, ok := d.states[t.Target]; !ok {
					return fmt.Errorf("transition '%s' from state '%s' targets unknown state '%s'", event, name, t.Target)
				}
			}
		}
	}
	return nil
}

// ID returns the workflow identifier.
func (d *Definition) ID() string {
	return d.id
}

// InitialState returns the name of the state new instances start in.
func (d *Definition) InitialState() string {
	return d.initial
}

// InitialContext returns a copy of the seed context.
func (d *Definition) InitialContext() Context {
	return d.initialContext.Clone()
}

// State looks up a state definition by name.
func (d *Definition) State(name string) (StateDefinition, bool) {
	node, ok := d.states[name]
	if !ok {
		return StateDefinition{}, false
	}
	return node.def, true
}

// StateNames returns all state names in lexical order.
func (d *Definition) StateNames() []string {
	names := make([]string, 0, len(d.states))
	for name := range d.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Events returns the event names with an outgoing mapping from the given
// state, in lexical order. Final and leaf states yield an empty slice.
func (d *Definition) Events(state string) []string {
	node, ok := d.states[state]
	if !ok {
		return nil
	}
	events := make([]string, 0, len(node.on))
	for event := range node.on {
		events = append(events, event)
	}
	sort.Strings(events)
	return events
}

// candidates returns the ordered transition candidates for an event, or nil
// when the state has no mapping for it.
func (d *Definition) candidates(state, event string) []TransitionDefinition {
	node, ok := d.states[state]
	if !ok {
		return nil
	}
	return node.on[event]
}
