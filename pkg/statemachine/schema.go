package statemachine

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Registry resolves the guard, action, and hook names referenced by a YAML
// workflow document to their Go implementations. Registration happens once
// at startup; lookups during parsing are read-only.
type Registry struct {
	guards  map[string]Guard
	actions map[string]Action
	hooks   map[string]Hook
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		guards:  make(map[string]Guard),
		actions: make(map[string]Action),
		hooks:   make(map[string]Hook),
	}
}

// RegisterGuard binds a guard implementation to a name. Re-registering a
// name replaces the previous binding.
func (r *Registry) RegisterGuard(name string, g Guard) *Registry {
	r.guards[name] = g
	return r
}

// RegisterAction binds an action implementation to a name.
func (r *Registry) RegisterAction(name string, a Action) *Registry {
	r.actions[name] = a
	return r
}

// RegisterHook binds an enter/exit hook implementation to a name.
func (r *Registry) RegisterHook(name string, h Hook) *Registry {
	r.hooks[name] = h
	return r
}

type schemaDoc struct {
	ID          string         `yaml:"id"`
	Initial     string         `yaml:"initial"`
	Context     map[string]any `yaml:"context"`
	States      []schemaState  `yaml:"states"`
	Transitions []schemaEdge   `yaml:"transitions"`
}

type schemaState struct {
	Name        string `yaml:"name"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Final       bool   `yaml:"final"`
	Enter       string `yaml:"enter"`
	Exit        string `yaml:"exit"`
}

type schemaEdge struct {
	From         string   `yaml:"from"`
	Event        string   `yaml:"event"`
	To           string   `yaml:"to"`
	Guard        string   `yaml:"guard"`
	GuardMessage string   `yaml:"guard_message"`
	Actions      []string `yaml:"actions"`
}

// ParseDefinition builds a Definition from a declarative YAML document,
// resolving guard, action, and hook references against the registry.
// Several transition entries sharing one (from, event) pair form an ordered
// candidate list in document order. Unknown references are load errors.
func ParseDefinition(data []byte, reg *Registry) (*Definition, error) {
	if reg == nil {
		reg = NewRegistry()
	}

	var doc schemaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workflow document: %w", err)
	}

	opts := make([]DefinitionOption, 0, len(doc.States)+len(doc.Transitions)+1)
	if doc.Context != nil {
		opts = append(opts, WithInitialContext(Context(doc.Context)))
	}

	for _, s := range doc.States {
		def := StateDefinition{
			Name:        s.Name,
			Label:       s.Label,
			Description: s.Description,
			Final:       s.Final,
		}
		if s.Enter != "" {
			hook, ok := reg.hooks[s.Enter]
			if !ok {
				return nil, fmt.Errorf("workflow '%s': state '%s' references unknown hook '%s'", doc.ID, s.Name, s.Enter)
			}
			def.OnEnter = hook
		}
		if s.Exit != "" {
			hook, ok := reg.hooks[s.Exit]
			if !ok {
				return nil, fmt.Errorf("workflow '%s': state '%s' references unknown hook '%s'", doc.ID, s.Name, s.Exit)
			}
			def.OnExit = hook
		}
		opts = append(opts, WithState(def))
	}

	for _, edge := range doc.Transitions {
		t := TransitionDefinition{
			Target:       edge.To,
			GuardMessage: edge.GuardMessage,
		}
		if edge.Guard != "" {
			guard, ok := reg.guards[edge.Guard]
			if !ok {
				return nil, fmt.Errorf("workflow '%s': transition '%s' references unknown guard '%s'", doc.ID, edge.Event, edge.Guard)
			}
			t.Guard = guard
		}
		for _, name := range edge.Actions {
			action, ok := reg.actions[name]
			if !ok {
				return nil, fmt.Errorf("workflow '%s': transition '%s' references unknown action '%s'", doc.ID, edge.Event, name)
			}
			t.Actions = append(t.Actions, action)
		}
		opts = append(opts, WithTransition(edge.From, edge.Event, t))
	}

	return NewDefinition(doc.ID, doc.Initial, opts...)
}
