package statemachine

import "sort"

// Visualization is a plain, serializable projection of a workflow definition
// (and optionally a live instance) for external diagram renderers. The
// export is deterministic: states are ordered by name and transitions by
// (from, event, declaration order), so repeated exports of an unchanged
// definition are structurally identical.
type Visualization struct {
	ID           string                    `json:"id"`
	States       []VisualizationState      `json:"states"`
	Transitions  []VisualizationTransition `json:"transitions"`
	CurrentState string                    `json:"current_state,omitempty"`
}

// VisualizationState is one node of the diagram.
type VisualizationState struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Final bool   `json:"final"`
}

// VisualizationTransition is one directed edge of the diagram. Cycles are
// expected and appear as ordinary edge pairs.
type VisualizationTransition struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Event string `json:"event"`
}

// Visualization exports the definition as diagrammable data.
func (d *Definition) Visualization() Visualization {
	names := d.StateNames()

	states := make([]VisualizationState, 0, len(names))
	var transitions []VisualizationTransition

	for _, name := range names {
		node := d.states[name]
		label := node.def.Label
		if label == "" {
			label = name
		}
		states = append(states, VisualizationState{
			Name:  name,
			Label: label,
			Final: node.def.Final,
		})

		events := make([]string, 0, len(node.on))
		for event := range node.on {
			events = append(events, event)
		}
		sort.Strings(events)

		for _, event := range events {
			for _, t := range node.on[event] {
				transitions = append(transitions, VisualizationTransition{
					From:  name,
					To:    t.Target,
					Event: event,
				})
			}
		}
	}

	return Visualization{
		ID:          d.id,
		States:      states,
		Transitions: transitions,
	}
}

// Visualization exports the definition with the instance's current state
// marked.
func (m *Machine) Visualization() Visualization {
	v := m.def.Visualization()
	v.CurrentState = m.Current()
	return v
}
