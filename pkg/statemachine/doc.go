// Package statemachine provides a generic finite-state-machine engine for
// business document lifecycles: named states, event-triggered guarded
// transitions, ordered side-effecting actions, and enter/exit hooks, composed
// into per-document-type workflow definitions.
//
// The package separates the immutable workflow description from its runtime:
//
//  1. Definition — the full state table plus the adjacency map of
//     transitions, built once via functional options (or loaded from a
//     declarative YAML document) and shared across many instances.
//  2. Machine — one live instance per open record: current state, mutable
//     business context, and a busy flag guarding against reentrant calls.
//
// # Architecture
//
// The state table is an adjacency map, state -> event -> ordered candidate
// list, so cyclic workflow graphs (rejected -> submitted -> rejected) are
// first class. An event may map to several transition candidates with
// complementary guards; Transition evaluates them in declared order and the
// first candidate whose guard passes wins. The single-transition case is a
// length-1 candidate list.
//
// A transition runs a strictly sequential pipeline: the source state's exit
// hook, each transition action in order, the state swap, then the target
// state's enter hook. Actions mutate the context in place. On a step
// failure the pipeline stops, the busy flag is cleared, and mutations
// already applied are retained; callers should treat the instance as
// needing re-synchronization from the authoritative record. The optional
// WithRollbackOnFailure restores a pre-transition snapshot instead.
//
// No failure ever escapes Transition: every path returns a TransitionResult
// with a typed error that predicates such as IsGuardRejectedError and
// IsReentrancyError can classify.
//
// # Usage
//
//	def := statemachine.MustNewDefinition("quotation", "draft",
//	    statemachine.WithState(statemachine.StateDefinition{Name: "draft", Label: "Draft"}),
//	    statemachine.WithState(statemachine.StateDefinition{Name: "submitted", Label: "Submitted"}),
//	    statemachine.WithTransition("draft", "SUBMIT", statemachine.TransitionDefinition{
//	        Target: "submitted",
//	        Guard: func(ctx context.Context, c statemachine.Context, e statemachine.Event) bool {
//	            amount, _ := c["total_amount"].(float64)
//	            return amount > 0
//	        },
//	        GuardMessage: "Cannot submit quotation with zero amount",
//	    }),
//	)
//
//	m := statemachine.MustNew(def,
//	    statemachine.WithContextOverrides(statemachine.Context{"total_amount": 100000.0}),
//	)
//
//	res := m.Transition(ctx, "SUBMIT", nil)
//	if !res.Success {
//	    // res.Err classifies the failure; guard messages are display-ready.
//	}
//
// # Concurrency
//
// Each Machine is exclusively owned by its caller. A Transition call issued
// while another is in flight on the same instance fails immediately with a
// reentrancy error; there is no internal queue. Instances never share
// context, so parallel transitions on different instances are always safe.
// Transitions, once started, are not cancellable by the engine; actions
// performing I/O should carry their own timeouts via the context.Context
// they receive and return an error, which the engine treats like any other
// action failure.
//
// # Visualization
//
// Visualization exports a definition (and optionally an instance's current
// state) as a deterministic, JSON-serializable structure for external
// diagram renderers.
//
// # Binding
//
// Binding is a thin adapter for UI consumption: Send wraps Transition and
// tracks the last error, ErrorMessage renders guard rejections verbatim and
// everything else generically. It owns no business rules.
package statemachine
