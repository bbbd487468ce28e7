// Package docflow is a lifecycle engine for business documents —
// quotations, invoices, purchase orders — built around a generic
// finite-state-machine core.
//
// The engine lives in pkg/statemachine: immutable workflow definitions
// (states, event-triggered guarded transitions with ordered actions,
// enter/exit hooks) executed by per-record machine instances that emit
// state-changed events on success. modules/workflows provides the built-in
// document workflows, an in-process service hosting one instance per open
// record, and an HTTP router over the binding layer.
//
// Persistence of the resulting status is deliberately external: after a
// successful transition the caller commits the new status to the system of
// record, which remains authoritative.
package docflow
