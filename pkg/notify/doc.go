// Package notify provides the notification dispatcher abstraction invoked
// from workflow actions and hooks, e.g. to announce "Quotation Approved".
//
// The Dispatcher interface is deliberately tiny — Notify(ctx, level, title,
// body) — so workflow definitions stay decoupled from delivery mechanics.
// Three implementations cover the common setups:
//
//   - SlogDispatcher writes to a structured logger and never fails.
//   - BusDispatcher publishes to an in-process event bus for live UIs.
//   - Multi fans out to several channels best effort.
//
// A dispatcher used directly inside a workflow action is fallible by
// contract: its error fails the transition. Wrap channels in Multi when
// delivery should be best effort instead.
package notify
