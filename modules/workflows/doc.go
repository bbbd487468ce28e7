// Package workflows contains the per-document-type workflow definitions —
// quotation, invoice, and purchase order — plus an in-process service that
// hosts one machine instance per open record and a chi router exposing
// transitions and visualization over HTTP.
//
// Each definition is pure configuration over the statemachine engine: the
// business rules live in guards ("Cannot submit quotation with zero
// amount"), side effects in ordered actions (accumulating paid_amount,
// dispatching "Quotation Approved" notifications), and status mirroring in
// enter hooks. An event may map to several candidates; the invoice
// RECORD_PAYMENT event, for example, resolves to paid when the payment
// settles the balance in full and to partially_paid otherwise, by declaring
// the full-settlement candidate first.
//
// The service does not persist anything: after a successful transition the
// caller commits the new status (mirrored in the context's status field) to
// the external system of record, which remains authoritative.
package workflows
