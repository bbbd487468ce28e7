package workflows

import (
	"context"

	"github.com/docflowhq/docflow/pkg/notify"
	"github.com/docflowhq/docflow/pkg/statemachine"
)

// DocTypeInvoice identifies the invoice workflow.
const DocTypeInvoice = "invoice"

// Invoice states.
const (
	InvoiceDraft         = "draft"
	InvoiceSent          = "sent"
	InvoicePartiallyPaid = "partially_paid"
	InvoicePaid          = "paid"
	InvoiceOverdue       = "overdue"
	InvoiceVoided        = "voided"
)

// Invoice events.
const (
	EventSend          = "SEND"
	EventRecordPayment = "RECORD_PAYMENT"
	EventMarkOverdue   = "MARK_OVERDUE"
	EventVoid          = "VOID"
)

// PayloadAmount is the RECORD_PAYMENT payload key carrying the payment
// amount.
const PayloadAmount = "amount"

// applyPayment accumulates the payment amount into paid_amount.
func applyPayment(_ context.Context, c statemachine.Context, e statemachine.Event) error {
	c[KeyPaidAmount] = Number(c, KeyPaidAmount) + PayloadNumber(e, PayloadAmount)
	return nil
}

// settlesInFull passes when the incoming payment clears the open balance.
func settlesInFull(_ context.Context, c statemachine.Context, e statemachine.Event) bool {
	amount := PayloadNumber(e, PayloadAmount)
	if amount <= 0 {
		return false
	}
	return Number(c, KeyPaidAmount)+amount >= Number(c, KeyTotalAmount)
}

// partialPayment passes for any positive payment. Declared after
// settlesInFull in the candidate list, so it only wins when the balance
// stays open.
func partialPayment(_ context.Context, _ statemachine.Context, e statemachine.Event) bool {
	return PayloadNumber(e, PayloadAmount) > 0
}

// Invoice builds the invoice lifecycle: draft -> sent, payments recorded
// against sent/partially_paid/overdue with full settlement resolving to
// paid, an overdue marker guarded on the due date, and a terminal voided
// state.
func Invoice(dispatcher notify.Dispatcher) *statemachine.Definition {
	if dispatcher == nil {
		dispatcher = notify.Noop{}
	}

	// Full settlement is declared first: an exact or overpaying amount must
	// resolve to paid, never partially_paid.
	paymentCandidates := []statemachine.TransitionDefinition{
		{
			Target:  InvoicePaid,
			Guard:   settlesInFull,
			Actions: []statemachine.Action{applyPayment, notifyAction(dispatcher, notify.LevelSuccess, "Invoice Paid")},
		},
		{
			Target:       InvoicePartiallyPaid,
			Guard:        partialPayment,
			GuardMessage: "Payment amount must be positive",
			Actions:      []statemachine.Action{applyPayment},
		},
	}

	return statemachine.MustNewDefinition(DocTypeInvoice, InvoiceDraft,
		statemachine.WithInitialContext(statemachine.Context{
			KeyDocumentType: DocTypeInvoice,
			KeyStatus:       InvoiceDraft,
			KeyTotalAmount:  0.0,
			KeyPaidAmount:   0.0,
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:        InvoiceDraft,
			Label:       "Draft",
			Description: "Invoice is being prepared",
			OnEnter:     stampStatus(InvoiceDraft),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:        InvoiceSent,
			Label:       "Sent",
			Description: "Awaiting payment",
			OnEnter:     stampStatus(InvoiceSent),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:        InvoicePartiallyPaid,
			Label:       "Partially Paid",
			Description: "Part of the balance is settled",
			OnEnter:     stampStatus(InvoicePartiallyPaid),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:    InvoicePaid,
			Label:   "Paid",
			Final:   true,
			OnEnter: stampStatus(InvoicePaid),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:        InvoiceOverdue,
			Label:       "Overdue",
			Description: "Payment due date has passed",
			OnEnter:     stampStatus(InvoiceOverdue),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:    InvoiceVoided,
			Label:   "Voided",
			Final:   true,
			OnEnter: stampStatus(InvoiceVoided),
		}),

		statemachine.WithTransition(InvoiceDraft, EventSend, statemachine.TransitionDefinition{
			Target:       InvoiceSent,
			Guard:        positiveAmount,
			GuardMessage: "Cannot send invoice with zero amount",
		}),
		statemachine.WithTransitions(InvoiceSent, EventRecordPayment, paymentCandidates...),
		statemachine.WithTransitions(InvoicePartiallyPaid, EventRecordPayment, paymentCandidates...),
		statemachine.WithTransitions(InvoiceOverdue, EventRecordPayment, paymentCandidates...),
		statemachine.WithTransition(InvoiceSent, EventMarkOverdue, statemachine.TransitionDefinition{
			Target:       InvoiceOverdue,
			Guard:        pastDue,
			GuardMessage: "Invoice is not past its due date",
			Actions:      []statemachine.Action{notifyAction(dispatcher, notify.LevelWarning, "Invoice Overdue")},
		}),
		statemachine.WithTransition(InvoicePartiallyPaid, EventMarkOverdue, statemachine.TransitionDefinition{
			Target:       InvoiceOverdue,
			Guard:        pastDue,
			GuardMessage: "Invoice is not past its due date",
		}),
		statemachine.WithTransition(InvoiceDraft, EventVoid, statemachine.TransitionDefinition{
			Target: InvoiceVoided,
		}),
		statemachine.WithTransition(InvoiceSent, EventVoid, statemachine.TransitionDefinition{
			Target: InvoiceVoided,
		}),
	)
}
