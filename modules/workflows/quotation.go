package workflows

import (
	"github.com/docflowhq/docflow/pkg/notify"
	"github.com/docflowhq/docflow/pkg/statemachine"
)

// DocTypeQuotation identifies the quotation workflow.
const DocTypeQuotation = "quotation"

// Quotation states.
const (
	QuotationDraft     = "draft"
	QuotationSubmitted = "submitted"
	QuotationApproved  = "approved"
	QuotationRejected  = "rejected"
	QuotationConverted = "converted"
	QuotationCancelled = "cancelled"
)

// Quotation events.
const (
	EventSubmit  = "SUBMIT"
	EventApprove = "APPROVE"
	EventReject  = "REJECT"
	EventRevise  = "REVISE"
	EventConvert = "CONVERT"
	EventCancel  = "CANCEL"
)

// Quotation builds the quotation lifecycle: draft -> submitted ->
// approved/rejected, with a revision cycle back to draft and terminal
// converted/cancelled states. Submission is guarded on a positive total.
func Quotation(dispatcher notify.Dispatcher) *statemachine.Definition {
	if dispatcher == nil {
		dispatcher = notify.Noop{}
	}

	return statemachine.MustNewDefinition(DocTypeQuotation, QuotationDraft,
		statemachine.WithInitialContext(statemachine.Context{
			KeyDocumentType: DocTypeQuotation,
			KeyStatus:       QuotationDraft,
			KeyTotalAmount:  0.0,
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:        QuotationDraft,
			Label:       "Draft",
			Description: "Quotation is being prepared",
			OnEnter:     stampStatus(QuotationDraft),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:        QuotationSubmitted,
			Label:       "Submitted",
			Description: "Awaiting customer decision",
			OnEnter:     stampStatus(QuotationSubmitted),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:        QuotationApproved,
			Label:       "Approved",
			Description: "Customer accepted the quotation",
			OnEnter:     stampStatus(QuotationApproved),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:        QuotationRejected,
			Label:       "Rejected",
			Description: "Customer declined the quotation",
			OnEnter:     stampStatus(QuotationRejected),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:    QuotationConverted,
			Label:   "Converted",
			Final:   true,
			OnEnter: stampStatus(QuotationConverted),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:    QuotationCancelled,
			Label:   "Cancelled",
			Final:   true,
			OnEnter: stampStatus(QuotationCancelled),
		}),

		statemachine.WithTransition(QuotationDraft, EventSubmit, statemachine.TransitionDefinition{
			Target:       QuotationSubmitted,
			Guard:        positiveAmount,
			GuardMessage: "Cannot submit quotation with zero amount",
		}),
		statemachine.WithTransition(QuotationSubmitted, EventApprove, statemachine.TransitionDefinition{
			Target:  QuotationApproved,
			Actions: []statemachine.Action{notifyAction(dispatcher, notify.LevelSuccess, "Quotation Approved")},
		}),
		statemachine.WithTransition(QuotationSubmitted, EventReject, statemachine.TransitionDefinition{
			Target:  QuotationRejected,
			Actions: []statemachine.Action{notifyAction(dispatcher, notify.LevelWarning, "Quotation Rejected")},
		}),
		statemachine.WithTransition(QuotationRejected, EventRevise, statemachine.TransitionDefinition{
			Target: QuotationDraft,
		}),
		statemachine.WithTransition(QuotationApproved, EventConvert, statemachine.TransitionDefinition{
			Target: QuotationConverted,
		}),
		statemachine.WithTransition(QuotationDraft, EventCancel, statemachine.TransitionDefinition{
			Target: QuotationCancelled,
		}),
		statemachine.WithTransition(QuotationSubmitted, EventCancel, statemachine.TransitionDefinition{
			Target: QuotationCancelled,
		}),
	)
}
