package workflows

import (
	"context"
	"time"

	"github.com/docflowhq/docflow/pkg/notify"
	"github.com/docflowhq/docflow/pkg/statemachine"
)

// DocTypePurchaseOrder identifies the purchase-order workflow.
const DocTypePurchaseOrder = "purchase_order"

// Purchase-order states.
const (
	PurchaseOrderDraft             = "draft"
	PurchaseOrderPendingApproval   = "pending_approval"
	PurchaseOrderApproved          = "approved"
	PurchaseOrderRejected          = "rejected"
	PurchaseOrderIssued            = "issued"
	PurchaseOrderPartiallyReceived = "partially_received"
	PurchaseOrderReceived          = "received"
	PurchaseOrderClosed            = "closed"
	PurchaseOrderCancelled         = "cancelled"
)

// Purchase-order events. SUBMIT, APPROVE, REJECT, REVISE, and CANCEL are
// shared with the quotation workflow.
const (
	EventIssue   = "ISSUE"
	EventReceive = "RECEIVE"
	EventClose   = "CLOSE"
)

// PayloadQuantity is the RECEIVE payload key carrying the delivered
// quantity.
const PayloadQuantity = "quantity"

// stampIssuedAt records when the order went out to the vendor.
func stampIssuedAt(_ context.Context, c statemachine.Context, _ statemachine.Event) error {
	c[KeyIssuedAt] = time.Now().UTC()
	return nil
}

// applyReceipt accumulates the delivered quantity into received_qty.
func applyReceipt(_ context.Context, c statemachine.Context, e statemachine.Event) error {
	c[KeyReceivedQty] = Number(c, KeyReceivedQty) + PayloadNumber(e, PayloadQuantity)
	return nil
}

// completesDelivery passes when the incoming delivery covers the remaining
// ordered quantity.
func completesDelivery(_ context.Context, c statemachine.Context, e statemachine.Event) bool {
	qty := PayloadNumber(e, PayloadQuantity)
	if qty <= 0 {
		return false
	}
	return Number(c, KeyReceivedQty)+qty >= Number(c, KeyOrderedQty)
}

// partialDelivery passes for any positive delivered quantity.
func partialDelivery(_ context.Context, _ statemachine.Context, e statemachine.Event) bool {
	return PayloadNumber(e, PayloadQuantity) > 0
}

// PurchaseOrder builds the purchase-order lifecycle: draft ->
// pending_approval -> approved/rejected with a revision cycle, issuance to
// the vendor, goods receipt with full/partial candidates, and terminal
// closed/cancelled states.
func PurchaseOrder(dispatcher notify.Dispatcher) *statemachine.Definition {
	if dispatcher == nil {
		dispatcher = notify.Noop{}
	}

	receiptCandidates := []statemachine.TransitionDefinition{
		{
			Target:  PurchaseOrderReceived,
			Guard:   completesDelivery,
			Actions: []statemachine.Action{applyReceipt, notifyAction(dispatcher, notify.LevelSuccess, "Purchase Order Received")},
		},
		{
			Target:       PurchaseOrderPartiallyReceived,
			Guard:        partialDelivery,
			GuardMessage: "Received quantity must be positive",
			Actions:      []statemachine.Action{applyReceipt},
		},
	}

	return statemachine.MustNewDefinition(DocTypePurchaseOrder, PurchaseOrderDraft,
		statemachine.WithInitialContext(statemachine.Context{
			KeyDocumentType: DocTypePurchaseOrder,
			KeyStatus:       PurchaseOrderDraft,
			KeyTotalAmount:  0.0,
			KeyOrderedQty:   0.0,
			KeyReceivedQty:  0.0,
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:        PurchaseOrderDraft,
			Label:       "Draft",
			Description: "Purchase order is being prepared",
			OnEnter:     stampStatus(PurchaseOrderDraft),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:        PurchaseOrderPendingApproval,
			Label:       "Pending Approval",
			Description: "Awaiting internal approval",
			OnEnter:     stampStatus(PurchaseOrderPendingApproval),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:    PurchaseOrderApproved,
			Label:   "Approved",
			OnEnter: stampStatus(PurchaseOrderApproved),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:    PurchaseOrderRejected,
			Label:   "Rejected",
			OnEnter: stampStatus(PurchaseOrderRejected),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:        PurchaseOrderIssued,
			Label:       "Issued",
			Description: "Sent to the vendor",
			OnEnter:     stampStatus(PurchaseOrderIssued),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:    PurchaseOrderPartiallyReceived,
			Label:   "Partially Received",
			OnEnter: stampStatus(PurchaseOrderPartiallyReceived),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:    PurchaseOrderReceived,
			Label:   "Received",
			OnEnter: stampStatus(PurchaseOrderReceived),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:    PurchaseOrderClosed,
			Label:   "Closed",
			Final:   true,
			OnEnter: stampStatus(PurchaseOrderClosed),
		}),
		statemachine.WithState(statemachine.StateDefinition{
			Name:    PurchaseOrderCancelled,
			Label:   "Cancelled",
			Final:   true,
			OnEnter: stampStatus(PurchaseOrderCancelled),
		}),

		statemachine.WithTransition(PurchaseOrderDraft, EventSubmit, statemachine.TransitionDefinition{
			Target:       PurchaseOrderPendingApproval,
			Guard:        positiveAmount,
			GuardMessage: "Cannot submit purchase order with zero amount",
		}),
		statemachine.WithTransition(PurchaseOrderPendingApproval, EventApprove, statemachine.TransitionDefinition{
			Target:  PurchaseOrderApproved,
			Actions: []statemachine.Action{notifyAction(dispatcher, notify.LevelSuccess, "Purchase Order Approved")},
		}),
		statemachine.WithTransition(PurchaseOrderPendingApproval, EventReject, statemachine.TransitionDefinition{
			Target: PurchaseOrderRejected,
		}),
		statemachine.WithTransition(PurchaseOrderRejected, EventRevise, statemachine.TransitionDefinition{
			Target: PurchaseOrderDraft,
		}),
		statemachine.WithTransition(PurchaseOrderApproved, EventIssue, statemachine.TransitionDefinition{
			Target:  PurchaseOrderIssued,
			Actions: []statemachine.Action{stampIssuedAt},
		}),
		statemachine.WithTransitions(PurchaseOrderIssued, EventReceive, receiptCandidates...),
		statemachine.WithTransitions(PurchaseOrderPartiallyReceived, EventReceive, receiptCandidates...),
		statemachine.WithTransition(PurchaseOrderReceived, EventClose, statemachine.TransitionDefinition{
			Target: PurchaseOrderClosed,
		}),
		statemachine.WithTransition(PurchaseOrderDraft, EventCancel, statemachine.TransitionDefinition{
			Target: PurchaseOrderCancelled,
		}),
		statemachine.WithTransition(PurchaseOrderPendingApproval, EventCancel, statemachine.TransitionDefinition{
			Target: PurchaseOrderCancelled,
		}),
		statemachine.WithTransition(PurchaseOrderApproved, EventCancel, statemachine.TransitionDefinition{
			Target: PurchaseOrderCancelled,
		}),
	)
}
