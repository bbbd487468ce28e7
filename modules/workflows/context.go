package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/docflowhq/docflow/pkg/notify"
	"github.com/docflowhq/docflow/pkg/statemachine"
)

// Shared context keys across document workflows. Values are written by
// callers seeding an instance from a record and mutated by workflow actions.
const (
	KeyRecordID     = statemachine.KeyRecordID
	KeyDocumentType = "document_type"
	KeyStatus       = "status"
	KeyTotalAmount  = "total_amount"
	KeyPaidAmount   = "paid_amount"
	KeyDueDate      = "due_date"
	KeyIssuedAt     = "issued_at"
	KeyOrderedQty   = "ordered_qty"
	KeyReceivedQty  = "received_qty"
)

// Number reads a numeric context value, coercing the integer and float
// types that JSON decoding and YAML seeds produce. Missing or non-numeric
// values read as 0.
func Number(c statemachine.Context, key string) float64 {
	return coerceNumber(c[key])
}

// PayloadNumber reads a numeric value from an event payload.
func PayloadNumber(e statemachine.Event, key string) float64 {
	if e.Payload == nil {
		return 0
	}
	return coerceNumber(e.Payload[key])
}

func coerceNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	default:
		return 0
	}
}

// stampStatus returns an enter hook writing the state's business status into
// the context, keeping the record's mirrored status field in sync.
func stampStatus(status string) statemachine.Hook {
	return func(_ context.Context, c statemachine.Context) error {
		c[KeyStatus] = status
		return nil
	}
}

// notifyAction returns a transition action that dispatches a user-facing
// notification. Dispatch failure fails the transition.
func notifyAction(dispatcher notify.Dispatcher, level notify.Level, title string) statemachine.Action {
	return func(ctx context.Context, c statemachine.Context, _ statemachine.Event) error {
		body := fmt.Sprintf("%s record %s", c.String(KeyDocumentType), c.String(KeyRecordID))
		return dispatcher.Notify(ctx, level, title, body)
	}
}

// positiveAmount guards on a positive total_amount.
func positiveAmount(_ context.Context, c statemachine.Context, _ statemachine.Event) bool {
	return Number(c, KeyTotalAmount) > 0
}

// pastDue guards on the record's due date having passed. A record without a
// due date is never overdue.
func pastDue(_ context.Context, c statemachine.Context, _ statemachine.Event) bool {
	due, ok := c[KeyDueDate].(time.Time)
	return ok && time.Now().After(due)
}
