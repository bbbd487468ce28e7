package workflows_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docflowhq/docflow/modules/workflows"
	"github.com/docflowhq/docflow/pkg/statemachine"
)

func issuedPurchaseOrder(t *testing.T, orderedQty float64) *statemachine.Machine {
	t.Helper()
	ctx := context.Background()

	m := statemachine.MustNew(workflows.PurchaseOrder(nil),
		statemachine.WithContextOverrides(statemachine.Context{
			workflows.KeyTotalAmount: 2500.0,
			workflows.KeyOrderedQty:  orderedQty,
		}),
	)
	require.True(t, m.Transition(ctx, workflows.EventSubmit, nil).Success)
	require.True(t, m.Transition(ctx, workflows.EventApprove, nil).Success)
	require.True(t, m.Transition(ctx, workflows.EventIssue, nil).Success)
	return m
}

func TestPurchaseOrderWorkflow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects submission with zero amount", func(t *testing.T) {
		t.Parallel()

		m := statemachine.MustNew(workflows.PurchaseOrder(nil))
		res := m.Transition(ctx, workflows.EventSubmit, nil)
		require.False(t, res.Success)
		assert.Equal(t, "Cannot submit purchase order with zero amount", res.ErrorMessage())
	})

	t.Run("approval dispatches a notification", func(t *testing.T) {
		t.Parallel()

		dispatcher := &recordingDispatcher{}
		m := statemachine.MustNew(workflows.PurchaseOrder(dispatcher),
			statemachine.WithContextOverrides(statemachine.Context{workflows.KeyTotalAmount: 2500.0}),
		)
		require.True(t, m.Transition(ctx, workflows.EventSubmit, nil).Success)
		require.True(t, m.Transition(ctx, workflows.EventApprove, nil).Success)

		assert.Equal(t, []string{"Purchase Order Approved"}, dispatcher.sent())
		assert.Equal(t, workflows.PurchaseOrderApproved, m.Current())
	})

	t.Run("rejection cycles back through revision", func(t *testing.T) {
		t.Parallel()

		m := statemachine.MustNew(workflows.PurchaseOrder(nil),
			statemachine.WithContextOverrides(statemachine.Context{workflows.KeyTotalAmount: 2500.0}),
		)
		require.True(t, m.Transition(ctx, workflows.EventSubmit, nil).Success)
		require.True(t, m.Transition(ctx, workflows.EventReject, nil).Success)
		require.True(t, m.Transition(ctx, workflows.EventRevise, nil).Success)
		assert.Equal(t, workflows.PurchaseOrderDraft, m.Current())
	})

	t.Run("issuance stamps the issue time", func(t *testing.T) {
		t.Parallel()

		m := issuedPurchaseOrder(t, 10)
		issuedAt, ok := m.Context()[workflows.KeyIssuedAt].(time.Time)
		require.True(t, ok)
		assert.WithinDuration(t, time.Now(), issuedAt, time.Minute)
	})

	t.Run("full delivery resolves to received", func(t *testing.T) {
		t.Parallel()

		m := issuedPurchaseOrder(t, 10)
		res := m.Transition(ctx, workflows.EventReceive, map[string]any{workflows.PayloadQuantity: 10.0})
		require.True(t, res.Success)
		assert.Equal(t, workflows.PurchaseOrderReceived, m.Current())
		assert.Equal(t, 10.0, workflows.Number(m.Context(), workflows.KeyReceivedQty))

		require.True(t, m.Transition(ctx, workflows.EventClose, nil).Success)
		assert.True(t, m.Done())
	})

	t.Run("partial deliveries accumulate", func(t *testing.T) {
		t.Parallel()

		m := issuedPurchaseOrder(t, 10)
		require.True(t, m.Transition(ctx, workflows.EventReceive, map[string]any{workflows.PayloadQuantity: 4.0}).Success)
		assert.Equal(t, workflows.PurchaseOrderPartiallyReceived, m.Current())

		require.True(t, m.Transition(ctx, workflows.EventReceive, map[string]any{workflows.PayloadQuantity: 6.0}).Success)
		assert.Equal(t, workflows.PurchaseOrderReceived, m.Current())
		assert.Equal(t, 10.0, workflows.Number(m.Context(), workflows.KeyReceivedQty))
	})

	t.Run("rejects a non-positive delivery", func(t *testing.T) {
		t.Parallel()

		m := issuedPurchaseOrder(t, 10)
		res := m.Transition(ctx, workflows.EventReceive, map[string]any{workflows.PayloadQuantity: 0.0})
		require.False(t, res.Success)
		assert.Equal(t, "Received quantity must be positive", res.ErrorMessage())
		assert.Equal(t, workflows.PurchaseOrderIssued, m.Current())
	})

	t.Run("cancellation is available until issuance", func(t *testing.T) {
		t.Parallel()

		m := statemachine.MustNew(workflows.PurchaseOrder(nil),
			statemachine.WithContextOverrides(statemachine.Context{workflows.KeyTotalAmount: 2500.0}),
		)
		require.True(t, m.Transition(ctx, workflows.EventSubmit, nil).Success)
		require.True(t, m.Transition(ctx, workflows.EventApprove, nil).Success)
		require.True(t, m.Transition(ctx, workflows.EventCancel, nil).Success)
		assert.True(t, m.Done())

		issued := issuedPurchaseOrder(t, 10)
		res := issued.Transition(ctx, workflows.EventCancel, nil)
		require.False(t, res.Success)
		assert.True(t, statemachine.IsNoTransitionError(res.Err))
	})
}
