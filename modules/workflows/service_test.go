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

func TestService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("opens records with generated ids", func(t *testing.T) {
		t.Parallel()

		svc := workflows.NewService(workflows.Config{BusBuffer: 4}, nil)
		defer svc.Close()

		id, binding, err := svc.Open(workflows.DocTypeQuotation, statemachine.Context{workflows.KeyTotalAmount: 100.0})
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Equal(t, workflows.QuotationDraft, binding.State())
		assert.Equal(t, id, binding.Machine().Context().String(workflows.KeyRecordID))

		got, ok := svc.Get(id)
		require.True(t, ok)
		assert.Same(t, binding, got)
	})

	t.Run("rejects unknown document types", func(t *testing.T) {
		t.Parallel()

		svc := workflows.NewService(workflows.Config{BusBuffer: 4}, nil)
		defer svc.Close()

		_, _, err := svc.Open("timesheet", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown document type 'timesheet'")
	})

	t.Run("instances are isolated per record", func(t *testing.T) {
		t.Parallel()

		svc := workflows.NewService(workflows.Config{BusBuffer: 4}, nil)
		defer svc.Close()

		_, first, err := svc.Open(workflows.DocTypeQuotation, statemachine.Context{workflows.KeyTotalAmount: 100.0})
		require.NoError(t, err)
		_, second, err := svc.Open(workflows.DocTypeQuotation, statemachine.Context{workflows.KeyTotalAmount: 100.0})
		require.NoError(t, err)

		require.True(t, first.Send(ctx, workflows.EventSubmit, nil))
		assert.Equal(t, workflows.QuotationSubmitted, first.State())
		assert.Equal(t, workflows.QuotationDraft, second.State())
	})

	t.Run("publishes state changes on the bus", func(t *testing.T) {
		t.Parallel()

		svc := workflows.NewService(workflows.Config{BusBuffer: 4}, nil)
		defer svc.Close()

		sub := svc.Subscribe(ctx)
		id, binding, err := svc.Open(workflows.DocTypeQuotation, statemachine.Context{workflows.KeyTotalAmount: 100.0})
		require.NoError(t, err)

		require.True(t, binding.Send(ctx, workflows.EventSubmit, nil))

		select {
		case ev := <-sub.C():
			assert.Equal(t, statemachine.StateChanged{
				WorkflowID: workflows.DocTypeQuotation,
				RecordID:   id,
				From:       workflows.QuotationDraft,
				To:         workflows.QuotationSubmitted,
				Event:      workflows.EventSubmit,
			}, ev)
		case <-time.After(time.Second):
			t.Fatal("no state-changed event received")
		}

		// A rejected transition must not publish.
		require.False(t, binding.Send(ctx, workflows.EventSubmit, nil))
		select {
		case ev := <-sub.C():
			t.Fatalf("unexpected event: %+v", ev)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("close record discards the instance", func(t *testing.T) {
		t.Parallel()

		svc := workflows.NewService(workflows.Config{BusBuffer: 4}, nil)
		defer svc.Close()

		id, _, err := svc.Open(workflows.DocTypeInvoice, nil)
		require.NoError(t, err)

		svc.CloseRecord(id)
		_, ok := svc.Get(id)
		assert.False(t, ok)
	})

	t.Run("custom definitions can be registered", func(t *testing.T) {
		t.Parallel()

		def := statemachine.MustNewDefinition("timesheet", "open",
			statemachine.WithState(statemachine.StateDefinition{Name: "open"}),
			statemachine.WithState(statemachine.StateDefinition{Name: "closed", Final: true}),
			statemachine.WithTransition("open", "CLOSE", statemachine.TransitionDefinition{Target: "closed"}),
		)
		svc := workflows.NewService(workflows.Config{BusBuffer: 4}, nil, workflows.WithDefinition(def))
		defer svc.Close()

		_, binding, err := svc.Open("timesheet", nil)
		require.NoError(t, err)
		require.True(t, binding.Send(ctx, "CLOSE", nil))
		assert.True(t, binding.Done())
	})
}
