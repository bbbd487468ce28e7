package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docflowhq/docflow/pkg/eventbus"
)

func TestBusPublishSubscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("delivers to all subscribers", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New[string](4)
		defer bus.Close()

		first := bus.Subscribe(ctx)
		second := bus.Subscribe(ctx)

		require.NoError(t, bus.Publish(ctx, "hello"))

		assert.Equal(t, "hello", <-first.C())
		assert.Equal(t, "hello", <-second.C())
	})

	t.Run("publish never blocks on a full subscriber", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New[int](1)
		defer bus.Close()

		slow := bus.Subscribe(ctx)
		_ = slow

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 10; i++ {
				assert.NoError(t, bus.Publish(ctx, i))
			}
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("publish blocked on a slow subscriber")
		}
	})

	t.Run("publish after close returns ErrClosed", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New[string](1)
		require.NoError(t, bus.Close())
		assert.ErrorIs(t, bus.Publish(ctx, "late"), eventbus.ErrClosed)
	})

	t.Run("close is idempotent and closes subscriptions", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New[string](1)
		sub := bus.Subscribe(ctx)

		require.NoError(t, bus.Close())
		require.NoError(t, bus.Close())

		_, open := <-sub.C()
		assert.False(t, open)
	})

	t.Run("subscribe after close returns a closed subscription", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New[string](1)
		require.NoError(t, bus.Close())

		sub := bus.Subscribe(ctx)
		_, open := <-sub.C()
		assert.False(t, open)
	})

	t.Run("close does not wait for live subscriber contexts", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New[string](1)

		subCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		sub := bus.Subscribe(subCtx)

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			assert.NoError(t, bus.Close())
		}()

		select {
		case <-closed:
		case <-time.After(2 * time.Second):
			t.Fatal("close blocked on a live subscriber context")
		}

		_, open := <-sub.C()
		assert.False(t, open)
	})

	t.Run("context cancellation cleans up the subscription", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New[string](1)
		defer bus.Close()

		subCtx, cancel := context.WithCancel(ctx)
		sub := bus.Subscribe(subCtx)
		cancel()

		require.Eventually(t, func() bool {
			select {
			case _, open := <-sub.C():
				return !open
			default:
				return false
			}
		}, time.Second, 10*time.Millisecond)
	})
}
