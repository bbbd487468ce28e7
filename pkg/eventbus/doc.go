// Package eventbus provides a minimal in-memory publish/subscribe bus used
// to fan out workflow state-changed events to in-process listeners.
//
// The bus is fire and forget: Publish never blocks, and a subscriber whose
// buffer is full is dropped rather than allowed to stall the publisher.
// Listener failures therefore can never propagate back into the code that
// publishes, which is exactly the contract the state machine engine relies
// on when it emits StateChanged events.
//
// # Usage
//
//	bus := eventbus.New[statemachine.StateChanged](16)
//	defer bus.Close()
//
//	sub := bus.Subscribe(ctx)
//	go func() {
//	    for ev := range sub.C() {
//	        // react to ev.From -> ev.To
//	    }
//	}()
//
//	_ = bus.Publish(ctx, ev)
//
// Bus[statemachine.StateChanged] satisfies statemachine.Publisher directly.
package eventbus
