package services

import (
	"context"
	"testing"
)

func TestAuthEventsSubscribeAndUnsubscribe(t *testing.T) {
	bus := NewAuthEvents()

	var got []AuthEvent
	sub := bus.Subscribe(func(_ context.Context, c AuthChange) {
		got = append(got, c.Event)
	})
	if bus.Len() != 1 {
		t.Fatalf("expected 1 listener, got %d", bus.Len())
	}

	bus.Emit(context.Background(), AuthChange{Event: AuthSignedIn, UserID: "u1"})
	bus.Emit(context.Background(), AuthChange{Event: AuthTokenRefreshed, UserID: "u1"})

	sub.Unsubscribe()
	sub.Unsubscribe()
	bus.Emit(context.Background(), AuthChange{Event: AuthSignedOut, UserID: "u1"})

	if bus.Len() != 0 {
		t.Fatalf("listener left registered after unsubscribe")
	}
	if len(got) != 2 || got[0] != AuthSignedIn || got[1] != AuthTokenRefreshed {
		t.Fatalf("unexpected events %v", got)
	}
}
