package events

import (
	"context"
	"testing"
)

func TestRoutingKey(t *testing.T) {
	cases := []struct {
		kind, name, action string
		want               string
	}{
		{"entity", "invoice", "update", "entity.invoice.update"},
		{"auth", "SIGNED_IN", "", "auth.SIGNED_IN"},
	}
	for _, tc := range cases {
		if got := RoutingKey(tc.kind, tc.name, tc.action); got != tc.want {
			t.Errorf("RoutingKey(%q, %q, %q) = %q, want %q", tc.kind, tc.name, tc.action, got, tc.want)
		}
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), "entity.project.create", Event{Type: "entity"}); err != nil {
		t.Fatalf("nop publish returned %v", err)
	}
	p.Close()
}
