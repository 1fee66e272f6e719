package redis

import "testing"

func TestDecodeBookingEvent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		ok      bool
	}{
		{"valid", `{"type":"booking_created","ticket":{"id":"t1","creator":"u1","seats":["A1"]},"ts_unix":1}`, true},
		{"wrong type", `{"type":"event_changed","ticket":{"id":"t1"}}`, false},
		{"missing ticket", `{"type":"booking_created"}`, false},
		{"garbage", `not json`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := decodeBookingEvent(tt.payload)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && (ev.Ticket.Creator != "u1" || len(ev.Ticket.Seats) != 1) {
				t.Fatalf("unexpected event: %+v", ev)
			}
		})
	}
}
