package tickets

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirinyoku/cinebook/internal/backend"
	"github.com/kirinyoku/cinebook/internal/backend/memory"
	"github.com/kirinyoku/cinebook/internal/domain"
)

func seedBookings(t *testing.T) *memory.Backend {
	t.Helper()
	now := time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC)
	b := memory.New(memory.WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	}))

	for _, tc := range []struct{ id, creator, movie string }{
		{"t1", "u1", "Dune"},
		{"t2", "u2", "Tenet"},
		{"t3", "u1", "Interstellar"},
	} {
		_, err := b.CreateDocument(context.Background(), backend.CollectionBookings, tc.id, map[string]any{
			"creator": tc.creator,
			"movie":   tc.movie,
			"theater": "PVR",
			"date":    "12 Jan, 2025",
			"time":    "7:00 PM",
			"seats":   []any{"A1", "A2"},
			"city":    "Mumbai",
			"img":     "https://img.example/x.jpg",
			"amount":  float64(200),
		})
		if err != nil {
			t.Fatalf("seed %s: %v", tc.id, err)
		}
	}
	return b
}

func TestList_OwnTicketsNewestFirst(t *testing.T) {
	svc := New(seedBookings(t), nil)

	got, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "t3" || got[1].ID != "t1" {
		t.Fatalf("unexpected tickets: %+v", got)
	}
	if got[0].TotalAmount != 200 || len(got[0].Seats) != 2 || got[0].Thumbnail == "" {
		t.Fatalf("ticket not fully decoded: %+v", got[0])
	}
}

func TestGet_ForeignTicketIsNotFound(t *testing.T) {
	svc := New(seedBookings(t), nil)

	if _, err := svc.Get(context.Background(), "u1", "t2"); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "u1", "nope"); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}

	tk, err := svc.Get(context.Background(), "u1", "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tk.Movie != "Dune" {
		t.Fatalf("unexpected ticket: %+v", tk)
	}
}

func TestQRCode_IsPNG(t *testing.T) {
	svc := New(nil, nil)

	png, err := svc.QRCode(domain.Ticket{ID: "t1", Movie: "Dune", Seats: []string{"A1"}}, 0)
	if err != nil {
		t.Fatalf("QRCode: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatal("expected PNG output")
	}
}

type chanFeed struct {
	tickets []domain.Ticket
}

func (f chanFeed) SubscribeTickets(ctx context.Context, fn func(ctx context.Context, t domain.Ticket)) error {
	for _, t := range f.tickets {
		fn(ctx, t)
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestWatch_FiltersByCreator(t *testing.T) {
	feed := chanFeed{tickets: []domain.Ticket{
		{ID: "t1", Creator: "u1"},
		{ID: "t2", Creator: "u2"},
		{ID: "t3", Creator: "u1"},
	}}
	svc := New(nil, feed)

	ctx, cancel := context.WithCancel(context.Background())
	var got []string
	err := svc.Watch(ctx, "u1", func(t domain.Ticket) {
		got = append(got, t.ID)
		if len(got) == 2 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if len(got) != 2 || got[0] != "t1" || got[1] != "t3" {
		t.Fatalf("unexpected tickets: %v", got)
	}
}

func TestWatch_WithoutFeed(t *testing.T) {
	if err := New(nil, nil).Watch(context.Background(), "u1", func(domain.Ticket) {}); !errors.Is(err, ErrNoFeed) {
		t.Fatalf("expected ErrNoFeed, got %v", err)
	}
}

func TestGet_BookingWithoutAmountIsPricedBySeats(t *testing.T) {
	b := memory.New()
	_, err := b.CreateDocument(context.Background(), backend.CollectionBookings, "old", map[string]any{
		"creator": "u1",
		"movie":   "Dune",
		"theater": "PVR",
		"date":    "12 Jan, 2025",
		"time":    "7:00 PM",
		"seats":   []any{"A1", "A2"},
		"city":    "Mumbai",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	tk, err := New(b, nil).Get(context.Background(), "u1", "old")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tk.TotalAmount != 200 {
		t.Fatalf("expected amount 200, got %d", tk.TotalAmount)
	}
}
