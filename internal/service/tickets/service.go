package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/kirinyoku/cinebook/internal/backend"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/flow"
)

const (
	DefaultQRSize = 256
	maxQRSize     = 1024
)

// Feed delivers tickets as they are booked, by anyone.
type Feed interface {
	SubscribeTickets(ctx context.Context, fn func(ctx context.Context, t domain.Ticket)) error
}

type Service struct {
	docs backend.Documents
	feed Feed
}

// New builds the service. feed may be nil, in which case Watch fails.
func New(docs backend.Documents, feed Feed) *Service {
	return &Service{docs: docs, feed: feed}
}

// List returns the tickets booked by userID, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Ticket, error) {
	const op = "service.tickets.List"

	docs, err := s.docs.ListDocuments(ctx, backend.CollectionBookings, backend.Query{
		Filters: []backend.Filter{backend.Equal("creator", userID)},
		Orders:  []backend.Order{backend.OrderDesc(backend.AttrCreatedAt)},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]domain.Ticket, 0, len(docs))
	for _, d := range docs {
		out = append(out, ticketFromDocument(d))
	}
	return out, nil
}

// Get returns one ticket of userID. Tickets of other users are reported as
// not found.
func (s *Service) Get(ctx context.Context, userID, id string) (domain.Ticket, error) {
	const op = "service.tickets.Get"

	d, err := s.docs.GetDocument(ctx, backend.CollectionBookings, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return domain.Ticket{}, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return domain.Ticket{}, fmt.Errorf("%s: %w", op, err)
	}

	t := ticketFromDocument(d)
	if t.Creator != userID {
		return domain.Ticket{}, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
	}

	return t, nil
}

// QRCode renders the ticket as a PNG QR code of size pixels.
func (s *Service) QRCode(t domain.Ticket, size int) ([]byte, error) {
	const op = "service.tickets.QRCode"

	if size <= 0 {
		size = DefaultQRSize
	}
	size = min(size, maxQRSize)

	png, err := qrcode.Encode(qrPayload(t), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return png, nil
}

// Live reports whether Watch can stream tickets.
func (s *Service) Live() bool {
	return s.feed != nil
}

// Watch calls fn for every ticket booked by userID until ctx is done.
func (s *Service) Watch(ctx context.Context, userID string, fn func(t domain.Ticket)) error {
	const op = "service.tickets.Watch"

	if s.feed == nil {
		return fmt.Errorf("%s: %w", op, ErrNoFeed)
	}

	err := s.feed.SubscribeTickets(ctx, func(_ context.Context, t domain.Ticket) {
		if t.Creator == userID {
			fn(t)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func qrPayload(t domain.Ticket) string {
	return strings.Join([]string{
		"CINEBOOK",
		t.ID,
		t.Movie,
		t.Date + " " + t.Time,
		t.Theater,
		strings.Join(t.Seats, ","),
	}, "|")
}

func ticketFromDocument(d backend.Document) domain.Ticket {
	seats := d.Strings("seats")

	// Bookings made by older clients carry no amount.
	amount := d.Int("amount")
	if _, ok := d.Fields["amount"]; !ok {
		amount = len(seats) * flow.UnitSeatPrice
	}

	return domain.Ticket{
		ID:          d.ID,
		Creator:     d.String("creator"),
		Movie:       d.String("movie"),
		Theater:     d.String("theater"),
		Date:        d.String("date"),
		Time:        d.String("time"),
		Seats:       seats,
		City:        d.String("city"),
		Thumbnail:   d.String("img"),
		TotalAmount: amount,
		CreatedAt:   d.CreatedAt,
	}
}
