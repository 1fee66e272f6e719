package booking

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/kirinyoku/cinebook/internal/backend"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/flow"
)

// Notifier learns about every ticket created.
type Notifier interface {
	PublishBookingCreated(ctx context.Context, t domain.Ticket) error
}

type Service struct {
	docs     backend.Documents
	notifier Notifier
	logger   *slog.Logger
}

// New builds the service. notifier may be nil.
func New(docs backend.Documents, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{docs: docs, notifier: notifier, logger: logger}
}

// Submit turns a confirmed order into a ticket owned by userID. It issues
// exactly one create request and never retries; calling it twice books
// twice.
//
// Parameters:
//   - ctx: request or flow context; cancelling it abandons the request.
//   - userID: profile document ID of the booking user.
//   - o: the confirmed order.
//
// Returns:
//   - *domain.Ticket: the ticket as created.
//   - error: *flow.ValidationError for an incomplete order.
//   - error: booking.ErrBookingFailed wrapping the backend failure.
func (s *Service) Submit(ctx context.Context, userID string, o flow.Order) (*domain.Ticket, error) {
	const op = "service.booking.Submit"

	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoUser)
	}

	seats := slices.Clone(o.Seats)
	flow.SortSeats(seats)

	t := domain.Ticket{
		Creator:     userID,
		Movie:       o.MovieTitle,
		Theater:     o.Theater,
		Date:        o.Date,
		Time:        o.Time,
		Seats:       seats,
		City:        o.City,
		Thumbnail:   o.Thumbnail,
		TotalAmount: len(seats) * flow.UnitSeatPrice,
	}

	d, err := s.docs.CreateDocument(ctx, backend.CollectionBookings, backend.NewID(), map[string]any{
		"creator": t.Creator,
		"movie":   t.Movie,
		"theater": t.Theater,
		"date":    t.Date,
		"time":    t.Time,
		"seats":   t.Seats,
		"city":    t.City,
		"img":     t.Thumbnail,
		"amount":  t.TotalAmount,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrBookingFailed, err)
	}

	t.ID = d.ID
	t.CreatedAt = d.CreatedAt

	if s.notifier != nil {
		if err := s.notifier.PublishBookingCreated(ctx, t); err != nil {
			s.logger.Warn("booking event not published", "ticket_id", t.ID, "err", err)
		}
	}

	return &t, nil
}

// For binds Submit to userID so a flow can drive it.
func (s *Service) For(userID string) flow.SubmitFunc {
	return func(ctx context.Context, o flow.Order) (*domain.Ticket, error) {
		return s.Submit(ctx, userID, o)
	}
}
