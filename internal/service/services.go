package service

import (
	"log/slog"

	"github.com/kirinyoku/cinebook/internal/backend"
	"github.com/kirinyoku/cinebook/internal/service/auth"
	"github.com/kirinyoku/cinebook/internal/service/booking"
	"github.com/kirinyoku/cinebook/internal/service/catalog"
	"github.com/kirinyoku/cinebook/internal/service/selection"
	"github.com/kirinyoku/cinebook/internal/service/tickets"
)

type Services struct {
	Auth      *auth.Service
	Catalog   *catalog.Service
	Booking   *booking.Service
	Tickets   *tickets.Service
	Selection *selection.Service
}

type Config struct {
	Selection selection.Config
}

// BookingEvents both announces new tickets and streams them back.
type BookingEvents interface {
	booking.Notifier
	tickets.Feed
}

// NewServices wires the services over one backend client. events may be
// nil; bookings are then not announced and ticket streaming is off.
func NewServices(
	client backend.Client,
	prefs selection.PreferenceFactory,
	events BookingEvents,
	logger *slog.Logger,
	cfg Config,
) *Services {
	var (
		notifier booking.Notifier
		feed     tickets.Feed
	)
	if events != nil {
		notifier, feed = events, events
	}

	catalogSvc := catalog.New(client)
	bookingSvc := booking.New(client, notifier, logger)

	return &Services{
		Auth:      auth.New(client),
		Catalog:   catalogSvc,
		Booking:   bookingSvc,
		Tickets:   tickets.New(client, feed),
		Selection: selection.New(prefs, catalogSvc, bookingSvc, logger, cfg.Selection),
	}
}
