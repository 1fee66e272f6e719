package selection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/flow"
	"github.com/kirinyoku/cinebook/internal/service/booking"
	"github.com/kirinyoku/cinebook/internal/service/catalog"
)

// PreferenceFactory returns the preference store of one owner.
type PreferenceFactory func(owner string) flow.Preferences

type Config struct {
	IdleTTL time.Duration
}

// Service hosts the selection flows of signed-in users, one active flow per
// user.
type Service struct {
	registry *flow.Registry
	prefs    PreferenceFactory
	catalog  *catalog.Service
	booking  *booking.Service
	logger   *slog.Logger
	now      func() time.Time
}

func New(
	prefs PreferenceFactory,
	catalog *catalog.Service,
	booking *booking.Service,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Service{
		registry: flow.NewRegistry(cfg.IdleTTL),
		prefs:    prefs,
		catalog:  catalog,
		booking:  booking,
		logger:   logger,
		now:      time.Now,
	}
}

// Start opens a new flow for owner, closing the one they had open before.
func (s *Service) Start(ctx context.Context, owner string) (*flow.Flow, error) {
	const op = "service.selection.Start"

	f, err := flow.New(ctx, s.prefs(owner), flow.Config{Owner: owner, Now: s.now})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if replaced := s.registry.Add(f); replaced != nil {
		s.logger.Info("flow replaced", "owner", owner, "flow_id", replaced.ID(), "by", f.ID())
	}

	return f, nil
}

// Get returns a flow of owner. Flows of other users are reported as not
// found.
func (s *Service) Get(owner, id string) (*flow.Flow, error) {
	const op = "service.selection.Get"

	f, err := s.registry.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if f.Owner() != owner {
		return nil, fmt.Errorf("%s: %w", op, ErrFlowNotFound)
	}

	return f, nil
}

// ViewMovie loads movieID from the catalog and opens it in the flow.
func (s *Service) ViewMovie(ctx context.Context, owner, id, movieID string) (flow.Snapshot, error) {
	const op = "service.selection.ViewMovie"

	f, err := s.Get(owner, id)
	if err != nil {
		return flow.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	m, err := s.catalog.GetMovie(ctx, movieID)
	if err != nil {
		return flow.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := f.ViewMovie(m); err != nil {
		return flow.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	return f.Snapshot(), nil
}

// Book submits a confirmed flow. On success the flow is booked and closed;
// on failure it stays ready for another attempt.
func (s *Service) Book(ctx context.Context, owner, id string) (*domain.Ticket, error) {
	const op = "service.selection.Book"

	f, err := s.Get(owner, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t, err := f.Submit(ctx, s.booking.For(owner))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("ticket booked",
		"owner", owner,
		"flow_id", id,
		"ticket_id", t.ID,
		"seats", len(t.Seats),
		"amount", t.TotalAmount,
	)

	return t, nil
}

// Cancel closes the flow and forgets it.
func (s *Service) Cancel(owner, id string) error {
	const op = "service.selection.Cancel"

	f, err := s.Get(owner, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	f.Close()
	s.registry.Remove(id)

	return nil
}

// RememberCity stores city as owner's preferred city outside any flow.
func (s *Service) RememberCity(ctx context.Context, owner, city string) error {
	const op = "service.selection.RememberCity"

	if !domain.IsCity(city) {
		return fmt.Errorf("%s: %w", op, &flow.ValidationError{Msg: fmt.Sprintf("unknown city %q", city)})
	}
	if err := s.prefs(owner).Set(ctx, flow.PrefSelectedCity, city); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) PreferredCity(ctx context.Context, owner string) (string, bool, error) {
	const op = "service.selection.PreferredCity"

	city, ok, err := s.prefs(owner).Get(ctx, flow.PrefSelectedCity)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok || !domain.IsCity(city) {
		return "", false, nil
	}

	return city, true, nil
}

// Sweep drops idle and finished flows. It is run periodically.
func (s *Service) Sweep() int {
	n := s.registry.Sweep(s.now())
	if n > 0 {
		s.logger.Info("flows swept", "count", n, "active", s.registry.Len())
	}
	return n
}
