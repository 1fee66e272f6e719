package flow

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/cinebook/internal/domain"
)

const (
	// UnitSeatPrice is the price of one seat, in rupees.
	UnitSeatPrice = 100

	PrefSelectedCity = "selectedCity"
)

// Preferences is the durable key-value store the flow reads its initial city
// from and writes the chosen city to. Writes are last-write-wins.
type Preferences interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Config struct {
	ID     string
	Owner  string
	Cities []string
	Now    func() time.Time
}

// Selection is the mutable record a flow narrows down step by step.
type Selection struct {
	City    string
	MovieID string
	Date    string
	Theater string
	Time    string
	Seats   seatSet
}

// Order is a confirmed selection, ready to be turned into a ticket.
type Order struct {
	FlowID      string
	City        string
	MovieID     string
	MovieTitle  string
	Thumbnail   string
	Date        string
	Theater     string
	Time        string
	Seats       []string
	UnitPrice   int
	TotalAmount int
}

// Validate reports the fields an order is missing.
func (o Order) Validate() error {
	var missing []string
	if o.City == "" {
		missing = append(missing, "city")
	}
	if o.Date == "" {
		missing = append(missing, "date")
	}
	if o.Theater == "" {
		missing = append(missing, "theater")
	}
	if o.Time == "" {
		missing = append(missing, "time")
	}
	if len(o.Seats) == 0 {
		missing = append(missing, "seats")
	}
	if len(missing) > 0 {
		return &ValidationError{Msg: "selection incomplete", Missing: missing}
	}
	return nil
}

// SubmitFunc turns a confirmed order into a ticket.
type SubmitFunc func(ctx context.Context, o Order) (*domain.Ticket, error)

// Flow is one user's pass through city, movie, date, theater, time and seats.
// All methods are safe for concurrent use; mutations are serialized.
type Flow struct {
	mu sync.Mutex

	id     string
	owner  string
	cities []string
	prefs  Preferences
	now    func() time.Time

	state      State
	sel        Selection
	movie      *domain.Movie
	order      *Order
	pending    bool
	version    uint64
	lastActive time.Time

	listeners    map[uint64]Listener
	nextListener uint64

	ctx    context.Context
	cancel context.CancelFunc
}

// New starts a flow. A valid city found in prefs under "selectedCity" skips
// city selection.
func New(ctx context.Context, prefs Preferences, cfg Config) (*Flow, error) {
	const op = "flow.New"

	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if len(cfg.Cities) == 0 {
		cfg.Cities = domain.Cities
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	f := &Flow{
		id:        cfg.ID,
		owner:     cfg.Owner,
		cities:    cfg.Cities,
		prefs:     prefs,
		now:       cfg.Now,
		state:     StateCityPending,
		sel:       Selection{Seats: seatSet{}},
		listeners: make(map[uint64]Listener),
	}
	f.lastActive = f.now()
	f.ctx, f.cancel = context.WithCancel(context.Background())

	if prefs != nil {
		city, ok, err := prefs.Get(ctx, PrefSelectedCity)
		if err != nil {
			f.cancel()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if ok && slices.Contains(f.cities, city) {
			f.sel.City = city
			f.state = StateCitySelected
		}
	}

	return f, nil
}

func (f *Flow) ID() string    { return f.id }
func (f *Flow) Owner() string { return f.owner }

// Context is cancelled when the flow is closed, booked or cancelled.
func (f *Flow) Context() context.Context { return f.ctx }

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// IdleFor reports how long the flow has gone without a transition.
func (f *Flow) IdleFor(now time.Time) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending {
		return 0
	}
	return now.Sub(f.lastActive)
}

// Subscribe registers fn for every later transition. The returned func
// removes it. fn runs outside the flow lock and must not block.
func (f *Flow) Subscribe(fn Listener) func() {
	f.mu.Lock()
	id := f.nextListener
	f.nextListener++
	f.listeners[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *Flow) SelectCity(ctx context.Context, city string) error {
	return f.mutate(func() (bool, error) {
		if f.state != StateCityPending {
			return false, invalid("city is already selected")
		}
		if !slices.Contains(f.cities, city) {
			return false, invalid(fmt.Sprintf("unknown city %q", city))
		}

		if f.prefs != nil {
			if err := f.prefs.Set(ctx, PrefSelectedCity, city); err != nil {
				return false, fmt.Errorf("flow.SelectCity: %w", err)
			}
		}

		f.sel.City = city
		f.state = StateCitySelected
		return true, nil
	})
}

// ViewMovie opens a movie in the flow. Opening a different movie discards the
// date, theater, time and seats picked for the previous one.
func (f *Flow) ViewMovie(m domain.Movie) error {
	return f.mutate(func() (bool, error) {
		if f.sel.City == "" {
			return false, invalid("select a city first")
		}
		if m.Status != domain.MovieNowShowing {
			return false, invalid("movie is not open for booking")
		}

		if f.sel.MovieID == m.ID && f.state.AtLeast(StateMovieViewed) {
			f.movie = &m
			return true, nil
		}

		f.movie = &m
		f.sel.MovieID = m.ID
		f.sel.Date = ""
		f.sel.Theater = ""
		f.sel.Time = ""
		f.sel.Seats = seatSet{}
		f.state = StateMovieViewed
		return true, nil
	})
}

// SelectDate always clears theater, time and seats, even when date is the
// one already selected.
func (f *Flow) SelectDate(date string) error {
	return f.mutate(func() (bool, error) {
		if !f.state.AtLeast(StateMovieViewed) {
			return false, invalid("open a movie first")
		}
		if _, err := time.Parse(domain.ShowDateLayout, date); err != nil {
			return false, invalid(fmt.Sprintf("invalid date %q", date))
		}

		f.sel.Date = date
		f.sel.Theater = ""
		f.sel.Time = ""
		f.sel.Seats = seatSet{}
		f.state = StateDateSelected
		return true, nil
	})
}

// SelectTheater is a no-op for the theater already selected; any other
// theater clears the time and seats.
func (f *Flow) SelectTheater(theater string) error {
	return f.mutate(func() (bool, error) {
		if f.sel.Date == "" {
			return false, invalid("select a date first")
		}
		if f.sel.Theater == theater {
			return false, nil
		}
		if f.movie != nil && !f.movie.HasTheater(theater) {
			return false, invalid(fmt.Sprintf("movie is not playing at %q", theater))
		}

		f.sel.Theater = theater
		f.sel.Time = ""
		f.sel.Seats = seatSet{}
		f.state = StateTheaterSelected
		return true, nil
	})
}

func (f *Flow) SelectTime(t string) error {
	return f.mutate(func() (bool, error) {
		if f.sel.Theater == "" {
			return false, invalid("select a theater first")
		}
		if f.movie != nil && !f.movie.HasTiming(t) {
			return false, invalid(fmt.Sprintf("no show at %q", t))
		}
		if f.sel.Time == t {
			return false, nil
		}

		f.sel.Time = t
		f.sel.Seats = seatSet{}
		f.state = StateTimeSelected
		return true, nil
	})
}

// ToggleSeat adds seat if absent and removes it otherwise.
func (f *Flow) ToggleSeat(seat string) error {
	return f.mutate(func() (bool, error) {
		if f.sel.Time == "" {
			return false, invalid("select a showtime first")
		}
		if !domain.IsSeatCode(seat) {
			return false, invalid(fmt.Sprintf("invalid seat %q", seat))
		}

		f.sel.Seats.toggle(seat)
		if f.state == StateReadyToBook {
			f.state = StateTimeSelected
		}
		return true, nil
	})
}

// Confirm checks the selection is complete and prices it.
func (f *Flow) Confirm() (Order, error) {
	var out Order

	err := f.mutate(func() (bool, error) {
		o := Order{
			FlowID:    f.id,
			City:      f.sel.City,
			MovieID:   f.sel.MovieID,
			Date:      f.sel.Date,
			Theater:   f.sel.Theater,
			Time:      f.sel.Time,
			Seats:     f.sel.Seats.sorted(),
			UnitPrice: UnitSeatPrice,
		}
		if f.movie != nil {
			o.MovieTitle = f.movie.Title
			o.Thumbnail = f.movie.Thumbnail
		}
		if err := o.Validate(); err != nil {
			return false, err
		}
		o.TotalAmount = len(o.Seats) * o.UnitPrice

		f.order = &o
		out = o
		if f.state == StateReadyToBook {
			return false, nil
		}
		f.state = StateReadyToBook
		return true, nil
	})

	return out, err
}

// Submit hands the confirmed order to submit. Mutations are refused until it
// returns. On success the flow is booked and closed; on failure it stays
// ready to book so the user can try again.
func (f *Flow) Submit(ctx context.Context, submit SubmitFunc) (*domain.Ticket, error) {
	f.mu.Lock()
	if f.state.Terminal() {
		f.mu.Unlock()
		return nil, ErrFlowClosed
	}
	if f.pending {
		f.mu.Unlock()
		return nil, ErrSubmissionPending
	}
	if f.state != StateReadyToBook || f.order == nil {
		f.mu.Unlock()
		return nil, invalid("confirm the booking first")
	}

	order := *f.order
	prev := f.snapshotLocked()
	f.pending = true
	next, ls := f.commitLocked()
	f.mu.Unlock()
	notify(ls, prev, next)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(f.ctx, cancel)
	defer stop()

	ticket, err := submit(ctx, order)

	f.mu.Lock()
	prev = f.snapshotLocked()
	f.pending = false
	if err == nil {
		f.state = StateBooked
		f.cancel()
	}
	next, ls = f.commitLocked()
	f.mu.Unlock()
	notify(ls, prev, next)

	return ticket, err
}

// Close abandons the flow. Closing a flow that already ended does nothing.
func (f *Flow) Close() {
	f.mu.Lock()
	if f.state.Terminal() {
		f.mu.Unlock()
		return
	}
	prev := f.snapshotLocked()
	f.state = StateCancelled
	f.cancel()
	next, ls := f.commitLocked()
	f.mu.Unlock()
	notify(ls, prev, next)
}

func (f *Flow) mutate(fn func() (bool, error)) error {
	f.mu.Lock()
	if f.state.Terminal() {
		f.mu.Unlock()
		return ErrFlowClosed
	}
	if f.pending {
		f.mu.Unlock()
		return ErrSubmissionPending
	}

	prev := f.snapshotLocked()
	changed, err := fn()
	if err != nil || !changed {
		f.lastActive = f.now()
		f.mu.Unlock()
		return err
	}
	if f.state != StateReadyToBook {
		f.order = nil
	}

	next, ls := f.commitLocked()
	f.mu.Unlock()
	notify(ls, prev, next)
	return nil
}

func (f *Flow) commitLocked() (Snapshot, []Listener) {
	f.version++
	f.lastActive = f.now()

	ls := make([]Listener, 0, len(f.listeners))
	for _, l := range f.listeners {
		ls = append(ls, l)
	}
	return f.snapshotLocked(), ls
}

func (f *Flow) snapshotLocked() Snapshot {
	seats := f.sel.Seats.sorted()
	s := Snapshot{
		FlowID:      f.id,
		Version:     f.version,
		State:       f.state,
		City:        optional(f.sel.City),
		MovieID:     optional(f.sel.MovieID),
		Date:        optional(f.sel.Date),
		Theater:     optional(f.sel.Theater),
		Time:        optional(f.sel.Time),
		Seats:       seats,
		TotalAmount: len(seats) * UnitSeatPrice,
		Submitting:  f.pending,
	}
	if f.movie != nil {
		s.MovieTitle = f.movie.Title
	}
	return s
}

func notify(ls []Listener, prev, next Snapshot) {
	for _, l := range ls {
		l(prev, next)
	}
}
