package flow

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/kirinyoku/cinebook/internal/domain"
)

type memPrefs struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemPrefs() *memPrefs {
	return &memPrefs{data: map[string]string{}}
}

func (p *memPrefs) Get(_ context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", false, p.err
	}
	v, ok := p.data[key]
	return v, ok, nil
}

func (p *memPrefs) Set(_ context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.data[key] = value
	return nil
}

var testMovie = domain.Movie{
	ID:        "m1",
	Title:     "Interstellar",
	Thumbnail: "https://img.example/interstellar.jpg",
	Status:    domain.MovieNowShowing,
	Theaters:  []string{"PVR", "INOX", "Cinepolis"},
	Timings:   []string{"10:00 AM", "1:30 PM", "7:00 PM"},
}

func newFlow(t *testing.T, prefs Preferences) *Flow {
	t.Helper()
	f, err := New(context.Background(), prefs, Config{ID: "f1", Owner: "u1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

// flowAtTheater returns a flow in Mumbai with m1 open, a date and a theater picked.
func flowAtTheater(t *testing.T) *Flow {
	t.Helper()
	f := newFlow(t, newMemPrefs())
	mustDo(t, f.SelectCity(context.Background(), "Mumbai"))
	mustDo(t, f.ViewMovie(testMovie))
	mustDo(t, f.SelectDate("12 Jan, 2025"))
	mustDo(t, f.SelectTheater("PVR"))
	return f
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func expectValidation(t *testing.T, err error) *ValidationError {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve
}

func TestNew_StartsPendingWithoutStoredCity(t *testing.T) {
	f := newFlow(t, newMemPrefs())
	if got := f.Snapshot().State; got != StateCityPending {
		t.Fatalf("expected %s, got %s", StateCityPending, got)
	}
}

func TestNew_RestoresStoredCity(t *testing.T) {
	prefs := newMemPrefs()
	prefs.data[PrefSelectedCity] = "Delhi"

	f := newFlow(t, prefs)
	snap := f.Snapshot()
	if snap.State != StateCitySelected {
		t.Fatalf("expected %s, got %s", StateCitySelected, snap.State)
	}
	if snap.City == nil || *snap.City != "Delhi" {
		t.Fatalf("expected city Delhi, got %v", snap.City)
	}
}

func TestNew_IgnoresUnknownStoredCity(t *testing.T) {
	prefs := newMemPrefs()
	prefs.data[PrefSelectedCity] = "Atlantis"

	f := newFlow(t, prefs)
	if got := f.Snapshot().State; got != StateCityPending {
		t.Fatalf("expected %s, got %s", StateCityPending, got)
	}
}

func TestNew_PreferenceReadFails(t *testing.T) {
	prefs := newMemPrefs()
	prefs.err = errors.New("store down")

	if _, err := New(context.Background(), prefs, Config{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSelectCity_PersistsChoice(t *testing.T) {
	prefs := newMemPrefs()
	f := newFlow(t, prefs)

	mustDo(t, f.SelectCity(context.Background(), "Mumbai"))

	if prefs.data[PrefSelectedCity] != "Mumbai" {
		t.Fatalf("expected stored city Mumbai, got %q", prefs.data[PrefSelectedCity])
	}
	if got := f.Snapshot().State; got != StateCitySelected {
		t.Fatalf("expected %s, got %s", StateCitySelected, got)
	}
}

func TestSelectCity_RejectsUnknownCity(t *testing.T) {
	prefs := newMemPrefs()
	f := newFlow(t, prefs)

	expectValidation(t, f.SelectCity(context.Background(), "Gotham"))

	if _, ok := prefs.data[PrefSelectedCity]; ok {
		t.Fatal("unknown city must not be persisted")
	}
	if got := f.Snapshot().State; got != StateCityPending {
		t.Fatalf("expected %s, got %s", StateCityPending, got)
	}
}

func TestSelectCity_OnlyOnce(t *testing.T) {
	f := newFlow(t, newMemPrefs())
	mustDo(t, f.SelectCity(context.Background(), "Mumbai"))
	expectValidation(t, f.SelectCity(context.Background(), "Delhi"))
}

func TestViewMovie_RequiresCity(t *testing.T) {
	f := newFlow(t, newMemPrefs())
	expectValidation(t, f.ViewMovie(testMovie))
}

func TestViewMovie_RejectsUpcoming(t *testing.T) {
	f := newFlow(t, newMemPrefs())
	mustDo(t, f.SelectCity(context.Background(), "Mumbai"))

	upcoming := testMovie
	upcoming.ID = "m2"
	upcoming.Status = domain.MovieUpcoming

	expectValidation(t, f.ViewMovie(upcoming))
}

func TestViewMovie_DifferentMovieResetsSelection(t *testing.T) {
	f := flowAtTheater(t)
	mustDo(t, f.SelectTime("7:00 PM"))

	other := testMovie
	other.ID = "m2"
	mustDo(t, f.ViewMovie(other))

	snap := f.Snapshot()
	if snap.State != StateMovieViewed {
		t.Fatalf("expected %s, got %s", StateMovieViewed, snap.State)
	}
	if snap.Date != nil || snap.Theater != nil || snap.Time != nil {
		t.Fatalf("expected cleared selection, got %+v", snap)
	}
}

func TestSelectDate_RequiresMovie(t *testing.T) {
	f := newFlow(t, newMemPrefs())
	mustDo(t, f.SelectCity(context.Background(), "Mumbai"))
	expectValidation(t, f.SelectDate("12 Jan, 2025"))
}

func TestSelectDate_RejectsMalformedDate(t *testing.T) {
	f := newFlow(t, newMemPrefs())
	mustDo(t, f.SelectCity(context.Background(), "Mumbai"))
	mustDo(t, f.ViewMovie(testMovie))
	expectValidation(t, f.SelectDate("2025-01-12"))
}

func TestSelectDate_AlwaysClearsTheaterAndTime(t *testing.T) {
	f := flowAtTheater(t)
	mustDo(t, f.SelectTime("7:00 PM"))

	dates := []string{"12 Jan, 2025", "12 Jan, 2025", "13 Jan, 2025", "12 Jan, 2025"}
	for _, d := range dates {
		mustDo(t, f.SelectDate(d))
		snap := f.Snapshot()
		if snap.Theater != nil || snap.Time != nil {
			t.Fatalf("after SelectDate(%q) expected nil theater and time, got %v %v", d, snap.Theater, snap.Time)
		}
		if snap.State != StateDateSelected {
			t.Fatalf("expected %s, got %s", StateDateSelected, snap.State)
		}

		mustDo(t, f.SelectTheater("INOX"))
		mustDo(t, f.SelectTime("1:30 PM"))
	}
}

func TestSelectTheater_RequiresDate(t *testing.T) {
	f := newFlow(t, newMemPrefs())
	mustDo(t, f.SelectCity(context.Background(), "Mumbai"))
	mustDo(t, f.ViewMovie(testMovie))
	expectValidation(t, f.SelectTheater("PVR"))
}

func TestSelectTheater_SameTheaterKeepsTime(t *testing.T) {
	f := flowAtTheater(t)
	mustDo(t, f.SelectTime("7:00 PM"))
	before := f.Snapshot()

	mustDo(t, f.SelectTheater("PVR"))

	after := f.Snapshot()
	if after.Time == nil || *after.Time != "7:00 PM" {
		t.Fatalf("expected time unchanged, got %v", after.Time)
	}
	if after.Version != before.Version {
		t.Fatalf("re-selecting the same theater must not emit a transition")
	}
}

func TestSelectTheater_DifferentTheaterClearsTime(t *testing.T) {
	f := flowAtTheater(t)
	mustDo(t, f.SelectTime("7:00 PM"))

	mustDo(t, f.SelectTheater("INOX"))

	snap := f.Snapshot()
	if snap.Time != nil {
		t.Fatalf("expected nil time, got %v", *snap.Time)
	}
	if snap.State != StateTheaterSelected {
		t.Fatalf("expected %s, got %s", StateTheaterSelected, snap.State)
	}
}

func TestSelectTheater_UnknownTheater(t *testing.T) {
	f := flowAtTheater(t)
	expectValidation(t, f.SelectTheater("IMAX Downtown"))
}

func TestSelectTime_WithoutTheater(t *testing.T) {
	f := newFlow(t, newMemPrefs())
	mustDo(t, f.SelectCity(context.Background(), "Mumbai"))
	mustDo(t, f.ViewMovie(testMovie))
	mustDo(t, f.SelectDate("12 Jan, 2025"))

	ve := expectValidation(t, f.SelectTime("7:00 PM"))
	if ve.Msg != "select a theater first" {
		t.Fatalf("unexpected message: %q", ve.Msg)
	}
	if f.Snapshot().Time != nil {
		t.Fatal("time must stay unset")
	}
}

func TestToggleSeat_RequiresShowtime(t *testing.T) {
	f := flowAtTheater(t)
	expectValidation(t, f.ToggleSeat("A1"))
}

func TestToggleSeat_PairIsIdentity(t *testing.T) {
	f := flowAtTheater(t)
	mustDo(t, f.SelectTime("7:00 PM"))
	mustDo(t, f.ToggleSeat("B4"))
	mustDo(t, f.ToggleSeat("A1"))

	for _, seat := range []string{"A1", "C3", "B4"} {
		before := f.Snapshot().Seats
		mustDo(t, f.ToggleSeat(seat))
		mustDo(t, f.ToggleSeat(seat))
		after := f.Snapshot().Seats
		if !slices.Equal(before, after) {
			t.Fatalf("toggling %s twice changed seats: %v -> %v", seat, before, after)
		}
	}
}

func TestToggleSeat_InvalidCode(t *testing.T) {
	f := flowAtTheater(t)
	mustDo(t, f.SelectTime("7:00 PM"))
	expectValidation(t, f.ToggleSeat("1A"))
}

func TestConfirm_ReportsMissingFields(t *testing.T) {
	f := newFlow(t, newMemPrefs())
	mustDo(t, f.SelectCity(context.Background(), "Mumbai"))
	mustDo(t, f.ViewMovie(testMovie))

	_, err := f.Confirm()
	ve := expectValidation(t, err)

	want := []string{"date", "theater", "time", "seats"}
	if !slices.Equal(ve.Missing, want) {
		t.Fatalf("expected missing %v, got %v", want, ve.Missing)
	}
}

func TestConfirm_RequiresSeats(t *testing.T) {
	f := flowAtTheater(t)
	mustDo(t, f.SelectTime("7:00 PM"))

	_, err := f.Confirm()
	ve := expectValidation(t, err)
	if !slices.Equal(ve.Missing, []string{"seats"}) {
		t.Fatalf("expected only seats missing, got %v", ve.Missing)
	}
}

func TestConfirm_TotalIsSeatsTimesUnitPrice(t *testing.T) {
	for n := 1; n <= 5; n++ {
		f := flowAtTheater(t)
		mustDo(t, f.SelectTime("7:00 PM"))
		for i := 1; i <= n; i++ {
			mustDo(t, f.ToggleSeat("D"+string(rune('0'+i))))
		}

		o, err := f.Confirm()
		mustDo(t, err)
		if o.TotalAmount != n*UnitSeatPrice {
			t.Fatalf("%d seats: expected %d, got %d", n, n*UnitSeatPrice, o.TotalAmount)
		}
	}
}

func TestScenario_FullBooking(t *testing.T) {
	f := newFlow(t, newMemPrefs())
	ctx := context.Background()

	mustDo(t, f.SelectCity(ctx, "Mumbai"))
	mustDo(t, f.ViewMovie(testMovie))
	mustDo(t, f.SelectDate("12 Jan, 2025"))
	mustDo(t, f.SelectTheater("PVR"))
	mustDo(t, f.SelectTime("7:00 PM"))
	mustDo(t, f.ToggleSeat("A2"))
	mustDo(t, f.ToggleSeat("A1"))

	order, err := f.Confirm()
	mustDo(t, err)
	if f.Snapshot().State != StateReadyToBook {
		t.Fatalf("expected %s", StateReadyToBook)
	}

	ticket, err := f.Submit(ctx, func(_ context.Context, o Order) (*domain.Ticket, error) {
		return &domain.Ticket{
			ID:          "t1",
			Creator:     "u1",
			Movie:       o.MovieTitle,
			Theater:     o.Theater,
			Date:        o.Date,
			Time:        o.Time,
			Seats:       o.Seats,
			City:        o.City,
			Thumbnail:   o.Thumbnail,
			TotalAmount: o.TotalAmount,
		}, nil
	})
	mustDo(t, err)

	if !slices.Equal(ticket.Seats, []string{"A1", "A2"}) {
		t.Fatalf("expected seats [A1 A2], got %v", ticket.Seats)
	}
	if ticket.TotalAmount != 200 || order.TotalAmount != 200 {
		t.Fatalf("expected total 200, got %d", ticket.TotalAmount)
	}
	if f.Snapshot().State != StateBooked {
		t.Fatalf("expected %s, got %s", StateBooked, f.Snapshot().State)
	}
	if f.Context().Err() == nil {
		t.Fatal("booked flow context must be cancelled")
	}
	if err := f.ToggleSeat("A3"); !errors.Is(err, ErrFlowClosed) {
		t.Fatalf("expected ErrFlowClosed, got %v", err)
	}
}

func TestScenario_TheaterChangeClearsTime(t *testing.T) {
	f := newFlow(t, newMemPrefs())
	mustDo(t, f.SelectCity(context.Background(), "Mumbai"))
	mustDo(t, f.ViewMovie(testMovie))
	mustDo(t, f.SelectDate("12 Jan, 2025"))
	mustDo(t, f.SelectTheater("PVR"))
	mustDo(t, f.SelectTime("7:00 PM"))
	mustDo(t, f.SelectTheater("INOX"))

	if f.Snapshot().Time != nil {
		t.Fatal("expected time to be nil")
	}
}

func TestSubmit_RequiresConfirm(t *testing.T) {
	f := flowAtTheater(t)
	_, err := f.Submit(context.Background(), func(context.Context, Order) (*domain.Ticket, error) {
		t.Fatal("submit must not run")
		return nil, nil
	})
	expectValidation(t, err)
}

func TestSubmit_FailureKeepsFlowReady(t *testing.T) {
	f := flowAtTheater(t)
	mustDo(t, f.SelectTime("7:00 PM"))
	mustDo(t, f.ToggleSeat("A1"))
	_, err := f.Confirm()
	mustDo(t, err)

	boom := errors.New("backend unavailable")
	_, err = f.Submit(context.Background(), func(context.Context, Order) (*domain.Ticket, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}

	snap := f.Snapshot()
	if snap.State != StateReadyToBook || snap.Submitting {
		t.Fatalf("expected ready to book and idle, got %s submitting=%v", snap.State, snap.Submitting)
	}
}

func TestSubmit_BlocksMutationWhilePending(t *testing.T) {
	f := flowAtTheater(t)
	mustDo(t, f.SelectTime("7:00 PM"))
	mustDo(t, f.ToggleSeat("A1"))
	_, err := f.Confirm()
	mustDo(t, err)

	_, err = f.Submit(context.Background(), func(ctx context.Context, o Order) (*domain.Ticket, error) {
		if err := f.ToggleSeat("A2"); !errors.Is(err, ErrSubmissionPending) {
			t.Errorf("expected ErrSubmissionPending, got %v", err)
		}
		if _, err := f.Submit(ctx, nil); !errors.Is(err, ErrSubmissionPending) {
			t.Errorf("expected second submit to be refused, got %v", err)
		}
		if !f.Snapshot().Submitting {
			t.Error("expected snapshot to report submitting")
		}
		return &domain.Ticket{ID: "t1", Seats: o.Seats}, nil
	})
	mustDo(t, err)
}

func TestSubmit_CloseAbortsSubmission(t *testing.T) {
	f := flowAtTheater(t)
	mustDo(t, f.SelectTime("7:00 PM"))
	mustDo(t, f.ToggleSeat("A1"))
	_, err := f.Confirm()
	mustDo(t, err)

	_, err = f.Submit(context.Background(), func(ctx context.Context, _ Order) (*domain.Ticket, error) {
		go f.Close()
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := f.Snapshot().State; got != StateCancelled {
		t.Fatalf("expected %s, got %s", StateCancelled, got)
	}
}

func TestToggleSeat_AfterConfirmReopensSelection(t *testing.T) {
	f := flowAtTheater(t)
	mustDo(t, f.SelectTime("7:00 PM"))
	mustDo(t, f.ToggleSeat("A1"))
	_, err := f.Confirm()
	mustDo(t, err)

	mustDo(t, f.ToggleSeat("A2"))
	if got := f.Snapshot().State; got != StateTimeSelected {
		t.Fatalf("expected %s, got %s", StateTimeSelected, got)
	}
}

func TestClose_IsFinal(t *testing.T) {
	f := flowAtTheater(t)
	f.Close()
	f.Close()

	if got := f.Snapshot().State; got != StateCancelled {
		t.Fatalf("expected %s, got %s", StateCancelled, got)
	}
	if err := f.SelectDate("12 Jan, 2025"); !errors.Is(err, ErrFlowClosed) {
		t.Fatalf("expected ErrFlowClosed, got %v", err)
	}
}

func TestSubscribe_EmitsSnapshotPerTransition(t *testing.T) {
	f := newFlow(t, newMemPrefs())

	var got [][]string
	unsubscribe := f.Subscribe(func(prev, next Snapshot) {
		if next.Version != prev.Version+1 {
			t.Errorf("expected consecutive versions, got %d -> %d", prev.Version, next.Version)
		}
		got = append(got, Diff(prev, next))
	})

	mustDo(t, f.SelectCity(context.Background(), "Mumbai"))
	mustDo(t, f.ViewMovie(testMovie))
	mustDo(t, f.SelectDate("12 Jan, 2025"))
	unsubscribe()
	mustDo(t, f.SelectTheater("PVR"))

	if len(got) != 3 {
		t.Fatalf("expected 3 transitions, got %d", len(got))
	}
	if !slices.Equal(got[0], []string{"state", "city"}) {
		t.Fatalf("unexpected first diff: %v", got[0])
	}
	if !slices.Equal(got[2], []string{"state", "date"}) {
		t.Fatalf("unexpected third diff: %v", got[2])
	}
}

func TestSortSeats(t *testing.T) {
	seats := []string{"B1", "A10", "A2", "AA1", "A1"}
	SortSeats(seats)

	want := []string{"A1", "A2", "A10", "B1", "AA1"}
	if !slices.Equal(seats, want) {
		t.Fatalf("expected %v, got %v", want, seats)
	}
}
