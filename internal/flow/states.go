package flow

type State string

const (
	StateCityPending     State = "city_pending"
	StateCitySelected    State = "city_selected"
	StateMovieViewed     State = "movie_viewed"
	StateDateSelected    State = "date_selected"
	StateTheaterSelected State = "theater_selected"
	StateTimeSelected    State = "time_selected"
	StateReadyToBook     State = "ready_to_book"
	StateBooked          State = "booked"
	StateCancelled       State = "cancelled"
)

var stateRank = map[State]int{
	StateCityPending:     0,
	StateCitySelected:    1,
	StateMovieViewed:     2,
	StateDateSelected:    3,
	StateTheaterSelected: 4,
	StateTimeSelected:    5,
	StateReadyToBook:     6,
}

// AtLeast reports whether s is at or past other in the selection sequence.
// Terminal states are never "at least" anything.
func (s State) AtLeast(other State) bool {
	r, ok := stateRank[s]
	if !ok {
		return false
	}
	return r >= stateRank[other]
}

func (s State) Terminal() bool {
	return s == StateBooked || s == StateCancelled
}
