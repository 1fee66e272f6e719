package flow

import "slices"

// Snapshot is an immutable view of a flow taken after a transition. Unset
// selection fields are nil.
type Snapshot struct {
	FlowID      string   `json:"flow_id"`
	Version     uint64   `json:"version"`
	State       State    `json:"state"`
	City        *string  `json:"city"`
	MovieID     *string  `json:"movie_id"`
	MovieTitle  string   `json:"movie_title,omitempty"`
	Date        *string  `json:"date"`
	Theater     *string  `json:"theater"`
	Time        *string  `json:"time"`
	Seats       []string `json:"seats"`
	TotalAmount int      `json:"total_amount"`
	Submitting  bool     `json:"submitting"`
}

// Listener receives the snapshot before and after every transition.
type Listener func(prev, next Snapshot)

// Diff names the fields that differ between two snapshots of the same flow.
func Diff(prev, next Snapshot) []string {
	var changed []string

	if prev.State != next.State {
		changed = append(changed, "state")
	}
	if !sameStr(prev.City, next.City) {
		changed = append(changed, "city")
	}
	if !sameStr(prev.MovieID, next.MovieID) {
		changed = append(changed, "movie_id")
	}
	if !sameStr(prev.Date, next.Date) {
		changed = append(changed, "date")
	}
	if !sameStr(prev.Theater, next.Theater) {
		changed = append(changed, "theater")
	}
	if !sameStr(prev.Time, next.Time) {
		changed = append(changed, "time")
	}
	if !slices.Equal(prev.Seats, next.Seats) {
		changed = append(changed, "seats")
	}
	if prev.TotalAmount != next.TotalAmount {
		changed = append(changed, "total_amount")
	}
	if prev.Submitting != next.Submitting {
		changed = append(changed, "submitting")
	}

	return changed
}

func sameStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
