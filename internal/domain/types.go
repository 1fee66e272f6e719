package domain

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// Cities is the fixed list of cities a flow can be started in.
var Cities = []string{
	"Mumbai",
	"Delhi",
	"Bengaluru",
	"Hyderabad",
	"Chennai",
	"Kolkata",
	"Pune",
	"Ahmedabad",
	"Jaipur",
}

func IsCity(city string) bool {
	return city != "" && slices.Contains(Cities, city)
}

type MovieStatus string

const (
	MovieNowShowing MovieStatus = "now_showing"
	MovieUpcoming   MovieStatus = "upcoming"
)

// ParseMovieStatus accepts both the stored form ("now_showing") and the
// display form ("Now Showing").
func ParseMovieStatus(s string) (MovieStatus, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", " ")

	switch norm {
	case "now showing":
		return MovieNowShowing, true
	case "upcoming":
		return MovieUpcoming, true
	}

	return "", false
}

// Label is the form stored in movie documents.
func (s MovieStatus) Label() string {
	switch s {
	case MovieNowShowing:
		return "Now Showing"
	case MovieUpcoming:
		return "Upcoming"
	}
	return string(s)
}

type Movie struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Thumbnail string      `json:"thumbnail"`
	Status    MovieStatus `json:"status"`
	Theaters  []string    `json:"theaters"`
	Timings   []string    `json:"timings"`
	CreatedAt time.Time   `json:"created_at"`
}

func (m Movie) HasTheater(theater string) bool {
	return slices.Contains(m.Theaters, theater)
}

func (m Movie) HasTiming(t string) bool {
	return slices.Contains(m.Timings, t)
}

type Ticket struct {
	ID          string    `json:"id"`
	Creator     string    `json:"creator"`
	Movie       string    `json:"movie"`
	Theater     string    `json:"theater"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Seats       []string  `json:"seats"`
	City        string    `json:"city"`
	Thumbnail   string    `json:"img"`
	TotalAmount int       `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type User struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	City      string `json:"city,omitempty"`
}

// ShowDateLayout is the format show dates are exchanged in, e.g. "12 Jan, 2025".
const ShowDateLayout = "02 Jan, 2006"

// UpcomingDates returns the show dates bookable from now: today plus six days.
func UpcomingDates(now time.Time) []string {
	out := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		out = append(out, now.AddDate(0, 0, i).Format(ShowDateLayout))
	}
	return out
}

var seatCodeRe = regexp.MustCompile(`^[A-Z]{1,2}[1-9][0-9]?$`)

// IsSeatCode reports whether s looks like a seat code: row letters followed
// by the seat number, e.g. "A1" or "AB12".
func IsSeatCode(s string) bool {
	return seatCodeRe.MatchString(s)
}
