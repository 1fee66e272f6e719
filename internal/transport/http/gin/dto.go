package httpgin

import (
	"time"

	"github.com/jinzhu/copier"

	"github.com/kirinyoku/cinebook/internal/flow"
)

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Username string `json:"username" binding:"required,max=64"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CityRequest struct {
	City string `json:"city" binding:"required,city"`
}

// FlowCityRequest leaves the city check to the flow so that an unknown city
// is reported like every other selection error.
type FlowCityRequest struct {
	City string `json:"city" binding:"required"`
}

type MovieRequest struct {
	MovieID string `json:"movie_id" binding:"required"`
}

type DateRequest struct {
	Date string `json:"date" binding:"required"`
}

type TheaterRequest struct {
	Theater string `json:"theater" binding:"required"`
}

type TimeRequest struct {
	Time string `json:"time" binding:"required"`
}

type SeatURI struct {
	ID   string `uri:"id" binding:"required"`
	Seat string `uri:"seat" binding:"required,seatcode"`
}

type CreateMovieRequest struct {
	Title     string   `json:"title" binding:"required"`
	Thumbnail string   `json:"thumbnail" binding:"omitempty,url"`
	Status    string   `json:"status" binding:"required"`
	Theaters  []string `json:"theaters" binding:"dive,required"`
	Timings   []string `json:"timings" binding:"dive,required"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	City     string `json:"city,omitempty"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type MovieResponse struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Thumbnail string   `json:"thumbnail"`
	Status    string   `json:"status"`
	Theaters  []string `json:"theaters"`
	Timings   []string `json:"timings"`
}

type MoviesResponse struct {
	NowShowing []MovieResponse `json:"now_showing"`
	Upcoming   []MovieResponse `json:"upcoming"`
}

type CitiesResponse struct {
	Cities []string `json:"cities"`
}

type PreferredCityResponse struct {
	City string `json:"city"`
	Set  bool   `json:"set"`
}

type OrderResponse struct {
	FlowID      string   `json:"flow_id"`
	City        string   `json:"city"`
	MovieID     string   `json:"movie_id"`
	MovieTitle  string   `json:"movie_title"`
	Date        string   `json:"date"`
	Theater     string   `json:"theater"`
	Time        string   `json:"time"`
	Seats       []string `json:"seats"`
	UnitPrice   int      `json:"unit_price"`
	TotalAmount int      `json:"total_amount"`
}

type TicketResponse struct {
	ID          string    `json:"id"`
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

// FlowEvent is one transition as streamed to flow subscribers.
type FlowEvent struct {
	Changed []string      `json:"changed"`
	Flow    flow.Snapshot `json:"flow"`
}

// mapTo copies the fields of src into a new T by name.
func mapTo[T any](src any) (T, error) {
	var dst T
	err := copier.Copy(&dst, src)
	return dst, err
}
