package booking

import "errors"

var (
	ErrBookingFailed = errors.New("booking failed")
	ErrNoUser        = errors.New("booking requires a signed-in user")
)
