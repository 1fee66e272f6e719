package tickets

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrNoFeed         = errors.New("live ticket feed is not configured")
)
