package flow

import (
	"errors"
	"strings"
)

var (
	ErrFlowClosed        = errors.New("flow is closed")
	ErrSubmissionPending = errors.New("booking submission in progress")
)

// ValidationError reports a selection precondition that is not met. The flow
// state is left untouched when it is returned.
type ValidationError struct {
	Msg     string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return e.Msg
	}
	return e.Msg + ": " + strings.Join(e.Missing, ", ")
}

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
