package catalog

import "errors"

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrInvalidMovie  = errors.New("invalid movie")
)
