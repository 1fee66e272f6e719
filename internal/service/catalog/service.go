package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/kirinyoku/cinebook/internal/backend"
	"github.com/kirinyoku/cinebook/internal/domain"
)

// Service reads the movie catalog from the backend. Nothing is cached:
// identical reads in flight at the same moment share one backend call.
type Service struct {
	docs backend.Documents
	sf   singleflight.Group
}

func New(docs backend.Documents) *Service {
	return &Service{docs: docs}
}

// Sections is the home screen split of the catalog.
type Sections struct {
	NowShowing []domain.Movie `json:"now_showing"`
	Upcoming   []domain.Movie `json:"upcoming"`
}

type NewMovie struct {
	Title     string
	Thumbnail string
	Status    domain.MovieStatus
	Theaters  []string
	Timings   []string
}

func (s *Service) Cities() []string {
	return domain.Cities
}

// ListMovies returns every movie, oldest first. The returned slice is shared
// with concurrent callers and must not be modified.
//
// Returns:
//   - []domain.Movie: movies in creation order.
//   - error: the backend failure, wrapped.
func (s *Service) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	const op = "service.catalog.ListMovies"

	v, err := s.shared(ctx, "movies", func(ctx context.Context) (any, error) {
		docs, err := s.docs.ListDocuments(ctx, backend.CollectionMovies, backend.Query{
			Orders: []backend.Order{backend.OrderAsc(backend.AttrCreatedAt)},
		})
		if err != nil {
			return nil, err
		}

		movies := make([]domain.Movie, 0, len(docs))
		for _, d := range docs {
			movies = append(movies, movieFromDocument(d))
		}
		return movies, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v.([]domain.Movie), nil
}

// GetMovie returns catalog.ErrMovieNotFound when id does not exist.
func (s *Service) GetMovie(ctx context.Context, id string) (domain.Movie, error) {
	const op = "service.catalog.GetMovie"

	v, err := s.shared(ctx, "movie:"+id, func(ctx context.Context) (any, error) {
		d, err := s.docs.GetDocument(ctx, backend.CollectionMovies, id)
		if err != nil {
			if errors.Is(err, backend.ErrNotFound) {
				return nil, ErrMovieNotFound
			}
			return nil, err
		}
		return movieFromDocument(d), nil
	})
	if err != nil {
		return domain.Movie{}, fmt.Errorf("%s: %w", op, err)
	}

	return v.(domain.Movie), nil
}

// shared runs fn once for every caller waiting on key. fn gets a context
// detached from the caller's cancellation; each caller still returns as
// soon as its own ctx is done.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Sections splits the catalog into movies open for booking and upcoming
// ones. Movies with an unrecognised status appear in neither.
func (s *Service) Sections(ctx context.Context) (Sections, error) {
	const op = "service.catalog.Sections"

	movies, err := s.ListMovies(ctx)
	if err != nil {
		return Sections{}, fmt.Errorf("%s: %w", op, err)
	}

	out := Sections{NowShowing: []domain.Movie{}, Upcoming: []domain.Movie{}}
	for _, m := range movies {
		switch m.Status {
		case domain.MovieNowShowing:
			out.NowShowing = append(out.NowShowing, m)
		case domain.MovieUpcoming:
			out.Upcoming = append(out.Upcoming, m)
		}
	}

	return out, nil
}

func (s *Service) CreateMovie(ctx context.Context, in NewMovie) (domain.Movie, error) {
	const op = "service.catalog.CreateMovie"

	if err := in.validate(); err != nil {
		return domain.Movie{}, fmt.Errorf("%s: %w", op, err)
	}

	d, err := s.docs.CreateDocument(ctx, backend.CollectionMovies, backend.NewID(), map[string]any{
		"title":     strings.TrimSpace(in.Title),
		"thumbnail": in.Thumbnail,
		"status":    in.Status.Label(),
		"theaters":  in.Theaters,
		"timings":   in.Timings,
	})
	if err != nil {
		return domain.Movie{}, fmt.Errorf("%s: %w", op, err)
	}

	return movieFromDocument(d), nil
}

func (in NewMovie) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidMovie)
	case in.Status != domain.MovieNowShowing && in.Status != domain.MovieUpcoming:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidMovie, in.Status)
	case in.Status == domain.MovieNowShowing && (len(in.Theaters) == 0 || len(in.Timings) == 0):
		return fmt.Errorf("%w: a movie now showing needs theaters and timings", ErrInvalidMovie)
	}
	return nil
}

func movieFromDocument(d backend.Document) domain.Movie {
	status, _ := domain.ParseMovieStatus(d.String("status"))

	return domain.Movie{
		ID:        d.ID,
		Title:     d.String("title"),
		Thumbnail: d.String("thumbnail"),
		Status:    status,
		Theaters:  d.Strings("theaters"),
		Timings:   d.Strings("timings"),
		CreatedAt: d.CreatedAt,
	}
}
