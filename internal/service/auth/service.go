package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirinyoku/cinebook/internal/backend"
	"github.com/kirinyoku/cinebook/internal/domain"
)

type Service struct {
	client backend.Client
}

func New(client backend.Client) *Service {
	return &Service{client: client}
}

// Result is a signed-in user together with the secret for later calls.
type Result struct {
	User      domain.User
	Secret    string
	ExpiresAt time.Time
}

// SignUp creates the account, signs it in and creates the profile document.
//
// Returns:
//   - Result: the new profile and its session.
//   - error: auth.ErrAccountExists if the email is taken.
func (s *Service) SignUp(ctx context.Context, email, password, username string) (Result, error) {
	const op = "service.auth.SignUp"

	email = strings.TrimSpace(email)

	acc, err := s.client.CreateAccount(ctx, email, password, username)
	if err != nil {
		if errors.Is(err, backend.ErrConflict) {
			return Result{}, fmt.Errorf("%s: %w", op, ErrAccountExists)
		}
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	sess, err := s.client.CreateSession(ctx, email, password)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	d, err := s.client.CreateDocument(ctx, backend.CollectionUsers, backend.NewID(), map[string]any{
		"accountId": acc.ID,
		"email":     acc.Email,
		"username":  username,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	return Result{User: userFromDocument(d), Secret: sess.Secret, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Result, error) {
	const op = "service.auth.SignIn"

	sess, err := s.client.CreateSession(ctx, strings.TrimSpace(email), password)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return Result{}, fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.CurrentUser(ctx, sess.Secret)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	return Result{User: u, Secret: sess.Secret, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *Service) SignOut(ctx context.Context, secret string) error {
	const op = "service.auth.SignOut"

	if err := s.client.DeleteSession(ctx, secret, backend.CurrentSession); err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CurrentUser resolves a session secret to the profile of its account. A
// missing, expired or profile-less session is auth.ErrUnauthorized.
func (s *Service) CurrentUser(ctx context.Context, secret string) (domain.User, error) {
	const op = "service.auth.CurrentUser"

	if secret == "" {
		return domain.User{}, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	acc, err := s.client.GetCurrentAccount(ctx, secret)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return domain.User{}, fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	docs, err := s.client.ListDocuments(ctx, backend.CollectionUsers, backend.Query{
		Filters: []backend.Filter{backend.Equal("accountId", acc.ID)},
		Limit:   1,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(docs) == 0 {
		return domain.User{}, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	return userFromDocument(docs[0]), nil
}

// UpdateCity records city on the user's profile.
func (s *Service) UpdateCity(ctx context.Context, userID, city string) (domain.User, error) {
	const op = "service.auth.UpdateCity"

	if !domain.IsCity(city) {
		return domain.User{}, fmt.Errorf("%s: %w: %q", op, ErrInvalidCity, city)
	}

	d, err := s.client.UpdateDocument(ctx, backend.CollectionUsers, userID, map[string]any{"city": city})
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return userFromDocument(d), nil
}

func userFromDocument(d backend.Document) domain.User {
	return domain.User{
		ID:        d.ID,
		AccountID: d.String("accountId"),
		Email:     d.String("email"),
		Username:  d.String("username"),
		City:      d.String("city"),
	}
}
