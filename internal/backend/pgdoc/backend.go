// Package pgdoc implements the backend contract on PostgreSQL: accounts and
// sessions in their own tables, collections as jsonb documents.
package pgdoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kirinyoku/cinebook/internal/backend"
	"github.com/kirinyoku/cinebook/internal/repository"
	"github.com/kirinyoku/cinebook/internal/repository/postgres"
	"github.com/kirinyoku/cinebook/internal/uow"
)

type Config struct {
	SessionKey []byte
	SessionTTL time.Duration
	BcryptCost int
	Logger     *slog.Logger
}

type Backend struct {
	uow      *uow.UoW
	docs     *postgres.DocumentRepo
	accounts *postgres.AccountRepo
	sessions *postgres.SessionRepo

	tokens tokenSigner
	ttl    time.Duration
	cost   int
	now    func() time.Time
	logger *slog.Logger
}

var _ backend.Client = (*Backend)(nil)

func New(store *postgres.Store, cfg Config) (*Backend, error) {
	const op = "pgdoc.New"

	if len(cfg.SessionKey) < 32 {
		return nil, fmt.Errorf("%s: session key must be at least 32 bytes", op)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	b := &Backend{
		uow:      uow.New(store),
		docs:     store.Documents(),
		accounts: store.Accounts(),
		sessions: store.Sessions(),
		ttl:      cfg.SessionTTL,
		cost:     cfg.BcryptCost,
		now:      time.Now,
		logger:   cfg.Logger,
	}
	b.tokens = tokenSigner{key: cfg.SessionKey, now: b.now}

	return b, nil
}

func (b *Backend) CreateAccount(ctx context.Context, email, password, name string) (backend.Account, error) {
	const op = "pgdoc.Backend.CreateAccount"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return backend.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	acc, err := b.accounts.Insert(ctx, postgres.AccountRow{
		Account: backend.Account{
			ID:    backend.NewID(),
			Email: normalizeEmail(email),
			Name:  name,
		},
		PasswordHash: hash,
	})
	if err != nil {
		return backend.Account{}, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return acc, nil
}

func (b *Backend) CreateSession(ctx context.Context, email, password string) (backend.Session, error) {
	const op = "pgdoc.Backend.CreateSession"

	acc, err := b.accounts.ByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return backend.Session{}, fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}
	if err != nil {
		return backend.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return backend.Session{}, fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}

	s := backend.Session{
		ID:        backend.NewID(),
		AccountID: acc.ID,
		ExpiresAt: b.now().Add(b.ttl).UTC(),
	}

	s.Secret, err = b.tokens.sign(s.ID, s.AccountID, s.ExpiresAt)
	if err != nil {
		return backend.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := b.sessions.Insert(ctx, postgres.SessionRow{
		ID:        s.ID,
		AccountID: s.AccountID,
		ExpiresAt: s.ExpiresAt,
	}); err != nil {
		return backend.Session{}, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return s, nil
}

func (b *Backend) DeleteSession(ctx context.Context, secret, sessionID string) error {
	const op = "pgdoc.Backend.DeleteSession"

	claims, err := b.tokens.parse(secret)
	if err != nil {
		return fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}
	if sessionID == "" || sessionID == backend.CurrentSession {
		sessionID = claims.ID
	}

	err = b.uow.Do(ctx, func(ctx context.Context, tx postgres.DB, after func(uow.AfterCommit)) error {
		cur, err := b.sessions.With(tx).Active(ctx, claims.ID, b.now())
		if err != nil {
			return err
		}

		removed, err := b.sessions.With(tx).Delete(ctx, cur.AccountID, sessionID)
		if err != nil {
			return err
		}
		if !removed {
			return repository.ErrNotFound
		}

		after(func(context.Context) {
			b.logger.Info("session deleted",
				"account_id", cur.AccountID,
				"session_id", sessionID,
				"own", sessionID == claims.ID,
			)
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) && sessionID == claims.ID {
			return fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
		}
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return nil
}

func (b *Backend) GetCurrentAccount(ctx context.Context, secret string) (backend.Account, error) {
	const op = "pgdoc.Backend.GetCurrentAccount"

	claims, err := b.tokens.parse(secret)
	if err != nil {
		return backend.Account{}, fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}

	s, err := b.sessions.Active(ctx, claims.ID, b.now())
	if errors.Is(err, repository.ErrNotFound) {
		return backend.Account{}, fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}
	if err != nil {
		return backend.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	acc, err := b.accounts.ByID(ctx, s.AccountID)
	if errors.Is(err, repository.ErrNotFound) {
		return backend.Account{}, fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}
	if err != nil {
		return backend.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	return acc, nil
}

// PurgeSessions deletes expired sessions and reports how many were removed.
func (b *Backend) PurgeSessions(ctx context.Context) (int64, error) {
	const op = "pgdoc.Backend.PurgeSessions"

	n, err := b.sessions.DeleteExpired(ctx, b.now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (b *Backend) ListDocuments(ctx context.Context, collection string, q backend.Query) ([]backend.Document, error) {
	const op = "pgdoc.Backend.ListDocuments"

	docs, err := b.docs.List(ctx, collection, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return docs, nil
}

func (b *Backend) GetDocument(ctx context.Context, collection, id string) (backend.Document, error) {
	const op = "pgdoc.Backend.GetDocument"

	d, err := b.docs.Get(ctx, collection, id)
	if err != nil {
		return backend.Document{}, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return d, nil
}

func (b *Backend) CreateDocument(ctx context.Context, collection, id string, fields map[string]any) (backend.Document, error) {
	const op = "pgdoc.Backend.CreateDocument"

	if id == "" {
		id = backend.NewID()
	}

	d, err := b.docs.Insert(ctx, collection, id, fields)
	if err != nil {
		return backend.Document{}, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return d, nil
}

func (b *Backend) UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) (backend.Document, error) {
	const op = "pgdoc.Backend.UpdateDocument"

	d, err := b.docs.Merge(ctx, collection, id, fields)
	if err != nil {
		return backend.Document{}, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return d, nil
}

// mapErr turns repository errors into their backend counterparts.
func mapErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", backend.ErrNotFound, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %w", backend.ErrConflict, err)
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
