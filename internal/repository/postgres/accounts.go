package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/cinebook/internal/backend"
)

// AccountRow is an account together with its password hash.
type AccountRow struct {
	backend.Account
	PasswordHash []byte
}

type AccountRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *AccountRepo) With(db DB) *AccountRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *AccountRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Insert stores a new account. A taken email yields repository.ErrConflict.
func (r *AccountRepo) Insert(ctx context.Context, a AccountRow) (backend.Account, error) {
	const op = "postgres.AccountRepo.Insert"

	out := a.Account
	err := r.handle().QueryRow(ctx,
		`INSERT INTO accounts (id, email, name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		a.ID, a.Email, a.Name, a.PasswordHash,
	).Scan(&out.CreatedAt)
	if err != nil {
		return backend.Account{}, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *AccountRepo) ByEmail(ctx context.Context, email string) (AccountRow, error) {
	const op = "postgres.AccountRepo.ByEmail"

	var a AccountRow
	err := r.handle().QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at
		 FROM accounts WHERE email = $1`,
		email,
	).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return AccountRow{}, wrapDBErr(op, err)
	}

	return a, nil
}

func (r *AccountRepo) ByID(ctx context.Context, id string) (backend.Account, error) {
	const op = "postgres.AccountRepo.ByID"

	var a backend.Account
	err := r.handle().QueryRow(ctx,
		`SELECT id, email, name, created_at FROM accounts WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Email, &a.Name, &a.CreatedAt)
	if err != nil {
		return backend.Account{}, wrapDBErr(op, err)
	}

	return a, nil
}

type SessionRow struct {
	ID        string
	AccountID string
	ExpiresAt time.Time
}

type SessionRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SessionRepo) With(db DB) *SessionRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SessionRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *SessionRepo) Insert(ctx context.Context, s SessionRow) error {
	const op = "postgres.SessionRepo.Insert"

	_, err := r.handle().Exec(ctx,
		`INSERT INTO sessions (id, account_id, expires_at) VALUES ($1, $2, $3)`,
		s.ID, s.AccountID, s.ExpiresAt,
	)
	return wrapDBErr(op, err)
}

// Active returns the session if it exists and has not expired at now.
func (r *SessionRepo) Active(ctx context.Context, id string, now time.Time) (SessionRow, error) {
	const op = "postgres.SessionRepo.Active"

	var s SessionRow
	err := r.handle().QueryRow(ctx,
		`SELECT id, account_id, expires_at FROM sessions
		 WHERE id = $1 AND expires_at > $2`,
		id, now,
	).Scan(&s.ID, &s.AccountID, &s.ExpiresAt)
	if err != nil {
		return SessionRow{}, wrapDBErr(op, err)
	}

	return s, nil
}

// Delete removes a session of accountID. It reports whether one was removed.
func (r *SessionRepo) Delete(ctx context.Context, accountID, id string) (bool, error) {
	const op = "postgres.SessionRepo.Delete"

	tag, err := r.handle().Exec(ctx,
		`DELETE FROM sessions WHERE id = $1 AND account_id = $2`,
		id, accountID,
	)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteExpired removes sessions that expired before now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const op = "postgres.SessionRepo.DeleteExpired"

	tag, err := r.handle().Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}
