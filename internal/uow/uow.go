package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kirinyoku/cinebook/internal/repository/postgres"
)

// AfterCommit runs once the transaction it was registered in has committed.
type AfterCommit func(ctx context.Context)

// TxRunner opens a transaction and commits it when fn succeeds.
type TxRunner interface {
	RunTx(ctx context.Context, opts *pgx.TxOptions, fn func(ctx context.Context, tx postgres.DB) error) error
}

// UoW groups repository calls into one transaction.
type UoW struct {
	runner TxRunner
}

func New(runner TxRunner) *UoW {
	return &UoW{runner: runner}
}

// Do runs fn inside a transaction. Hooks registered through after run only
// if the transaction commits, in registration order.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx postgres.DB, after func(AfterCommit)) error,
) error {
	var hooks []AfterCommit

	err := u.runner.RunTx(ctx, nil, func(ctx context.Context, tx postgres.DB) error {
		return fn(ctx, tx, func(h AfterCommit) {
			hooks = append(hooks, h)
		})
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
