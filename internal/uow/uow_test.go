package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/kirinyoku/cinebook/internal/repository/postgres"
)

type fakeRunner struct {
	commitErr error
	runs      int
	opts      *pgx.TxOptions
}

func (r *fakeRunner) RunTx(ctx context.Context, opts *pgx.TxOptions, fn func(ctx context.Context, tx postgres.DB) error) error {
	r.runs++
	r.opts = opts
	if err := fn(ctx, nil); err != nil {
		return err
	}
	return r.commitErr
}

func TestDo_RunsHooksAfterCommit(t *testing.T) {
	u := New(&fakeRunner{})

	var order []string
	err := u.Do(context.Background(), func(ctx context.Context, _ postgres.DB, after func(AfterCommit)) error {
		after(func(context.Context) { order = append(order, "first") })
		after(func(context.Context) { order = append(order, "second") })
		order = append(order, "body")
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if len(order) != 3 || order[0] != "body" || order[1] != "first" || order[2] != "second" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestDo_OneTransactionWithDefaultOptions(t *testing.T) {
	r := &fakeRunner{}
	hooks := 0

	err := New(r).Do(context.Background(), func(ctx context.Context, _ postgres.DB, after func(AfterCommit)) error {
		after(func(context.Context) { hooks++ })
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if r.runs != 1 || r.opts != nil {
		t.Fatalf("expected one transaction with default options, got runs=%d opts=%v", r.runs, r.opts)
	}
	if hooks != 1 {
		t.Fatalf("expected the hook to run once, got %d", hooks)
	}
}

func TestDo_SkipsHooksOnFailure(t *testing.T) {
	boom := errors.New("boom")

	for name, runner := range map[string]*fakeRunner{
		"body fails":   {},
		"commit fails": {commitErr: boom},
	} {
		t.Run(name, func(t *testing.T) {
			u := New(runner)
			ran := false

			err := u.Do(context.Background(), func(ctx context.Context, _ postgres.DB, after func(AfterCommit)) error {
				after(func(context.Context) { ran = true })
				if runner.commitErr == nil {
					return boom
				}
				return nil
			})
			if !errors.Is(err, boom) {
				t.Fatalf("expected boom, got %v", err)
			}
			if ran {
				t.Fatal("hook must not run when the transaction fails")
			}
		})
	}
}
