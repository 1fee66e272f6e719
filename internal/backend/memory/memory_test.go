package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kirinyoku/cinebook/internal/backend"
)

func newBackend(now func() time.Time) *Backend {
	opts := []Option{WithBcryptCost(bcrypt.MinCost)}
	if now != nil {
		opts = append(opts, WithClock(now))
	}
	return New(opts...)
}

func TestAccountsAndSessions(t *testing.T) {
	ctx := context.Background()
	b := newBackend(nil)

	acc, err := b.CreateAccount(ctx, "Ann@Example.com", "hunter22", "ann")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := b.CreateAccount(ctx, "ann@example.com", "other", "ann2"); !errors.Is(err, backend.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}

	if _, err := b.CreateSession(ctx, "ann@example.com", "wrong"); !errors.Is(err, backend.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for bad password, got %v", err)
	}

	s, err := b.CreateSession(ctx, "ann@example.com", "hunter22")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.AccountID != acc.ID || s.Secret == "" {
		t.Fatalf("unexpected session: %+v", s)
	}

	cur, err := b.GetCurrentAccount(ctx, s.Secret)
	if err != nil {
		t.Fatalf("GetCurrentAccount: %v", err)
	}
	if cur.ID != acc.ID {
		t.Fatalf("expected account %s, got %s", acc.ID, cur.ID)
	}

	if err := b.DeleteSession(ctx, s.Secret, backend.CurrentSession); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := b.GetCurrentAccount(ctx, s.Secret); !errors.Is(err, backend.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after sign out, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC)
	b := newBackend(func() time.Time { return now })
	b.sessionTTL = time.Hour

	if _, err := b.CreateAccount(ctx, "a@b.c", "pw", "a"); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	s, err := b.CreateSession(ctx, "a@b.c", "pw")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := b.GetCurrentAccount(ctx, s.Secret); !errors.Is(err, backend.ErrUnauthorized) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
}

func TestDocuments_FilterAndOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC)
	b := newBackend(func() time.Time { now = now.Add(time.Second); return now })

	for _, tc := range []struct{ id, creator string }{
		{"t1", "u1"}, {"t2", "u2"}, {"t3", "u1"},
	} {
		if _, err := b.CreateDocument(ctx, backend.CollectionBookings, tc.id, map[string]any{"creator": tc.creator}); err != nil {
			t.Fatalf("CreateDocument %s: %v", tc.id, err)
		}
	}

	docs, err := b.ListDocuments(ctx, backend.CollectionBookings, backend.Query{
		Filters: []backend.Filter{backend.Equal("creator", "u1")},
		Orders:  []backend.Order{backend.OrderDesc(backend.AttrCreatedAt)},
	})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "t3" || docs[1].ID != "t1" {
		t.Fatalf("unexpected result: %+v", docs)
	}

	if _, err := b.CreateDocument(ctx, backend.CollectionBookings, "t1", nil); !errors.Is(err, backend.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate id, got %v", err)
	}
}

func TestDocuments_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	b := newBackend(nil)

	if _, err := b.CreateDocument(ctx, backend.CollectionUsers, "u1", map[string]any{"username": "ann"}); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	d, err := b.UpdateDocument(ctx, backend.CollectionUsers, "u1", map[string]any{"city": "Pune"})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if d.String("username") != "ann" || d.String("city") != "Pune" {
		t.Fatalf("unexpected fields: %v", d.Fields)
	}

	if _, err := b.UpdateDocument(ctx, backend.CollectionUsers, "nope", nil); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := b.GetDocument(ctx, backend.CollectionMovies, "m1"); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDocuments_ReturnedCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	b := newBackend(nil)

	d, err := b.CreateDocument(ctx, backend.CollectionMovies, "m1", map[string]any{"title": "Dune"})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	d.Fields["title"] = "changed"

	got, err := b.GetDocument(ctx, backend.CollectionMovies, "m1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.String("title") != "Dune" {
		t.Fatalf("stored document was mutated: %v", got.Fields)
	}
}
