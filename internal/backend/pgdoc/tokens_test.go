package pgdoc

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kirinyoku/cinebook/internal/backend"
	"github.com/kirinyoku/cinebook/internal/repository"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestTokenSigner_RoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC)
	s := tokenSigner{key: testKey, now: func() time.Time { return now }}

	secret, err := s.sign("sess-1", "acc-1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := s.parse(secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID != "sess-1" || claims.Subject != "acc-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenSigner_RejectsExpired(t *testing.T) {
	now := time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC)
	s := tokenSigner{key: testKey, now: func() time.Time { return now }}

	secret, err := s.sign("sess-1", "acc-1", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	now = now.Add(time.Hour)
	if _, err := s.parse(secret); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestTokenSigner_RejectsForeignKey(t *testing.T) {
	now := time.Now()
	issuer := tokenSigner{key: []byte("ffffffffffffffffffffffffffffffff"), now: time.Now}
	verifier := tokenSigner{key: testKey, now: time.Now}

	secret, err := issuer.sign("sess-1", "acc-1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.parse(secret); err == nil {
		t.Fatal("expected token signed with another key to be rejected")
	}
	if _, err := verifier.parse("not-a-token"); err == nil {
		t.Fatal("expected garbage to be rejected")
	}
}

func TestMapErr(t *testing.T) {
	nf := mapErr(fmt.Errorf("op: %w", repository.ErrNotFound))
	if !errors.Is(nf, backend.ErrNotFound) || !errors.Is(nf, repository.ErrNotFound) {
		t.Fatalf("expected both not-found sentinels, got %v", nf)
	}

	conflict := mapErr(repository.ErrConflict)
	if !errors.Is(conflict, backend.ErrConflict) {
		t.Fatalf("expected backend.ErrConflict, got %v", conflict)
	}

	other := errors.New("boom")
	if mapErr(other) != other {
		t.Fatal("unrelated errors must pass through")
	}
}

func TestNew_RequiresLongKey(t *testing.T) {
	if _, err := New(nil, Config{SessionKey: []byte("short")}); err == nil {
		t.Fatal("expected error for short key")
	}
}
