// Package memory is an in-process backend driver for tests and local runs.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kirinyoku/cinebook/internal/backend"
)

type account struct {
	backend.Account
	hash []byte
}

type Backend struct {
	mu sync.RWMutex

	accounts map[string]*account // by id
	byEmail  map[string]string
	sessions map[string]backend.Session // by secret
	docs     map[string]map[string]backend.Document

	cost       int
	sessionTTL time.Duration
	now        func() time.Time
}

var _ backend.Client = (*Backend)(nil)

type Option func(*Backend)

// WithBcryptCost lowers the hashing cost, mostly for tests.
func WithBcryptCost(cost int) Option {
	return func(b *Backend) { b.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(b *Backend) { b.sessionTTL = ttl }
}

func New(opts ...Option) *Backend {
	b := &Backend{
		accounts:   make(map[string]*account),
		byEmail:    make(map[string]string),
		sessions:   make(map[string]backend.Session),
		docs:       make(map[string]map[string]backend.Document),
		cost:       bcrypt.DefaultCost,
		sessionTTL: 365 * 24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) CreateAccount(_ context.Context, email, password, name string) (backend.Account, error) {
	const op = "memory.Backend.CreateAccount"

	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return backend.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.byEmail[email]; ok {
		return backend.Account{}, fmt.Errorf("%s: %w", op, backend.ErrConflict)
	}

	acc := &account{
		Account: backend.Account{
			ID:        backend.NewID(),
			Email:     email,
			Name:      name,
			CreatedAt: b.now().UTC(),
		},
		hash: hash,
	}
	b.accounts[acc.ID] = acc
	b.byEmail[email] = acc.ID

	return acc.Account, nil
}

func (b *Backend) CreateSession(_ context.Context, email, password string) (backend.Session, error) {
	const op = "memory.Backend.CreateSession"

	email = strings.ToLower(strings.TrimSpace(email))

	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok := b.byEmail[email]
	if !ok {
		return backend.Session{}, fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}
	acc := b.accounts[id]
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return backend.Session{}, fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}

	secret, err := newSecret()
	if err != nil {
		return backend.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s := backend.Session{
		ID:        backend.NewID(),
		AccountID: acc.ID,
		Secret:    secret,
		ExpiresAt: b.now().Add(b.sessionTTL).UTC(),
	}
	b.sessions[secret] = s

	return s, nil
}

func (b *Backend) DeleteSession(_ context.Context, secret, sessionID string) error {
	const op = "memory.Backend.DeleteSession"

	b.mu.Lock()
	defer b.mu.Unlock()

	cur, ok := b.sessions[secret]
	if !ok {
		return fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}

	if sessionID == "" || sessionID == backend.CurrentSession || sessionID == cur.ID {
		delete(b.sessions, secret)
		return nil
	}

	for k, s := range b.sessions {
		if s.ID == sessionID && s.AccountID == cur.AccountID {
			delete(b.sessions, k)
			return nil
		}
	}

	return fmt.Errorf("%s: %w", op, backend.ErrNotFound)
}

func (b *Backend) GetCurrentAccount(_ context.Context, secret string) (backend.Account, error) {
	const op = "memory.Backend.GetCurrentAccount"

	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.sessions[secret]
	if !ok || !b.now().Before(s.ExpiresAt) {
		return backend.Account{}, fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}

	acc, ok := b.accounts[s.AccountID]
	if !ok {
		return backend.Account{}, fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}

	return acc.Account, nil
}

func (b *Backend) ListDocuments(_ context.Context, collection string, q backend.Query) ([]backend.Document, error) {
	b.mu.RLock()
	out := make([]backend.Document, 0, len(b.docs[collection]))
	for _, d := range b.docs[collection] {
		if d.Match(q.Filters) {
			out = append(out, clone(d))
		}
	}
	b.mu.RUnlock()

	orders := q.Orders
	if len(orders) == 0 {
		orders = []backend.Order{backend.OrderAsc(backend.AttrCreatedAt)}
	}
	slices.SortStableFunc(out, func(x, y backend.Document) int {
		for _, o := range orders {
			c := compareAttr(x, y, o.Attribute)
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return strings.Compare(x.ID, y.ID)
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	return out, nil
}

func (b *Backend) GetDocument(_ context.Context, collection, id string) (backend.Document, error) {
	const op = "memory.Backend.GetDocument"

	b.mu.RLock()
	defer b.mu.RUnlock()

	d, ok := b.docs[collection][id]
	if !ok {
		return backend.Document{}, fmt.Errorf("%s: %w", op, backend.ErrNotFound)
	}

	return clone(d), nil
}

func (b *Backend) CreateDocument(_ context.Context, collection, id string, fields map[string]any) (backend.Document, error) {
	const op = "memory.Backend.CreateDocument"

	if id == "" {
		id = backend.NewID()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	coll, ok := b.docs[collection]
	if !ok {
		coll = make(map[string]backend.Document)
		b.docs[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return backend.Document{}, fmt.Errorf("%s: %w", op, backend.ErrConflict)
	}

	now := b.now().UTC()
	d := backend.Document{
		ID:         id,
		Collection: collection,
		CreatedAt:  now,
		UpdatedAt:  now,
		Fields:     maps.Clone(fields),
	}
	if d.Fields == nil {
		d.Fields = map[string]any{}
	}
	coll[id] = d

	return clone(d), nil
}

func (b *Backend) UpdateDocument(_ context.Context, collection, id string, fields map[string]any) (backend.Document, error) {
	const op = "memory.Backend.UpdateDocument"

	b.mu.Lock()
	defer b.mu.Unlock()

	d, ok := b.docs[collection][id]
	if !ok {
		return backend.Document{}, fmt.Errorf("%s: %w", op, backend.ErrNotFound)
	}

	d.Fields = maps.Clone(d.Fields)
	maps.Copy(d.Fields, fields)
	d.UpdatedAt = b.now().UTC()
	b.docs[collection][id] = d

	return clone(d), nil
}

// Count returns the number of documents in collection.
func (b *Backend) Count(collection string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.docs[collection])
}

func clone(d backend.Document) backend.Document {
	d.Fields = maps.Clone(d.Fields)
	return d
}

func compareAttr(x, y backend.Document, attr string) int {
	switch attr {
	case backend.AttrCreatedAt:
		return x.CreatedAt.Compare(y.CreatedAt)
	case backend.AttrUpdatedAt:
		return x.UpdatedAt.Compare(y.UpdatedAt)
	case backend.AttrID:
		return strings.Compare(x.ID, y.ID)
	}
	return strings.Compare(fmt.Sprint(x.Fields[attr]), fmt.Sprint(y.Fields[attr]))
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
