// Package backend defines the contract the service holds with its
// backend-as-a-service: accounts, sessions and document collections.
package backend

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Logical collection names. Drivers map them to their own identifiers.
const (
	CollectionUsers    = "users"
	CollectionMovies   = "movies"
	CollectionBookings = "bookings"
)

// Built-in document attributes usable in filters and orderings.
const (
	AttrID        = "$id"
	AttrCreatedAt = "$createdAt"
	AttrUpdatedAt = "$updatedAt"
)

// CurrentSession addresses the session a secret belongs to.
const CurrentSession = "current"

var (
	ErrNotFound     = errors.New("backend: not found")
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrConflict     = errors.New("backend: conflict")
)

type Account struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// Session is an authenticated session. Secret is what clients present on
// later calls.
type Session struct {
	ID        string
	AccountID string
	Secret    string
	ExpiresAt time.Time
}

type Document struct {
	ID         string
	Collection string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Fields     map[string]any
}

// Filter matches documents whose Attribute equals any of Values.
type Filter struct {
	Attribute string
	Values    []any
}

func Equal(attribute string, values ...any) Filter {
	return Filter{Attribute: attribute, Values: values}
}

type Order struct {
	Attribute string
	Desc      bool
}

func OrderAsc(attribute string) Order  { return Order{Attribute: attribute} }
func OrderDesc(attribute string) Order { return Order{Attribute: attribute, Desc: true} }

type Query struct {
	Filters []Filter
	Orders  []Order
	Limit   int
}

type Accounts interface {
	CreateAccount(ctx context.Context, email, password, name string) (Account, error)
	CreateSession(ctx context.Context, email, password string) (Session, error)
	// DeleteSession removes sessionID, or the session of secret itself when
	// sessionID is CurrentSession.
	DeleteSession(ctx context.Context, secret, sessionID string) error
	GetCurrentAccount(ctx context.Context, secret string) (Account, error)
}

type Documents interface {
	ListDocuments(ctx context.Context, collection string, q Query) ([]Document, error)
	GetDocument(ctx context.Context, collection, id string) (Document, error)
	CreateDocument(ctx context.Context, collection, id string, fields map[string]any) (Document, error)
	UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) (Document, error)
}

type Client interface {
	Accounts
	Documents
}

// NewID returns a fresh identifier for documents, accounts and sessions.
func NewID() string {
	return uuid.NewString()
}
