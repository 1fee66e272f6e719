// Package appwrite implements the backend contract on the Appwrite Go SDK.
package appwrite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/appwrite/sdk-for-go/account"
	sdk "github.com/appwrite/sdk-for-go/appwrite"
	sdkclient "github.com/appwrite/sdk-for-go/client"
	"github.com/appwrite/sdk-for-go/databases"
	"github.com/appwrite/sdk-for-go/models"

	"github.com/kirinyoku/cinebook/internal/backend"
)

const defaultTimeout = 12 * time.Second

type Config struct {
	Endpoint   string
	ProjectID  string
	APIKey     string
	DatabaseID string
	// Collections maps logical collection names to Appwrite collection IDs.
	// Names without an entry are used as IDs directly.
	Collections map[string]string
}

// Client talks to one Appwrite project. Document calls authenticate with the
// API key; account calls made on behalf of a user carry their session secret.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

var _ backend.Client = (*Client)(nil)

// APIError is returned for any non-2xx answer from Appwrite.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("appwrite: %s %d %s: %s", e.Endpoint, e.StatusCode, e.Type, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return backend.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return backend.ErrUnauthorized
	case http.StatusConflict:
		return backend.ErrConflict
	}
	return nil
}

// New creates a client. httpClient supplies the transport and timeout of
// every SDK call; if nil, a default client is used.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	return &Client{cfg: cfg, httpClient: httpClient}
}

// sdk builds an SDK client for one call. A non-empty secret acts on behalf
// of that session; otherwise the API key is used. The SDK has no context
// parameter, so ctx rides on the transport.
func (c *Client) sdk(ctx context.Context, secret string) sdkclient.Client {
	opts := []sdkclient.ClientOption{
		sdk.WithEndpoint(c.cfg.Endpoint),
		sdk.WithProject(c.cfg.ProjectID),
	}
	if secret != "" {
		opts = append(opts, sdk.WithSession(secret))
	} else if c.cfg.APIKey != "" {
		opts = append(opts, sdk.WithKey(c.cfg.APIKey))
	}

	clt := sdk.NewClient(opts...)
	clt.Timeout = c.httpClient.Timeout
	clt.Client = &http.Client{
		Transport: contextTransport{ctx: ctx, next: c.httpClient.Transport},
		Timeout:   c.httpClient.Timeout,
	}
	return clt
}

func (c *Client) accounts(ctx context.Context, secret string) *account.Account {
	return sdk.NewAccount(c.sdk(ctx, secret))
}

func (c *Client) databases(ctx context.Context) *databases.Databases {
	return sdk.NewDatabases(c.sdk(ctx, ""))
}

type contextTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(req.WithContext(t.ctx))
}

func (c *Client) CreateAccount(ctx context.Context, email, password, name string) (backend.Account, error) {
	const op = "appwrite.Client.CreateAccount"

	acc := c.accounts(ctx, "")
	u, err := acc.Create(backend.NewID(), email, password, acc.WithCreateName(name))
	if err != nil {
		return backend.Account{}, fmt.Errorf("%s: %w", op, apiError(err, "POST /account"))
	}

	return toAccount(u), nil
}

func (c *Client) CreateSession(ctx context.Context, email, password string) (backend.Session, error) {
	const op = "appwrite.Client.CreateSession"

	s, err := c.accounts(ctx, "").CreateEmailPasswordSession(email, password)
	if err != nil {
		return backend.Session{}, fmt.Errorf("%s: %w", op, apiError(err, "POST /account/sessions/email"))
	}

	return backend.Session{
		ID:        s.Id,
		AccountID: s.UserId,
		Secret:    s.Secret,
		ExpiresAt: parseTime(s.Expire),
	}, nil
}

func (c *Client) DeleteSession(ctx context.Context, secret, sessionID string) error {
	const op = "appwrite.Client.DeleteSession"

	if sessionID == "" {
		sessionID = backend.CurrentSession
	}

	if _, err := c.accounts(ctx, secret).DeleteSession(sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, apiError(err, "DELETE /account/sessions/"+sessionID))
	}

	return nil
}

func (c *Client) GetCurrentAccount(ctx context.Context, secret string) (backend.Account, error) {
	const op = "appwrite.Client.GetCurrentAccount"

	if secret == "" {
		return backend.Account{}, fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	}

	u, err := c.accounts(ctx, secret).Get()
	if err != nil {
		return backend.Account{}, fmt.Errorf("%s: %w", op, apiError(err, "GET /account"))
	}

	return toAccount(u), nil
}

func (c *Client) ListDocuments(ctx context.Context, collection string, q backend.Query) ([]backend.Document, error) {
	const op = "appwrite.Client.ListDocuments"

	db := c.databases(ctx)
	list, err := db.ListDocuments(c.cfg.DatabaseID, c.collectionID(collection),
		db.WithListDocumentsQueries(encodeQueries(q)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, apiError(err, "GET "+c.documentsPath(collection)))
	}

	// Nested SDK documents drop custom attributes, so the list is decoded again.
	var raw struct {
		Documents []json.RawMessage `json:"documents"`
	}
	if err := list.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: decode documents: %w", op, err)
	}

	docs := make([]backend.Document, 0, len(raw.Documents))
	for _, r := range raw.Documents {
		d, err := decodeDocument(collection, r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		docs = append(docs, d)
	}

	return docs, nil
}

func (c *Client) GetDocument(ctx context.Context, collection, id string) (backend.Document, error) {
	const op = "appwrite.Client.GetDocument"

	doc, err := c.databases(ctx).GetDocument(c.cfg.DatabaseID, c.collectionID(collection), id)
	if err != nil {
		return backend.Document{}, fmt.Errorf("%s: %w", op, apiError(err, "GET "+c.documentsPath(collection)+"/"+id))
	}

	d, err := fromModel(collection, doc)
	if err != nil {
		return backend.Document{}, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

func (c *Client) CreateDocument(ctx context.Context, collection, id string, fields map[string]any) (backend.Document, error) {
	const op = "appwrite.Client.CreateDocument"

	if id == "" {
		id = backend.NewID()
	}

	doc, err := c.databases(ctx).CreateDocument(c.cfg.DatabaseID, c.collectionID(collection), id, fields)
	if err != nil {
		return backend.Document{}, fmt.Errorf("%s: %w", op, apiError(err, "POST "+c.documentsPath(collection)))
	}

	d, err := fromModel(collection, doc)
	if err != nil {
		return backend.Document{}, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

func (c *Client) UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) (backend.Document, error) {
	const op = "appwrite.Client.UpdateDocument"

	db := c.databases(ctx)
	doc, err := db.UpdateDocument(c.cfg.DatabaseID, c.collectionID(collection), id,
		db.WithUpdateDocumentData(fields))
	if err != nil {
		return backend.Document{}, fmt.Errorf("%s: %w", op, apiError(err, "PATCH "+c.documentsPath(collection)+"/"+id))
	}

	d, err := fromModel(collection, doc)
	if err != nil {
		return backend.Document{}, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

func (c *Client) collectionID(collection string) string {
	if mapped, ok := c.cfg.Collections[collection]; ok && mapped != "" {
		return mapped
	}
	return collection
}

func (c *Client) documentsPath(collection string) string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents", c.cfg.DatabaseID, c.collectionID(collection))
}

// apiError turns an SDK error into an APIError. Transport failures,
// context errors among them, are returned as they are.
func apiError(err error, endpoint string) error {
	var awErr *sdkclient.AppwriteError
	if !errors.As(err, &awErr) {
		return err
	}

	apiErr := &APIError{
		StatusCode: awErr.GetStatusCode(),
		Message:    strings.TrimSpace(awErr.GetMessage()),
		Endpoint:   endpoint,
	}

	var payload struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if json.Unmarshal([]byte(awErr.GetResponse()), &payload) == nil && payload.Message != "" {
		apiErr.Message = payload.Message
		apiErr.Type = payload.Type
	}
	if apiErr.Type == "" {
		apiErr.Type = http.StatusText(apiErr.StatusCode)
	}

	return apiErr
}

func toAccount(u *models.User) backend.Account {
	return backend.Account{
		ID:        u.Id,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: parseTime(u.CreatedAt),
	}
}

func fromModel(collection string, doc *models.Document) (backend.Document, error) {
	var raw json.RawMessage
	if err := doc.Decode(&raw); err != nil {
		return backend.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return decodeDocument(collection, raw)
}

func decodeDocument(collection string, raw json.RawMessage) (backend.Document, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return backend.Document{}, fmt.Errorf("decode document: %w", err)
	}

	d := backend.Document{Collection: collection, Fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		switch k {
		case backend.AttrID:
			d.ID, _ = v.(string)
		case backend.AttrCreatedAt:
			s, _ := v.(string)
			d.CreatedAt = parseTime(s)
		case backend.AttrUpdatedAt:
			s, _ := v.(string)
			d.UpdatedAt = parseTime(s)
		default:
			if strings.HasPrefix(k, "$") {
				continue
			}
			d.Fields[k] = v
		}
	}

	return d, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
