package appwrite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kirinyoku/cinebook/internal/backend"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	return New(Config{
		Endpoint:    server.URL + "/v1/",
		ProjectID:   "proj",
		APIKey:      "key",
		DatabaseID:  "db",
		Collections: map[string]string{backend.CollectionMovies: "movies-coll"},
	}, server.Client())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestListDocuments_SendsQueriesAndDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/databases/db/collections/movies-coll/documents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Appwrite-Project"); got != "proj" {
			t.Errorf("project header = %q", got)
		}
		if got := r.Header.Get("X-Appwrite-Key"); got != "key" {
			t.Errorf("key header = %q", got)
		}

		queries := r.URL.Query()["queries[]"]
		want := []string{
			`{"method":"equal","attribute":"status","values":["Now Showing"]}`,
			`{"method":"orderAsc","attribute":"$createdAt"}`,
		}
		if len(queries) != len(want) {
			t.Errorf("expected %d queries, got %v", len(want), queries)
			return
		}
		for i := range want {
			if queries[i] != want[i] {
				t.Errorf("query %d = %s, want %s", i, queries[i], want[i])
			}
		}

		writeJSON(w, http.StatusOK, `{"total":1,"documents":[{
			"$id":"m1","$collectionId":"movies-coll","$createdAt":"2025-01-10T08:00:00.000+00:00",
			"title":"Interstellar","theaters":["PVR","INOX"]}]}`)
	})

	docs, err := client.ListDocuments(context.Background(), backend.CollectionMovies, backend.Query{
		Filters: []backend.Filter{backend.Equal("status", "Now Showing")},
		Orders:  []backend.Order{backend.OrderAsc(backend.AttrCreatedAt)},
	})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	d := docs[0]
	if d.ID != "m1" || d.String("title") != "Interstellar" {
		t.Fatalf("unexpected document: %+v", d)
	}
	if got := d.Strings("theaters"); len(got) != 2 || got[1] != "INOX" {
		t.Fatalf("unexpected theaters: %v", got)
	}
	if d.CreatedAt.IsZero() {
		t.Fatal("expected $createdAt to be parsed")
	}
	if _, ok := d.Fields["$collectionId"]; ok {
		t.Fatal("system attributes must not leak into fields")
	}
}

func TestCreateDocument_WrapsData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/v1/databases/db/collections/bookings/documents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body struct {
			DocumentID string         `json:"documentId"`
			Data       map[string]any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if body.DocumentID != "t1" || body.Data["theater"] != "PVR" {
			t.Errorf("unexpected body: %+v", body)
		}

		writeJSON(w, http.StatusCreated, `{"$id":"t1","theater":"PVR","amount":200}`)
	})

	d, err := client.CreateDocument(context.Background(), backend.CollectionBookings, "t1", map[string]any{"theater": "PVR"})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if d.ID != "t1" || d.Int("amount") != 200 {
		t.Fatalf("unexpected document: %+v", d)
	}
}

func TestGetCurrentAccount_UsesSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Appwrite-Session"); got != "secret" {
			t.Errorf("session header = %q", got)
		}
		if got := r.Header.Get("X-Appwrite-Key"); got != "" {
			t.Errorf("key must not be sent with a session, got %q", got)
		}
		writeJSON(w, http.StatusOK, `{"$id":"acc1","email":"a@b.c","name":"ann"}`)
	})

	acc, err := client.GetCurrentAccount(context.Background(), "secret")
	if err != nil {
		t.Fatalf("GetCurrentAccount: %v", err)
	}
	if acc.ID != "acc1" || acc.Name != "ann" {
		t.Fatalf("unexpected account: %+v", acc)
	}
}

func TestErrors_MapToSentinels(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, backend.ErrNotFound},
		{http.StatusUnauthorized, backend.ErrUnauthorized},
		{http.StatusConflict, backend.ErrConflict},
	}

	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, `{"message":"nope","code":0,"type":"some_type"}`)
		})

		_, err := client.GetDocument(context.Background(), backend.CollectionMovies, "m1")
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		if !strings.Contains(err.Error(), "nope") {
			t.Fatalf("expected message in error, got %v", err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Type != "some_type" {
			t.Fatalf("expected APIError with type some_type, got %v", err)
		}
	}
}

func TestServerError_IsNotASentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	_, err := client.ListDocuments(context.Background(), backend.CollectionUsers, backend.Query{})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected APIError 500, got %v", err)
	}
	if errors.Is(err, backend.ErrNotFound) {
		t.Fatal("500 must not look like not found")
	}
}

func TestCreateSession_ReturnsSecret(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/account/sessions/email" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-Appwrite-Key"); got != "key" {
			t.Errorf("key header = %q", got)
		}
		writeJSON(w, http.StatusCreated, `{"$id":"s1","userId":"acc1","secret":"sec","expire":"2025-02-10T08:00:00.000+00:00"}`)
	})

	s, err := client.CreateSession(context.Background(), "a@b.c", "hunter2024")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.ID != "s1" || s.AccountID != "acc1" || s.Secret != "sec" || s.ExpiresAt.IsZero() {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestDeleteSession_NoContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/v1/account/sessions/current" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-Appwrite-Session"); got != "secret" {
			t.Errorf("session header = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.DeleteSession(context.Background(), "secret", ""); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
}

func TestCancelledContext_StopsCall(t *testing.T) {
	var called atomic.Bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
		writeJSON(w, http.StatusOK, `{"$id":"m1"}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetDocument(ctx, backend.CollectionMovies, "m1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called.Load() {
		t.Fatal("request must not reach the server")
	}
}

func TestEncodeQueries_Limit(t *testing.T) {
	got := encodeQueries(backend.Query{
		Orders: []backend.Order{backend.OrderDesc(backend.AttrCreatedAt)},
		Limit:  1,
	})
	want := []string{
		`{"method":"orderDesc","attribute":"$createdAt"}`,
		`{"method":"limit","values":[1]}`,
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
