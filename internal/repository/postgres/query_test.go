package postgres

import (
	"errors"
	"slices"
	"testing"

	"github.com/kirinyoku/cinebook/internal/backend"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    backend.Query
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "defaults to creation order",
			query:    backend.Query{},
			wantSQL:  selectDocument + ` WHERE collection = $1 ORDER BY created_at ASC, id ASC`,
			wantArgs: []any{"movies"},
		},
		{
			name: "filter and descending order",
			query: backend.Query{
				Filters: []backend.Filter{backend.Equal("creator", "u1")},
				Orders:  []backend.Order{backend.OrderDesc(backend.AttrCreatedAt)},
				Limit:   10,
			},
			wantSQL: selectDocument + ` WHERE collection = $1 AND data->>$2 = ANY($3::text[])` +
				` ORDER BY created_at DESC, id ASC LIMIT $4`,
			wantArgs: []any{"movies", "creator", []string{"u1"}, 10},
		},
		{
			name: "id filter with numeric values and field order",
			query: backend.Query{
				Filters: []backend.Filter{backend.Equal(backend.AttrID, "a", "b"), backend.Equal("amount", 200)},
				Orders:  []backend.Order{backend.OrderAsc("title")},
			},
			wantSQL: selectDocument + ` WHERE collection = $1 AND id = ANY($2::text[])` +
				` AND data->>$3 = ANY($4::text[]) ORDER BY data->>$5 ASC, id ASC`,
			wantArgs: []any{"movies", []string{"a", "b"}, "amount", []string{"200"}, "title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := buildListQuery("movies", tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sql != tt.wantSQL {
				t.Fatalf("sql mismatch\n got: %s\nwant: %s", sql, tt.wantSQL)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("expected %d args, got %d: %v", len(tt.wantArgs), len(args), args)
			}
			for i := range args {
				if !equalArg(args[i], tt.wantArgs[i]) {
					t.Fatalf("arg %d: expected %v, got %v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestBuildListQuery_RejectsBadAttribute(t *testing.T) {
	for _, attr := range []string{"", "title; DROP TABLE documents", "a-b", "$secret"} {
		_, _, err := buildListQuery("movies", backend.Query{
			Filters: []backend.Filter{backend.Equal(attr, "x")},
		})
		if !errors.Is(err, ErrBadAttribute) {
			t.Fatalf("attribute %q: expected ErrBadAttribute, got %v", attr, err)
		}
	}
}

func equalArg(got, want any) bool {
	if w, ok := want.([]string); ok {
		g, ok := got.([]string)
		return ok && slices.Equal(g, w)
	}
	return got == want
}
