package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/cinebook/internal/backend"
)

type DocumentRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *DocumentRepo) With(db DB) *DocumentRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *DocumentRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *DocumentRepo) List(ctx context.Context, collection string, q backend.Query) ([]backend.Document, error) {
	const op = "postgres.DocumentRepo.List"

	sql, args, err := buildListQuery(collection, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.handle().Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []backend.Document
	for rows.Next() {
		d, err := scanDocument(collection, rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *DocumentRepo) Get(ctx context.Context, collection, id string) (backend.Document, error) {
	const op = "postgres.DocumentRepo.Get"

	row := r.handle().QueryRow(ctx,
		selectDocument+` WHERE collection = $1 AND id = $2`,
		collection, id,
	)

	d, err := scanDocument(collection, row)
	if err != nil {
		return backend.Document{}, wrapDBErr(op, err)
	}

	return d, nil
}

func (r *DocumentRepo) Insert(ctx context.Context, collection, id string, fields map[string]any) (backend.Document, error) {
	const op = "postgres.DocumentRepo.Insert"

	data, err := encodeFields(fields)
	if err != nil {
		return backend.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	row := r.handle().QueryRow(ctx,
		`INSERT INTO documents (collection, id, data)
		 VALUES ($1, $2, $3::jsonb)
		 RETURNING id, data, created_at, updated_at`,
		collection, id, data,
	)

	d, err := scanDocument(collection, row)
	if err != nil {
		return backend.Document{}, wrapDBErr(op, err)
	}

	return d, nil
}

// Merge overlays fields onto the stored document. Keys absent from fields
// are kept.
func (r *DocumentRepo) Merge(ctx context.Context, collection, id string, fields map[string]any) (backend.Document, error) {
	const op = "postgres.DocumentRepo.Merge"

	data, err := encodeFields(fields)
	if err != nil {
		return backend.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	row := r.handle().QueryRow(ctx,
		`UPDATE documents
		 SET data = data || $3::jsonb, updated_at = now()
		 WHERE collection = $1 AND id = $2
		 RETURNING id, data, created_at, updated_at`,
		collection, id, data,
	)

	d, err := scanDocument(collection, row)
	if err != nil {
		return backend.Document{}, wrapDBErr(op, err)
	}

	return d, nil
}

func scanDocument(collection string, row pgx.Row) (backend.Document, error) {
	d := backend.Document{Collection: collection}

	var raw []byte
	if err := row.Scan(&d.ID, &raw, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return backend.Document{}, err
	}
	if err := json.Unmarshal(raw, &d.Fields); err != nil {
		return backend.Document{}, fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	if d.Fields == nil {
		d.Fields = map[string]any{}
	}

	return d, nil
}

func encodeFields(fields map[string]any) (string, error) {
	if fields == nil {
		return "{}", nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(b), nil
}
