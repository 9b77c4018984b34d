package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool is the subset of pgxpool.Pool the store needs.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps every collection in one JSONB table.
type PostgresStore struct {
	db    DBPool
	newID func() string
}

func NewPostgresStore(db DBPool) *PostgresStore {
	return &PostgresStore{db: db, newID: uuid.NewString}
}

const (
	listDocumentsSQL = `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 ORDER BY created_at, id`
	getDocumentSQL   = `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`
	whereDocumentSQL = `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND data @> $2::jsonb ORDER BY created_at, id`

	insertDocumentSQL = `INSERT INTO documents (collection, id, data, created_at, updated_at)
VALUES ($1, $2, $3::jsonb, NOW(), NOW())`

	updateDocumentSQL = `UPDATE documents SET data = data || $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2`
	deleteDocumentSQL = `DELETE FROM documents WHERE collection = $1 AND id = $2`
)

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.Query(ctx, listDocumentsSQL, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return collectDocuments(rows)
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	doc, err := scanDocument(s.db.QueryRow(ctx, getDocumentSQL, collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *PostgresStore) Where(ctx context.Context, collection, field string, value any) ([]Document, error) {
	filter, err := json.Marshal(map[string]any{field: value})
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	rows, err := s.db.Query(ctx, whereDocumentSQL, collection, string(filter))
	if err != nil {
		return nil, fmt.Errorf("query %s where %s: %w", collection, field, err)
	}
	return collectDocuments(rows)
}

func (s *PostgresStore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := s.newID()
	if _, err := s.db.Exec(ctx, insertDocumentSQL, collection, id, string(data)); err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	tag, err := s.db.Exec(ctx, updateDocumentSQL, collection, id, string(data))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Exec(ctx, deleteDocumentSQL, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func collectDocuments(rows pgx.Rows) ([]Document, error) {
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var (
		doc       Document
		data      []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&doc.ID, &data, &createdAt, &updatedAt); err != nil {
		return Document{}, err
	}
	doc.Fields = Fields{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc.Fields); err != nil {
			return Document{}, fmt.Errorf("decode document %s: %w", doc.ID, err)
		}
	}
	doc.CreatedAt = createdAt
	doc.UpdatedAt = updatedAt
	return doc, nil
}
