package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStore keeps session values in the session_values table.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const (
	getValueSQL = `SELECT value FROM session_values WHERE session_id = $1 AND key = $2`

	putValueSQL = `INSERT INTO session_values (session_id, key, value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	expireValuesSQL = `DELETE FROM session_values WHERE updated_at < $1`
)

func (s *SQLStore) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, getValueSQL, sessionID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session value %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Put(ctx context.Context, sessionID, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, putValueSQL, sessionID, key, value); err != nil {
		return fmt.Errorf("put session value %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Expire(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, expireValuesSQL, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("expire session values: %w", err)
	}
	return res.RowsAffected()
}
