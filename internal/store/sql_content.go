package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// SQLContentStore implements ContentStore on the kv_entries table.
type SQLContentStore struct {
	db *sql.DB
}

// NewSQLContentStore wraps a SQLite database that already has the
// kv_entries table (see Open).
func NewSQLContentStore(db *sql.DB) *SQLContentStore {
	return &SQLContentStore{db: db}
}

func (s *SQLContentStore) Get(ctx context.Context, key string) (string, error) {
	query, args := sqlite.Select("value").
		From(sqlite.Table("kv_entries")).
		Where(entsql.EQ("key", key)).
		Query()

	var value string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLContentStore) Set(ctx context.Context, key, value string) error {
	query, args := sqlite.Insert("kv_entries").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLContentStore) Delete(ctx context.Context, key string) error {
	query, args := sqlite.Delete("kv_entries").
		Where(entsql.EQ("key", key)).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLContentStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	query, args := sqlite.Delete("kv_entries").
		Where(entsql.HasPrefix("key", prefix)).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete prefix %q: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
