package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// eventRepo implements EventRepo over the local SQLite database.
type eventRepo struct {
	db *sql.DB
}

// appendEvent inserts one event row. The row's sequence number comes from
// global_sequence, which every event table shares, so LLM requests and
// validation events can be ordered against each other. Allocation and
// insert commit together; a failed insert does not leave a gap.
//
// columns excludes id, sequence and timestamp, which are filled in here.
func (r *eventRepo) appendEvent(ctx context.Context, table string, columns []string, values ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	row := append([]any{seq, time.Now().UTC().UnixMilli()}, values...)
	query, args := sqlite.Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(row...).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return tx.Commit()
}
