package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var validationEventColumns = []string{
	"id", "sequence", "timestamp", "kind", "subject", "topic",
	"accepted", "rejected", "was_blocked", "issues",
}

func (r *eventRepo) AppendValidationEvent(ctx context.Context, data ValidationEventData) error {
	issues := data.Issues
	if issues == nil {
		issues = []string{}
	}
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}

	err = r.appendEvent(ctx, "content_validation_events", validationEventColumns[3:],
		data.Kind,
		data.Subject,
		data.Topic,
		data.Accepted,
		data.Rejected,
		boolInt(data.WasBlocked),
		string(issuesJSON),
	)
	if err != nil {
		return fmt.Errorf("save validation event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryValidationEvents(ctx context.Context, opts QueryOpts) ([]ValidationEventRecord, error) {
	sel := sqlite.Select(validationEventColumns...).
		From(sqlite.Table("content_validation_events")).
		OrderBy(entsql.Desc("sequence"))
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC().UnixMilli()))
	}
	if opts.Kind != "" {
		sel.Where(entsql.EQ("kind", opts.Kind))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query validation events: %w", err)
	}
	defer rows.Close()

	var out []ValidationEventRecord
	for rows.Next() {
		var (
			rec        ValidationEventRecord
			tsMilli    int64
			wasBlocked int
			issues     string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Sequence, &tsMilli, &rec.Kind, &rec.Subject, &rec.Topic,
			&rec.Accepted, &rec.Rejected, &wasBlocked, &issues,
		); err != nil {
			return nil, fmt.Errorf("scan validation event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(tsMilli).UTC()
		rec.WasBlocked = wasBlocked != 0
		if err := json.Unmarshal([]byte(issues), &rec.Issues); err != nil {
			return nil, fmt.Errorf("decode issues for event %d: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
