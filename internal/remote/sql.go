package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/abhisek/quizengine/internal/quiz"
)

// Driver names a supported database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver maps common aliases to a Driver.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres, nil
	}
	return "", fmt.Errorf("unsupported remote driver: %q", s)
}

const table = "quiz_questions"

var questionColumns = []string{
	"id", "question", "options", "correct_answer", "explanation",
}

// SQLRepository implements Repository on a SQL database shared between
// devices.
type SQLRepository struct {
	db      *sql.DB
	builder *entsql.DialectBuilder
}

// Open connects to the repository database and ensures the schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*SQLRepository, error) {
	var drvName, dialectName string
	switch driver {
	case DriverSQLite:
		drvName, dialectName = "sqlite", dialect.SQLite
	case DriverPostgres:
		drvName, dialectName = "pgx", dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported remote driver: %s", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("remote %s: dsn is required", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open remote repository: %w", err)
	}
	if driver == DriverSQLite {
		// Single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping remote repository: %w", err)
	}

	repo := NewSQLRepository(db, dialectName)
	if err := repo.ensureSchema(ctx, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("remote schema: %w", err)
	}
	return repo, nil
}

// NewSQLRepository wraps an open database whose schema already exists.
// dialectName is one of the ent dialect names.
func NewSQLRepository(db *sql.DB, dialectName string) *SQLRepository {
	return &SQLRepository{db: db, builder: entsql.Dialect(dialectName)}
}

// Close closes the database.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func (r *SQLRepository) ensureSchema(ctx context.Context, driver Driver) error {
	schema := schemaSQLite
	if driver == DriverPostgres {
		schema = schemaPostgres
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepository) Query(ctx context.Context, q Query) Result {
	sel := r.builder.Select(questionColumns...).
		From(r.builder.Table(table)).
		Where(entsql.And(
			entsql.EQ("subject", q.Subject),
			entsql.EQ("topic", q.Topic),
			entsql.EQ("difficulty", string(q.Difficulty)),
			entsql.EQ("age", q.Age),
		)).
		OrderBy(entsql.Asc("created_at"), entsql.Asc("id"))
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}
	return r.queryQuestions(ctx, "query", sel)
}

func (r *SQLRepository) FindByText(ctx context.Context, q TextQuery) Result {
	sel := r.builder.Select(questionColumns...).
		From(r.builder.Table(table)).
		Where(entsql.And(
			entsql.EQ("subject", q.Subject),
			entsql.EQ("topic", q.Topic),
			entsql.EQ("question", q.Question),
		)).
		Limit(1)
	return r.queryQuestions(ctx, "find", sel)
}

func (r *SQLRepository) queryQuestions(ctx context.Context, op string, sel *entsql.Selector) Result {
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Result{Err: sourceErr(op, err)}
	}
	defer rows.Close()

	var out []quiz.Question
	for rows.Next() {
		var (
			q       quiz.Question
			options string
		)
		if err := rows.Scan(&q.ID, &q.Question, &options, &q.CorrectAnswer, &q.Explanation); err != nil {
			return Result{Err: sourceErr(op, fmt.Errorf("scan: %w", err))}
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return Result{Err: sourceErr(op, fmt.Errorf("decode options of %s: %w", q.ID, err))}
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return Result{Err: sourceErr(op, err)}
	}
	return Result{Questions: out}
}

func (r *SQLRepository) Add(ctx context.Context, q NewQuestion) WriteResult {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return WriteResult{Err: sourceErr("add", fmt.Errorf("encode options: %w", err))}
	}
	createdAt := q.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	id := uuid.NewString()
	query, args := r.builder.Insert(table).
		Columns("id", "subject", "topic", "difficulty", "age",
			"question", "options", "correct_answer", "explanation", "created_at").
		Values(id, q.Subject, q.Topic, string(q.Difficulty), q.Age,
			q.Question.Question, string(options), q.CorrectAnswer, q.Explanation, createdAt.UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return WriteResult{Err: sourceErr("add", err)}
	}
	return WriteResult{ID: id}
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS quiz_questions (
	id             TEXT PRIMARY KEY,
	subject        TEXT NOT NULL,
	topic          TEXT NOT NULL,
	difficulty     TEXT NOT NULL,
	age            INTEGER NOT NULL,
	question       TEXT NOT NULL,
	options        TEXT NOT NULL,
	correct_answer TEXT NOT NULL,
	explanation    TEXT NOT NULL DEFAULT '',
	created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quiz_questions_lookup ON quiz_questions (subject, topic, difficulty, age);
CREATE INDEX IF NOT EXISTS idx_quiz_questions_text ON quiz_questions (subject, topic, question)
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS quiz_questions (
	id             TEXT PRIMARY KEY,
	subject        TEXT NOT NULL,
	topic          TEXT NOT NULL,
	difficulty     TEXT NOT NULL,
	age            INTEGER NOT NULL,
	question       TEXT NOT NULL,
	options        TEXT NOT NULL,
	correct_answer TEXT NOT NULL,
	explanation    TEXT NOT NULL DEFAULT '',
	created_at     BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quiz_questions_lookup ON quiz_questions (subject, topic, difficulty, age);
CREATE INDEX IF NOT EXISTS idx_quiz_questions_text ON quiz_questions (subject, topic, question)
`
