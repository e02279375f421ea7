package journal

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// PostgresStore persists invocation entries in PostgreSQL. The schema is
// managed by the goose migrations in migrations/.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed journal.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Record(ctx context.Context, e *Entry) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO tool_invocations (
			id, tool, arguments, success, error, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID.String(), e.Tool, string(e.Arguments), e.Success,
		nullString(e.Error), e.DurationMs, e.CreatedAt,
	)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, tool, arguments, success, error, duration_ms, created_at
		FROM tool_invocations WHERE id = $1`, id.String())

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (p *PostgresStore) List(ctx context.Context, f Filter) ([]*Entry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, tool, arguments, success, error, duration_ms, created_at
		FROM tool_invocations
		WHERE ($1::text = '' OR tool = $1::text)
		ORDER BY created_at DESC
		LIMIT $2`, f.Tool, f.limit())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := []*Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// --- scanners ---

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(sc scanner) (*Entry, error) {
	e := &Entry{}
	var (
		id     string
		args   string
		errMsg sql.NullString
	)
	if err := sc.Scan(&id, &e.Tool, &args, &e.Success, &errMsg, &e.DurationMs, &e.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	e.ID = parsed
	e.Arguments = []byte(args)
	e.Error = errMsg.String
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Store = (*PostgresStore)(nil)
