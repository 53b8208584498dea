package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/polysign/mirsinn/internal/apperr"
	"github.com/polysign/mirsinn/internal/ports"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS documents (
    path       TEXT PRIMARY KEY,
    parent     TEXT NOT NULL DEFAULT '',
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS documents_parent_idx ON documents (parent);
`

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// PostgresStore keeps keyed JSON documents in a single table, addressed by
// slash-separated paths (days/{dateKey}, days/{dateKey}/questions/{id}).
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.DocumentStore = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the documents table when absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Get reads one document; absent documents return ok=false, not an error.
func (s *PostgresStore) Get(ctx context.Context, path string) (json.RawMessage, bool, error) {
	query, args, err := s.builder.
		Select("data").
		From("documents").
		Where(sq.Eq{"path": path}).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build get query: %w", err)
	}

	var data []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", path, err)
	}

	return json.RawMessage(data), true, nil
}

// Set upserts a single document outside of any batch.
func (s *PostgresStore) Set(ctx context.Context, path string, doc any) error {
	query, args, err := s.upsertSQL(path, doc)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

// List returns all documents directly under a parent path, keyed by path.
func (s *PostgresStore) List(ctx context.Context, parent string) (map[string]json.RawMessage, error) {
	query, args, err := s.builder.
		Select("path", "data").
		From("documents").
		Where(sq.Eq{"parent": parent}).
		OrderBy("path").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", parent, err)
	}
	defer rows.Close()

	result := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			path string
			data []byte
		)
		if err := rows.Scan(&path, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		result[path] = json.RawMessage(data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// Batch starts an atomic write batch backed by one transaction.
func (s *PostgresStore) Batch() ports.WriteBatch {
	return &writeBatch{store: s}
}

func (s *PostgresStore) upsertSQL(path string, doc any) (string, []any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", nil, fmt.Errorf("marshal %s: %w", path, err)
	}

	query, args, err := s.builder.
		Insert("documents").
		Columns("path", "parent", "data", "updated_at").
		Values(path, ParentPath(path), data, time.Now().UTC()).
		Suffix("ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert: %w", err)
	}
	return query, args, nil
}

type write struct {
	path string
	doc  any
}

type writeBatch struct {
	store  *PostgresStore
	writes []write
}

func (b *writeBatch) Set(path string, doc any) {
	b.writes = append(b.writes, write{path: path, doc: doc})
}

// Commit applies every staged write in one transaction. Any failure rolls
// the whole batch back and surfaces as a CommitError.
func (b *writeBatch) Commit(ctx context.Context) error {
	if len(b.writes) == 0 {
		return nil
	}

	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.NewCommit(err)
	}

	for _, w := range b.writes {
		query, args, err := b.store.upsertSQL(w.path, w.doc)
		if err != nil {
			_ = tx.Rollback()
			return apperr.NewCommit(err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return apperr.NewCommit(fmt.Errorf("write %s: %w", w.path, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.NewCommit(err)
	}
	return nil
}

// ParentPath returns the collection prefix of a document path, empty for
// top-level paths.
func ParentPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}
