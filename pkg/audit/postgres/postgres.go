// Package postgres is an audit.Store backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"

	"github.com/paw-chain/pawswap/pkg/audit"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const uniqueViolation = "23505"

// Store implements audit.Store on an audit_records table.
type Store struct {
	db *sql.DB
}

// Compile-time interface check.
var _ audit.Store = (*Store)(nil)

// Open connects to dsn, runs pending migrations and returns the store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

// New wraps an existing connection. The schema must already exist.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the embedded migrations.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load audit migrations: %w", err)
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{MigrationsTable: "audit_schema_migrations"})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply audit migrations: %w", err)
	}
	return nil
}

const insertQuery = `INSERT INTO audit_records (id, kind, action, user_id, entity_id, block_height, created_at, payload) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const selectColumns = `SELECT id, kind, action, user_id, entity_id, block_height, created_at, payload FROM audit_records`

// Append inserts a record. Returns ErrDuplicateKey if the id exists.
func (s *Store) Append(ctx context.Context, r audit.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, insertQuery,
		r.ID,
		string(r.Kind),
		r.Action,
		r.UserID,
		r.EntityID,
		int64(r.BlockHeight),
		r.Timestamp,
		[]byte(r.Payload),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return audit.ErrDuplicateKey
		}
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// Get returns a record by id.
func (s *Store) Get(ctx context.Context, id string) (audit.Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Record{}, audit.ErrNotFound
	}
	if err != nil {
		return audit.Record{}, fmt.Errorf("get audit record: %w", err)
	}
	return r, nil
}

// Query returns matching records, newest first.
func (s *Store) Query(ctx context.Context, f audit.Filter) ([]audit.Record, error) {
	query, args := buildQuery(f.Normalize())
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var out []audit.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return out, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func buildQuery(f audit.Filter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	add := func(col, val string) {
		args = append(args, val)
		where = append(where, col+" = $"+strconv.Itoa(len(args)))
	}
	if f.Kind != "" {
		add("kind", string(f.Kind))
	}
	if f.UserID != "" {
		add("user_id", f.UserID)
	}
	if f.EntityID != "" {
		add("entity_id", f.EntityID)
	}

	var sb strings.Builder
	sb.WriteString(selectColumns)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	args = append(args, f.Limit)
	sb.WriteString(" ORDER BY seq DESC LIMIT $" + strconv.Itoa(len(args)))
	return sb.String(), args
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(sc scanner) (audit.Record, error) {
	var (
		r       audit.Record
		kind    string
		height  int64
		payload []byte
	)
	if err := sc.Scan(&r.ID, &kind, &r.Action, &r.UserID, &r.EntityID, &height, &r.Timestamp, &payload); err != nil {
		return audit.Record{}, err
	}
	r.Kind = audit.Kind(kind)
	r.BlockHeight = uint64(height)
	r.Timestamp = r.Timestamp.UTC()
	r.Payload = payload
	return r, nil
}

func isDuplicateKeyError(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
