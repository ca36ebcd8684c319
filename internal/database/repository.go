package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Dialect names the database/sql driver backing a store location.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "pgx"
)

// DialectFor returns the dialect for a store location. PostgreSQL URLs select
// pgx; anything else is treated as a SQLite file path.
func DialectFor(location string) Dialect {
	if strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// Store provides access to the benchmark star schema at one location.
//
// Store holds no connection. Every operation opens its own connection, runs in
// its own transaction and closes before returning; call volume is batch ETL,
// not a live service.
type Store struct {
	location string
	dialect  Dialect
	log      logrus.FieldLogger
}

// New creates a Store for the given location.
func New(location string, log logrus.FieldLogger) (*Store, error) {
	if location == "" {
		return nil, errors.New("store location is empty")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		location: location,
		dialect:  DialectFor(location),
		log:      log.WithField("component", "store"),
	}, nil
}

// Location returns the store location.
func (s *Store) Location() string {
	return s.location
}

// Dialect returns the driver used for this store.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) dsn() string {
	if s.dialect == SQLite {
		// Foreign keys are off by default in SQLite and are a per-connection
		// setting, so they go in the DSN.
		return s.location + "?_foreign_keys=on"
	}
	return s.location
}

func (s *Store) open(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open(string(s.dialect), s.dsn())
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", s.dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// withTx runs fn in a transaction on a fresh connection. The transaction is
// committed when fn succeeds and rolled back otherwise.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// insertReturningID executes an INSERT ... RETURNING <id> statement.
func (s *Store) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(ctx, tx.Rebind(query), args...).Scan(&id)
	})
	return id, err
}

// exec executes a statement that returns no rows.
func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		return err
	})
}

// lookupID runs a single-column id query. A missing row is reported as
// found == false, not as an error.
func (s *Store) lookupID(ctx context.Context, query string, args ...any) (int64, bool, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &id, tx.Rebind(query), args...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
