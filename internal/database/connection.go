package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // PostgreSQL driver

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/config"
)

// DB interface defines database operations
type DB interface {
	Querier
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	PingContext(ctx context.Context) error
	Close() error
}

// Querier is satisfied by both the pool and an open transaction
type Querier interface {
	sqlx.ExtContext
}

// PostgresDB implements the DB interface using sqlx
type PostgresDB struct {
	*sqlx.DB
}

// NewConnection creates a new database connection
func NewConnection(cfg config.DatabaseConfig) (DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{DB: db}, nil
}

// WithTx runs fn inside a transaction, rolling back on any error
func WithTx(ctx context.Context, db DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// translateError maps driver errors to application errors. Errors that are
// already typed pass through; anything else is wrapped with op for the logs.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return apperr.Conflict("%s already exists", constraintSubject(pqErr.Constraint)).WithErr(err)
		case pqForeignKeyViolation:
			if strings.HasPrefix(strings.ToLower(pqErr.Message), "update or delete") {
				return apperr.Conflict("record is still referenced by %s", pqErr.Table).WithCode("REFERENCED").WithErr(err)
			}
			return apperr.Conflict("referenced %s does not exist", constraintSubject(pqErr.Constraint)).WithCode("MISSING_REFERENCE").WithErr(err)
		case pqCheckViolation:
			return apperr.Conflict("constraint %s violated", pqErr.Constraint).WithErr(err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// constraintSubject turns "hotels_destination_id_fkey" into "destination"
func constraintSubject(constraint string) string {
	parts := strings.Split(constraint, "_")
	if len(parts) < 3 {
		return "record"
	}
	subject := parts[1 : len(parts)-1]
	if n := len(subject); n > 1 && subject[n-1] == "id" {
		subject = subject[:n-1]
	}
	return strings.Join(subject, " ")
}

// notFoundOr returns NotFound for sql.ErrNoRows and translates everything else
func notFoundOr(resource string, id interface{}, op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(resource, id)
	}
	return translateError(op, err)
}
