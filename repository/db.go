// repository/db.go
package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/fadhlanhapp/tripplanner-backend/config"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the Postgres error code for a unique constraint failure
const uniqueViolation = "23505"

// Open connects to Postgres and verifies the connection
func Open(ctx context.Context, cfg config.DB) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test the connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("connected to database", "host", cfg.Host, "name", cfg.Name)
	return db, nil
}

// EnsureSchema creates any missing tables
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// PostgresStore is the LedgerStore backed by Postgres
type PostgresStore struct {
	*ExpenseRepository
	*TripRepository
	*UserRepository
	*InvitationRepository
	*BookingRepository
	db *sql.DB
}

// NewPostgresStore wires every repository to the same connection pool
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		ExpenseRepository:    NewExpenseRepository(db),
		TripRepository:       NewTripRepository(db),
		UserRepository:       NewUserRepository(db),
		InvitationRepository: NewInvitationRepository(db),
		BookingRepository:    NewBookingRepository(db),
		db:                   db,
	}
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// notFoundOr maps sql.ErrNoRows to a not found error and wraps anything else
func notFoundOr(err error, resource, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.NewNotFoundError(resource)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// likePrefix escapes LIKE wildcards so prefix is matched literally
func likePrefix(prefix string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(prefix) + "%"
}

// whereBuilder collects AND conditions with numbered placeholders
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) placeholder(arg interface{}) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var _ LedgerStore = (*PostgresStore)(nil)
