// Package pgutil opens the services' Postgres pools and classifies driver
// errors.
package pgutil

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"kyri56xcaesar/athlete-tracker/internal/logger"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

func DSN(user, password, address, name string) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", user, password, address, name)
}

// Connect opens a pool, pings it and applies the init script when one is
// given.
func Connect(ctx context.Context, dsn, initSQLPath string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping the db: %w", err)
	}

	if initSQLPath == "" {
		return pool, nil
	}

	b, err := os.ReadFile(initSQLPath)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to read the init sql file: %w", err)
	}

	logger.Info("executing initialization script %s...", initSQLPath)
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to execute init sql: %w", err)
	}

	return pool, nil
}

func code(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}

	return "", ""
}

// IsUniqueViolation reports a unique constraint failure. When constraint is
// not empty it must match too.
func IsUniqueViolation(err error, constraint string) bool {
	c, name := code(err)
	return c == uniqueViolation && (constraint == "" || name == constraint)
}

func IsForeignKeyViolation(err error) bool {
	c, _ := code(err)
	return c == foreignKeyViolation
}

func IsCheckViolation(err error) bool {
	c, _ := code(err)
	return c == checkViolation
}
