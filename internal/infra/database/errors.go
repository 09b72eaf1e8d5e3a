package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/xavierca1/ligue-funnel/internal/entity"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
)

// classify traduz erros do driver (pgx ou lib/pq) para os tipos de entity.
// Erros que não se encaixam voltam sem alteração.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromSQLState(pgErr.Code, pgErr.ConstraintName, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fromSQLState(string(pqErr.Code), pqErr.Constraint, err)
	}

	if isConnectionError(err) {
		return fmt.Errorf("%w: %w", entity.ErrStorageUnavailable, err)
	}
	return err
}

func fromSQLState(code, constraint string, err error) error {
	switch {
	case code == sqlStateUniqueViolation:
		return &entity.ConstraintError{Kind: entity.UniqueViolation, Constraint: constraint, Err: err}
	case code == sqlStateForeignKeyViolation:
		return &entity.ConstraintError{Kind: entity.ForeignKeyViolation, Constraint: constraint, Err: err}
	// 08: connection exception, 53: insufficient resources, 57P0x: servidor caindo
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"), strings.HasPrefix(code, "57P0"):
		return fmt.Errorf("%w: %w", entity.ErrStorageUnavailable, err)
	}
	return err
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
