package repositories

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "equiptrak/pkg/errors"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// writeError classifies an error returned by an INSERT or UPDATE. Constraint
// violations become PersistenceError so the store's message reaches the
// caller unchanged.
func writeError(err error) error {
	if err == nil {
		return nil
	}
	switch pgErrorCode(err) {
	case pgUniqueViolation, pgForeignKeyViolation, pgCheckViolation:
		var pgErr *pgconn.PgError
		errors.As(err, &pgErr)
		return apperrors.NewPersistenceError(errors.New(pgErr.Message))
	}
	return apperrors.NewPersistenceError(err)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	return err
}
