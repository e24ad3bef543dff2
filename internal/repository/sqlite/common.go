package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"work-tracker/internal/errors"
)

// HandleDatabaseError converts database errors to structured app errors.
// Deadline expiry becomes a timeout; everything else is a database error.
func HandleDatabaseError(operation string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(operation, err)
	}
	return errors.NewDatabaseError(operation, err)
}

// HandleWriteError is HandleDatabaseError plus unique constraint detection,
// which is reported as a conflict on entityType/id.
func HandleWriteError(operation, entityType, id string, err error) error {
	if isUniqueViolation(err) {
		return errors.NewConflictError(entityType, id)
	}
	return HandleDatabaseError(operation, err)
}

// HandleNoRowsError handles sql.ErrNoRows errors consistently
func HandleNoRowsError(err error, entityType string, id string) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError(entityType, id)
	}
	return err
}

// ValidateRowsAffected checks if a database operation affected the expected number of rows
func ValidateRowsAffected(result sql.Result, entityType string, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return HandleDatabaseError("get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError(entityType, id)
	}
	return nil
}

// ExecuteWithLastInsertID executes an insert and returns the new row ID
func ExecuteWithLastInsertID(ctx context.Context, db sqlx.ExecerContext, query string, entityType string, id string, args ...interface{}) (int64, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, HandleWriteError("insert "+entityType, entityType, id, err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, HandleDatabaseError("get last insert ID", err)
	}

	return lastID, nil
}

// ExecuteWithRowsAffected executes a statement and fails with NotFound when
// no row matched
func ExecuteWithRowsAffected(ctx context.Context, db sqlx.ExecerContext, query string, entityType string, id string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return HandleWriteError("update "+entityType, entityType, id, err)
	}

	return ValidateRowsAffected(result, entityType, id)
}

// ExecuteCount executes a bulk statement and returns how many rows it touched
func ExecuteCount(ctx context.Context, db sqlx.ExecerContext, operation string, query string, args ...interface{}) (int64, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, HandleDatabaseError(operation, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, HandleDatabaseError("get rows affected", err)
	}
	return n, nil
}

// QuerySingle runs a query expected to return exactly one row and scans it
// into a T by db tag
func QuerySingle[T any](ctx context.Context, db sqlx.QueryerContext, query string, entityType string, id string, args ...interface{}) (*T, error) {
	var result T
	if err := sqlx.GetContext(ctx, db, &result, query, args...); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError(entityType, id)
		}
		return nil, HandleDatabaseError("scan "+entityType, err)
	}
	return &result, nil
}

// QueryMultiple runs a query and scans every row into a T by db tag. An
// empty result is an empty, non-nil slice.
func QueryMultiple[T any](ctx context.Context, db sqlx.QueryerContext, query string, entityType string, args ...interface{}) ([]*T, error) {
	results := make([]*T, 0)
	if err := sqlx.SelectContext(ctx, db, &results, query, args...); err != nil {
		return nil, HandleDatabaseError("query "+entityType, err)
	}
	return results, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func idString(id int64) string {
	return fmt.Sprintf("%d", id)
}
