package repository

import (
	"academic_records/internal/common"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// translateWriteError turns constraint violations into business-rule conflicts so that a
// uniqueness race lost at the database surfaces the same way as a failed pre-check.
func translateWriteError(op string, err error, conflictMsg string) error {
	if common.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", conflictMsg, common.ErrConflict)
	}
	if common.IsForeignKeyViolation(err) {
		return fmt.Errorf("%s: record is referenced by or references missing data: %w", op, common.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func translateReadError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// execAffectingOne runs a statement that must touch exactly one row.
func execAffectingOne(ctx context.Context, db *sql.DB, op, conflictMsg, query string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateWriteError(op, err, conflictMsg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
