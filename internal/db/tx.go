package db

import (
	"context"
	"errors"

	"hypoforum/internal/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TxFn is one atomic unit of work. Every query inside must go through tx.
type TxFn func(tx *gorm.DB) error

// WithTx runs fn in a single transaction. Typed errors come back unchanged,
// anything else is reported as a storage error. Nothing is committed on failure.
func WithTx(ctx context.Context, gdb *gorm.DB, fn TxFn) error {
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
	return errs.Ensure(err)
}

// ForUpdate adds a row lock where the dialect supports one.
// sqlite has no row locks; its single connection already serializes writers.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	switch tx.Dialector.Name() {
	case "postgres", "mysql":
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	default:
		return tx
	}
}

// IsDuplicateKey reports a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 23505 = unique_violation
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// IsNotFound reports gorm's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
