package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgreSQL SQLSTATEs that mean "lost a race, try again".
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// ErrStockConcurrente is returned by guarded stock decrements that matched no
// row: someone else consumed the stock between the check and the write.
var ErrStockConcurrente = errors.New("stock modificado concurrentemente")

// TxRunner opens the unit of work every multi-step write runs in.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct{ db *gorm.DB }

func NewTxRunner(db *gorm.DB) TxRunner { return &gormTxRunner{db: db} }

// RunInTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func (r *gormTxRunner) RunInTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if r.db == nil {
		return fn(nil)
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

// IsConflict reports whether err is a concurrency failure worth retrying.
func IsConflict(err error) bool {
	if errors.Is(err, ErrStockConcurrente) {
		return true
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}

// IsUniqueViolation reports whether err is a unique/exclusion constraint hit.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// conn picks the transaction when there is one, the pool otherwise.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// advisoryXactLock serializes callers sharing key until the enclosing
// transaction ends. Must run inside a transaction.
func advisoryXactLock(ctx context.Context, tx *gorm.DB, key string) error {
	return tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", key).Error
}

var (
	forUpdate = clause.Locking{Strength: "UPDATE"}
	forShare  = clause.Locking{Strength: "SHARE"}
)
