package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxRunner owns the database handle and runs settlement work inside
// serializable transactions. Row locks taken with SELECT ... FOR UPDATE are
// held until the closure returns and the transaction commits.
type TxRunner struct {
	db *sql.DB
}

func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// DB returns the non-transactional queryer for fast-path reads.
func (r *TxRunner) DB() DBTX {
	return r.db
}

// InTx executes fn inside a serializable transaction, committing when fn
// returns nil and rolling back otherwise.
func (r *TxRunner) InTx(ctx context.Context, fn func(q DBTX) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
