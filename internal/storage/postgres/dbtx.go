package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface both *pgxpool.Pool and pgx.Tx implement, so
// the backend works the same inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

type txContextKey struct{}

// setTx stores a transaction in the context.
func setTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// getTx retrieves the transaction from the context, or nil.
func getTx(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx
}

// executor returns the context transaction when one is active, otherwise
// the pool, so every backend call automatically joins an open transaction.
func executor(ctx context.Context, pool *pgxpool.Pool) DBTX {
	if tx := getTx(ctx); tx != nil {
		return tx
	}
	return pool
}

// TransactionManager wraps multi-step backend sequences in one pgx
// transaction. It satisfies storage.TxRunner.
type TransactionManager struct {
	pool *pgxpool.Pool
}

// NewTransactionManager creates a transaction manager over the pool.
func NewTransactionManager(pool *pgxpool.Pool) *TransactionManager {
	return &TransactionManager{pool: pool}
}

// RunInTx executes fn within a transaction carried on the context.
func (tm *TransactionManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if getTx(ctx) != nil {
		// Already inside a transaction; join it.
		return fn(ctx)
	}

	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// Safe after commit: rollback then reports ErrTxClosed.
		_ = tx.Rollback(ctx)
	}()

	if err := fn(setTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isPgDuplicateError reports a unique constraint violation (SQLSTATE 23505).
func isPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isPgNoRowsError reports an empty single-row query result.
func isPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
