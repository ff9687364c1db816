package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clientportal/internal/domain/repositories"
)

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) repositories.TransactionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionManager{pool: pool, logger: logger}
}

// ExecTx runs fn inside a transaction. Repositories called with the
// context passed to fn join the transaction through GetExecutor.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	// Already inside a transaction: join it
	if repositories.GetTx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Rollback after a successful commit returns ErrTxClosed
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	if err := fn(repositories.SetTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
