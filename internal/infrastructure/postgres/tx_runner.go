package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/internal/application/receiving"
	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner and receiving.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ receiving.TxRunner = (*TxRunner)(nil)

// maxTxAttempts intentos ante conflictos transitorios (serialización/deadlock)
// antes de devolver domain.ErrConflict. Los errores de negocio no se reintentan.
const maxTxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, con reintento
// acotado y backoff exponencial para conflictos de almacenamiento.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos de ledger atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	resRepo repository.ReservationRepository,
) error) error {
	return r.withRetry(ctx, func(ctx context.Context) error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		movRepo := NewMovementRepository(tx)
		stockRepo := NewStockRepository(tx)
		resRepo := NewReservationRepository(tx)

		if err := fn(movRepo, stockRepo, resRepo); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}

// RunReceiving inicia una transacción con los repos del protocolo de recepción
// (movimientos, stock, órdenes e idempotencia).
func (r *TxRunner) RunReceiving(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	orderRepo repository.PurchaseOrderRepository,
	receiptRepo repository.ReceiptRepository,
) error) error {
	return r.withRetry(ctx, func(ctx context.Context) error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		movRepo := NewMovementRepository(tx)
		stockRepo := NewStockRepository(tx)
		orderRepo := NewPurchaseOrderRepository(tx)
		receiptRepo := NewReceiptRepository(tx)

		if err := fn(movRepo, stockRepo, orderRepo, receiptRepo); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}

// withRetry reintenta la transacción completa ante conflictos transitorios.
// Agotados los intentos devuelve domain.ErrConflict; cualquier otro error sale tal cual.
func (r *TxRunner) withRetry(ctx context.Context, attempt func(ctx context.Context) error) error {
	backoff := 25 * time.Millisecond
	var err error
	for i := 0; i < maxTxAttempts; i++ {
		err = attempt(ctx)
		if err == nil || !isRetryableConflict(err) {
			return err
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return fmt.Errorf("%w: %v", domain.ErrConflict, err)
}
