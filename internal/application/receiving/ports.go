package receiving

import (
	"context"

	"github.com/invorya/ledger-api/internal/domain/repository"
)

// TxRunner ejecuta el protocolo de recepción dentro de una sola transacción de BD:
// bloqueo del encabezado, verificación de idempotencia, entradas de stock,
// actualización de líneas y registro de idempotencia, todo commit o todo rollback.
type TxRunner interface {
	RunReceiving(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.PurchaseOrderRepository,
		receiptRepo repository.ReceiptRepository,
	) error) error
}
