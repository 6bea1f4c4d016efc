package ledger

import (
	"context"

	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza atomicidad para el motor de inventario: o todos los
// sub-pasos quedan confirmados o ninguno. La implementación reintenta conflictos de
// almacenamiento (serialización/deadlock) un número acotado de veces antes de
// devolver domain.ErrConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		resRepo repository.ReservationRepository,
	) error) error
}

// KardexPDFGenerator genera la representación PDF del kardex de un artículo.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, item *entity.Item, movements []*entity.Movement) ([]byte, error)
}
