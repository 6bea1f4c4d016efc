package repository

import (
	"time"

	"github.com/invorya/ledger-api/internal/domain/entity"
)

// MovementFilter filtros para listar movimientos. Campos vacíos no filtran.
type MovementFilter struct {
	ItemID      string
	WarehouseID string
	Reference   string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// MovementRepository define el puerto de persistencia del log de movimientos (append-only).
type MovementRepository interface {
	Create(movement *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	List(filter MovementFilter) ([]*entity.Movement, error)
	// ListByKey devuelve todos los movimientos de una pareja (artículo, bodega) en
	// orden cronológico; soporta la verificación por re-ejecución del log.
	ListByKey(itemID, warehouseID string) ([]*entity.Movement, error)
}
