package repository

import "github.com/invorya/ledger-api/internal/domain/entity"

// WarehouseRepository acceso de solo lectura al catálogo de bodegas.
type WarehouseRepository interface {
	// GetByID devuelve nil si la bodega no existe.
	GetByID(id string) (*entity.Warehouse, error)
	List(limit, offset int) ([]*entity.Warehouse, error)
}
