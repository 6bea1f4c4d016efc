package repository

import "github.com/invorya/ledger-api/internal/domain/entity"

// ItemRepository acceso de solo lectura al catálogo de artículos
// (el CRUD del catálogo vive en otro sistema).
type ItemRepository interface {
	// GetByID devuelve nil si el artículo no existe.
	GetByID(id string) (*entity.Item, error)
	List(limit, offset int) ([]*entity.Item, error)
}
