package repository

import "github.com/invorya/ledger-api/internal/domain/entity"

// PurchaseOrderRepository define el puerto de persistencia de órdenes de compra
// (encabezado + líneas embebidas).
type PurchaseOrderRepository interface {
	Create(order *entity.PurchaseOrder) error
	GetByID(id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea el encabezado: serializa las recepciones por orden.
	GetForUpdate(id string) (*entity.PurchaseOrder, error)
	Update(order *entity.PurchaseOrder) error
}
