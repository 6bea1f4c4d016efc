package repository

import "github.com/invorya/ledger-api/internal/domain/entity"

// StockRepository define el puerto para consultar/actualizar saldos por bodega+artículo.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get obtiene el saldo; si la fila no existe devuelve un saldo en cero
	// (la creación es perezosa, materializada por el primer Upsert).
	Get(itemID, warehouseID string) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). Los saldos de
	// claves distintas no se bloquean entre sí.
	GetForUpdate(itemID, warehouseID string) (*entity.StockBalance, error)
	// Find lectura pura: nil si la fila no existe.
	Find(itemID, warehouseID string) (*entity.StockBalance, error)
	Upsert(balance *entity.StockBalance) error
	ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockBalance, error)
}
