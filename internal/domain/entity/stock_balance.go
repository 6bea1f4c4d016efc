package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance saldo de un artículo en una bodega. Única entidad mutable de cantidad.
// Invariante: 0 <= Reserved <= Quantity después de cada operación.
// Se crea de forma perezosa con el primer movimiento de entrada sobre la pareja
// (artículo, bodega); nunca se elimina mientras Quantity o Reserved sean distintos de cero.
type StockBalance struct {
	ItemID      string
	WarehouseID string
	Quantity    decimal.Decimal // existencia física
	Reserved    decimal.Decimal // retenido por reservas activas
	AverageCost decimal.Decimal // costo promedio ponderado
	Lot         string          // etiquetas opcionales
	Zone        string
	UpdatedAt   time.Time
}

// Available devuelve la cantidad disponible para salida o reserva.
func (s *StockBalance) Available() decimal.Decimal {
	return s.Quantity.Sub(s.Reserved)
}
