package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeEntrada       = "entrada"
	MovementTypeSalida        = "salida"
	MovementTypeTransferencia = "transferencia"
	MovementTypeAjuste        = "ajuste"
)

// Movement registro inmutable de una transición del ledger. Append-only: nunca se
// muta ni se borra, el saldo siempre es reconstruible sumando las cantidades con signo.
// Una transferencia genera dos registros (salida en origen, entrada en destino)
// unidos por el mismo TransactionID.
type Movement struct {
	ID            string
	TransactionID string
	ItemID        string
	WarehouseID   string          // la bodega afectada por este registro
	Type          string          // entrada, salida, transferencia, ajuste
	Quantity      decimal.Decimal // con signo: positivo entra, negativo sale
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	Reference     string // orden de compra, reserva, nota de ajuste, ...
	CreatedAt     time.Time
	CreatedBy     string
}
