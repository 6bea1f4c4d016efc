package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. El estado del encabezado es derivado, nunca se
// asigna arbitrariamente; cancelado es el único override explícito y congela la recepción.
const (
	OrderEstadoPendiente = "pendiente"
	OrderEstadoParcial   = "parcial"
	OrderEstadoRecibido  = "recibido"
	OrderEstadoCancelado = "cancelado"
)

// PurchaseOrderLine línea de una orden de compra.
// Invariante: 0 <= Recibido <= Ordenado en todo momento.
type PurchaseOrderLine struct {
	ItemID         string
	Ordenado       decimal.Decimal
	Recibido       decimal.Decimal
	PrecioUnitario decimal.Decimal
}

// Pendiente devuelve la cantidad que falta por recibir en la línea.
func (l *PurchaseOrderLine) Pendiente() decimal.Decimal {
	return l.Ordenado.Sub(l.Recibido)
}

// PurchaseOrder encabezado de orden de compra con sus líneas embebidas.
type PurchaseOrder struct {
	ID         string
	SupplierID string
	Date       time.Time
	Estado     string
	Lines      []PurchaseOrderLine
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Line devuelve la línea del artículo, o nil si no existe en la orden.
func (o *PurchaseOrder) Line(itemID string) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ItemID == itemID {
			return &o.Lines[i]
		}
	}
	return nil
}

// DeriveEstado recalcula el estado del encabezado a partir de las líneas:
// pendiente si ninguna línea tiene recibido, recibido si todas están completas,
// parcial en cualquier otro caso. cancelado se respeta como override.
func (o *PurchaseOrder) DeriveEstado() string {
	if o.Estado == OrderEstadoCancelado {
		return OrderEstadoCancelado
	}
	allZero := true
	allFull := true
	for i := range o.Lines {
		l := &o.Lines[i]
		if l.Recibido.IsPositive() {
			allZero = false
		}
		if l.Recibido.LessThan(l.Ordenado) {
			allFull = false
		}
	}
	switch {
	case allFull && len(o.Lines) > 0:
		return OrderEstadoRecibido
	case allZero:
		return OrderEstadoPendiente
	default:
		return OrderEstadoParcial
	}
}
