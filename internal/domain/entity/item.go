package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item artículo almacenable. El catálogo lo administra un sistema externo;
// el motor de inventario solo lo referencia, nunca lo muta.
type Item struct {
	ID        string
	SKU       string
	Name      string
	Unit      string          // unidad de medida: und, kg, lt, ...
	MinStock  decimal.Decimal // umbral advisory, no lo aplica el ledger
	MaxStock  decimal.Decimal
	CreatedAt time.Time
}
