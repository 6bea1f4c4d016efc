package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva. activo es el inicial; los demás son terminales
// (no hay transiciones desde un estado terminal).
const (
	ReservationStateActivo    = "activo"
	ReservationStateLiberado  = "liberado"
	ReservationStateConsumido = "consumido"
	ReservationStateCancelado = "cancelado"
)

// Reservation retención blanda sobre un StockBalance: aparta cantidad sin mover
// existencia física salvo al consumir. Se conserva tras el estado terminal para auditoría.
type Reservation struct {
	ID          string
	ItemID      string
	WarehouseID string
	Quantity    decimal.Decimal
	State       string
	RequestedBy string
	Reason      string
	ExpiresAt   *time.Time // opcional; el worker libera las vencidas
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive indica si la reserva sigue reteniendo stock.
func (r *Reservation) IsActive() bool {
	return r.State == ReservationStateActivo
}

// IsExpired indica si la reserva venció (solo aplica con ExpiresAt definido).
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}
