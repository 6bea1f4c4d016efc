package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ItemID          string           `json:"item_id" validate:"required"`
	WarehouseID     string           `json:"warehouse_id,omitempty"`
	FromWarehouseID string           `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string           `json:"to_warehouse_id,omitempty"`
	Type            string           `json:"type" validate:"required,oneof=entrada salida transferencia ajuste"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference       string           `json:"reference,omitempty"`
	ActorID         string           `json:"actor_id,omitempty"`
}

// MovementDTO movimiento del ledger en respuestas.
type MovementDTO struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ItemID        string          `json:"item_id"`
	WarehouseID   string          `json:"warehouse_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Reference     string          `json:"reference,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// StockBalanceDTO saldo de stock en respuestas.
type StockBalanceDTO struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reserved    decimal.Decimal `json:"reserved"`
	Available   decimal.Decimal `json:"available"`
	AverageCost decimal.Decimal `json:"average_cost"`
	Lot         string          `json:"lot,omitempty"`
	Zone        string          `json:"zone,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MovementResponse respuesta de postMovement: movimiento(s) creados y saldo resultante.
type MovementResponse struct {
	Movements []MovementDTO   `json:"movements"`
	Balance   StockBalanceDTO `json:"balance"`
}

// ReserveRequest body para POST /api/reservations.
type ReserveRequest struct {
	ItemID      string          `json:"item_id" validate:"required"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	RequestedBy string          `json:"requested_by" validate:"required"`
	Reason      string          `json:"reason,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}

// ConsumeRequest body para POST /api/reservations/:id/consume.
type ConsumeRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	ActorID  string          `json:"actor_id,omitempty"`
}

// ReservationDTO reserva en respuestas.
type ReservationDTO struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	State       string          `json:"state"`
	RequestedBy string          `json:"requested_by"`
	Reason      string          `json:"reason,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateOrderLineRequest línea para POST /api/orders.
type CreateOrderLineRequest struct {
	ItemID         string          `json:"item_id" validate:"required"`
	Ordenado       decimal.Decimal `json:"ordenado"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	SupplierID string                   `json:"supplier_id" validate:"required"`
	Date       *time.Time               `json:"date,omitempty"`
	Lines      []CreateOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReceiveLineRequest línea para POST /api/orders/:id/receive.
type ReceiveLineRequest struct {
	ItemID   string          `json:"item_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// ReceiveRequest body para POST /api/orders/:id/receive. La llave de idempotencia
// puede venir en el body o en el header X-Idempotency-Key.
type ReceiveRequest struct {
	WarehouseID    string               `json:"warehouse_id" validate:"required"`
	Lines          []ReceiveLineRequest `json:"lines" validate:"required,min=1,dive"`
	IdempotencyKey string               `json:"idempotency_key,omitempty"`
	ActorID        string               `json:"actor_id,omitempty"`
}

// OrderLineDTO línea de orden en respuestas.
type OrderLineDTO struct {
	ItemID         string          `json:"item_id"`
	Ordenado       decimal.Decimal `json:"ordenado"`
	Recibido       decimal.Decimal `json:"recibido"`
	Pendiente      decimal.Decimal `json:"pendiente"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
}

// OrderDTO orden de compra en respuestas.
type OrderDTO struct {
	ID         string         `json:"id"`
	SupplierID string         `json:"supplier_id"`
	Date       time.Time      `json:"date"`
	Estado     string         `json:"estado"`
	Lines      []OrderLineDTO `json:"lines"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ReceiveResponse respuesta de receive.
type ReceiveResponse struct {
	Order      OrderDTO `json:"order"`
	Idempotent bool     `json:"idempotent"`
}

// NewMovementDTO mapea la entidad al DTO.
func NewMovementDTO(m *entity.Movement) MovementDTO {
	return MovementDTO{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ItemID:        m.ItemID,
		WarehouseID:   m.WarehouseID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		TotalCost:     m.TotalCost,
		Reference:     m.Reference,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
	}
}

// NewStockBalanceDTO mapea la entidad al DTO.
func NewStockBalanceDTO(b *entity.StockBalance) StockBalanceDTO {
	return StockBalanceDTO{
		ItemID:      b.ItemID,
		WarehouseID: b.WarehouseID,
		Quantity:    b.Quantity,
		Reserved:    b.Reserved,
		Available:   b.Available(),
		AverageCost: b.AverageCost,
		Lot:         b.Lot,
		Zone:        b.Zone,
		UpdatedAt:   b.UpdatedAt,
	}
}

// NewReservationDTO mapea la entidad al DTO.
func NewReservationDTO(r *entity.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:          r.ID,
		ItemID:      r.ItemID,
		WarehouseID: r.WarehouseID,
		Quantity:    r.Quantity,
		State:       r.State,
		RequestedBy: r.RequestedBy,
		Reason:      r.Reason,
		ExpiresAt:   r.ExpiresAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// NewOrderDTO mapea la entidad al DTO.
func NewOrderDTO(o *entity.PurchaseOrder) OrderDTO {
	out := OrderDTO{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		Date:       o.Date,
		Estado:     o.Estado,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		out.Lines = append(out.Lines, OrderLineDTO{
			ItemID:         l.ItemID,
			Ordenado:       l.Ordenado,
			Recibido:       l.Recibido,
			Pendiente:      l.Pendiente(),
			PrecioUnitario: l.PrecioUnitario,
		})
	}
	return out
}
