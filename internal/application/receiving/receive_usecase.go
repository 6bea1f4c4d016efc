package receiving

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// ReceiveUseCase coordina la recepción de mercancía contra una orden de compra:
// calcula el pendiente por línea, aplica entradas vía el procesador de movimientos,
// actualiza líneas y estado del encabezado, y garantiza idempotencia entre
// reintentos del cliente. La llave de idempotencia la genera el caller; este motor
// solo la consume.
type ReceiveUseCase struct {
	txRunner      TxRunner
	movementUC    *ledger.MovementUseCase
	orderRepo     repository.PurchaseOrderRepository
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
}

// NewReceiveUseCase construye el coordinador. orderRepo (atado al pool) se usa solo
// para lecturas fuera de transacción.
func NewReceiveUseCase(
	txRunner TxRunner,
	movementUC *ledger.MovementUseCase,
	orderRepo repository.PurchaseOrderRepository,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
) *ReceiveUseCase {
	return &ReceiveUseCase{
		txRunner:      txRunner,
		movementUC:    movementUC,
		orderRepo:     orderRepo,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
	}
}

// ReceiveLine línea solicitada en una recepción.
type ReceiveLine struct {
	ItemID   string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// ReceiveInput solicitud de recepción contra una orden.
type ReceiveInput struct {
	OrderID        string
	WarehouseID    string
	Lines          []ReceiveLine
	IdempotencyKey string
	ActorID        string
}

// ReceiveResult orden actualizada e indicador de repetición idempotente.
type ReceiveResult struct {
	Order      *entity.PurchaseOrder
	Idempotent bool
}

// Receive aplica una recepción. Protocolo, todo dentro de una transacción:
//  1. bloquea el encabezado de la orden (serializa recepciones por orden);
//  2. bajo ese bloqueo consulta el registro de idempotencia: si existe, devuelve el
//     snapshot guardado sin efecto alguno;
//  3. rechaza órdenes canceladas;
//  4. por línea calcula pendiente = ordenado - recibido y recorta lo solicitado
//     (nunca sobre-recibe); líneas sin pendiente se omiten;
//  5. aplica una entrada por línea recortada; cualquier fallo revierte la recepción
//     completa (el registro de idempotencia solo se escribe con éxito total, así el
//     reintento con la misma llave es seguro);
//  6. incrementa recibido, re-deriva el estado del encabezado y persiste orden +
//     registro de idempotencia en la misma transacción.
func (uc *ReceiveUseCase) Receive(ctx context.Context, input ReceiveInput) (*ReceiveResult, error) {
	if input.OrderID == "" || input.WarehouseID == "" || input.IdempotencyKey == "" || len(input.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, line := range input.Lines {
		if !line.Quantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		if line.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}
	wh, err := uc.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrUnknownWarehouse
	}

	now := time.Now()
	txID := uuid.New().String()
	var result *ReceiveResult

	err = uc.txRunner.RunReceiving(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.PurchaseOrderRepository,
		receiptRepo repository.ReceiptRepository,
	) error {
		order, err := orderRepo.GetForUpdate(input.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}

		// Repetición idempotente: no es un error, es un camino normal de éxito.
		record, err := receiptRepo.Get(input.OrderID, input.IdempotencyKey)
		if err != nil {
			return err
		}
		if record != nil {
			var snapshot entity.PurchaseOrder
			if err := json.Unmarshal(record.Result, &snapshot); err != nil {
				return fmt.Errorf("decodificar snapshot de recepción: %w", err)
			}
			result = &ReceiveResult{Order: &snapshot, Idempotent: true}
			return nil
		}

		if order.Estado == entity.OrderEstadoCancelado {
			return domain.ErrOrderCancelled
		}

		type applied struct {
			line *entity.PurchaseOrderLine
			qty  decimal.Decimal
			cost decimal.Decimal
		}
		var toApply []applied
		// asignado acumula lo ya recortado por artículo en esta misma solicitud:
		// líneas repetidas del mismo artículo compiten por el mismo pendiente.
		asignado := map[string]decimal.Decimal{}
		for _, req := range input.Lines {
			line := order.Line(req.ItemID)
			if line == nil {
				return domain.ErrUnknownItem
			}
			pendiente := line.Pendiente().Sub(asignado[req.ItemID])
			if !pendiente.IsPositive() {
				continue
			}
			qty := req.Quantity
			if qty.GreaterThan(pendiente) {
				qty = pendiente
			}
			asignado[req.ItemID] = asignado[req.ItemID].Add(qty)
			toApply = append(toApply, applied{line: line, qty: qty, cost: req.UnitCost})
		}
		if len(toApply) == 0 {
			return domain.ErrNothingToReceive
		}

		for _, a := range toApply {
			_, err := uc.movementUC.RegisterEntradaInTx(
				movRepo, stockRepo,
				a.line.ItemID, input.WarehouseID,
				a.qty, a.cost,
				input.OrderID, input.ActorID,
				now, txID,
			)
			if err != nil {
				return fmt.Errorf("%w: entrada de %s: %v", domain.ErrReceivingFailed, a.line.ItemID, err)
			}
			a.line.Recibido = a.line.Recibido.Add(a.qty)
		}

		order.Estado = order.DeriveEstado()
		order.UpdatedAt = now
		if err := orderRepo.Update(order); err != nil {
			return err
		}

		snapshot, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("codificar snapshot de recepción: %w", err)
		}
		if err := receiptRepo.Create(&entity.ReceiptRecord{
			OrderID:        input.OrderID,
			IdempotencyKey: input.IdempotencyKey,
			Result:         snapshot,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		result = &ReceiveResult{Order: order, Idempotent: false}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
