package receiving

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// OrderUseCase alta, consulta y cancelación de órdenes de compra. El catálogo de
// proveedores es externo; aquí la orden solo existe como objetivo de recepción.
type OrderUseCase struct {
	txRunner  TxRunner
	orderRepo repository.PurchaseOrderRepository
	itemRepo  repository.ItemRepository
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.PurchaseOrderRepository,
	itemRepo repository.ItemRepository,
) *OrderUseCase {
	return &OrderUseCase{txRunner: txRunner, orderRepo: orderRepo, itemRepo: itemRepo}
}

// CreateOrderLine línea solicitada al crear una orden.
type CreateOrderLine struct {
	ItemID         string
	Ordenado       decimal.Decimal
	PrecioUnitario decimal.Decimal
}

// CreateOrderInput solicitud de creación de orden de compra.
type CreateOrderInput struct {
	SupplierID string
	Date       time.Time
	Lines      []CreateOrderLine
}

// Create registra una orden en estado pendiente con recibido = 0 en cada línea.
func (uc *OrderUseCase) Create(ctx context.Context, input CreateOrderInput) (*entity.PurchaseOrder, error) {
	if input.SupplierID == "" || len(input.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	date := input.Date
	if date.IsZero() {
		date = now
	}
	order := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		SupplierID: input.SupplierID,
		Date:       date,
		Estado:     entity.OrderEstadoPendiente,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, line := range input.Lines {
		if !line.Ordenado.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		if line.PrecioUnitario.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		item, err := uc.itemRepo.GetByID(line.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrUnknownItem
		}
		order.Lines = append(order.Lines, entity.PurchaseOrderLine{
			ItemID:         line.ItemID,
			Ordenado:       line.Ordenado,
			Recibido:       decimal.Zero,
			PrecioUnitario: line.PrecioUnitario,
		})
	}

	// Encabezado y líneas en una sola transacción.
	err := uc.txRunner.RunReceiving(ctx, func(
		_ repository.MovementRepository,
		_ repository.StockRepository,
		orderRepo repository.PurchaseOrderRepository,
		_ repository.ReceiptRepository,
	) error {
		return orderRepo.Create(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get devuelve una orden por id.
func (uc *OrderUseCase) Get(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	order, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// Cancel marca la orden como cancelada (override terminal: congela recepciones
// futuras; lo ya recibido permanece en el ledger).
func (uc *OrderUseCase) Cancel(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var cancelled *entity.PurchaseOrder
	err := uc.txRunner.RunReceiving(ctx, func(
		_ repository.MovementRepository,
		_ repository.StockRepository,
		orderRepo repository.PurchaseOrderRepository,
		_ repository.ReceiptRepository,
	) error {
		order, err := orderRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Estado == entity.OrderEstadoCancelado {
			return domain.ErrInvalidTransition
		}
		order.Estado = entity.OrderEstadoCancelado
		order.UpdatedAt = time.Now()
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}
