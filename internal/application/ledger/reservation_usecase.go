package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// ReservationUseCase administra retenciones blandas de stock: reservar, liberar,
// consumir y cancelar. Solo consumir mueve existencia física; las demás transiciones
// únicamente ajustan el campo reservado del saldo. Toda transición verifica primero
// el estado actual bajo bloqueo de fila.
type ReservationUseCase struct {
	txRunner      TxRunner
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
	resRepo       repository.ReservationRepository
}

// NewReservationUseCase construye el caso de uso. resRepo (atado al pool) se usa
// solo para lecturas fuera de transacción.
func NewReservationUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
	resRepo repository.ReservationRepository,
) *ReservationUseCase {
	return &ReservationUseCase{
		txRunner:      txRunner,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		resRepo:       resRepo,
	}
}

// ReserveInput solicitud de reserva.
type ReserveInput struct {
	ItemID      string
	WarehouseID string
	Quantity    decimal.Decimal
	RequestedBy string
	Reason      string
	ExpiresAt   *time.Time
}

// Reserve crea una retención activa. Verifica e incrementa el reservado del saldo
// de forma atómica con la fila de stock bloqueada; exige disponible >= cantidad.
func (uc *ReservationUseCase) Reserve(ctx context.Context, input ReserveInput) (*entity.Reservation, error) {
	if !input.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	item, err := uc.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrUnknownItem
	}
	wh, err := uc.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrUnknownWarehouse
	}

	now := time.Now()
	reservation := &entity.Reservation{
		ID:          uuid.New().String(),
		ItemID:      input.ItemID,
		WarehouseID: input.WarehouseID,
		Quantity:    input.Quantity,
		State:       entity.ReservationStateActivo,
		RequestedBy: input.RequestedBy,
		Reason:      input.Reason,
		ExpiresAt:   input.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = uc.txRunner.Run(ctx, func(
		_ repository.MovementRepository,
		stockRepo repository.StockRepository,
		resRepo repository.ReservationRepository,
	) error {
		balance, err := stockRepo.GetForUpdate(input.ItemID, input.WarehouseID)
		if err != nil {
			return err
		}
		if balance.Available().LessThan(input.Quantity) {
			return domain.ErrInsufficientAvailable
		}
		balance.Reserved = balance.Reserved.Add(input.Quantity)
		balance.UpdatedAt = now
		if err := stockRepo.Upsert(balance); err != nil {
			return err
		}
		return resRepo.Create(reservation)
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// Release libera una reserva activa: decrementa el reservado del saldo y pasa a
// liberado. No genera movimiento, nada se movió físicamente.
func (uc *ReservationUseCase) Release(ctx context.Context, id string) (*entity.Reservation, error) {
	return uc.transition(ctx, id, entity.ReservationStateLiberado)
}

// Cancel anula administrativamente una reserva activa. Efecto de almacenamiento
// idéntico a Release; solo difiere la semántica de auditoría.
func (uc *ReservationUseCase) Cancel(ctx context.Context, id string) (*entity.Reservation, error) {
	return uc.transition(ctx, id, entity.ReservationStateCancelado)
}

// transition aplica liberado o cancelado con la fila de la reserva y la del saldo bloqueadas.
func (uc *ReservationUseCase) transition(ctx context.Context, id, newState string) (*entity.Reservation, error) {
	var updated *entity.Reservation
	err := uc.txRunner.Run(ctx, func(
		_ repository.MovementRepository,
		stockRepo repository.StockRepository,
		resRepo repository.ReservationRepository,
	) error {
		reservation, err := resRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if reservation == nil {
			return domain.ErrNotFound
		}
		if !reservation.IsActive() {
			return domain.ErrInvalidTransition
		}
		balance, err := stockRepo.GetForUpdate(reservation.ItemID, reservation.WarehouseID)
		if err != nil {
			return err
		}
		now := time.Now()
		balance.Reserved = balance.Reserved.Sub(reservation.Quantity)
		balance.UpdatedAt = now
		if err := stockRepo.Upsert(balance); err != nil {
			return err
		}
		reservation.State = newState
		reservation.UpdatedAt = now
		if err := resRepo.Update(reservation); err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Consume descuenta existencia física contra una reserva activa: resta qty de la
// existencia y la totalidad de la reserva del reservado (si qty < reserva, el
// remanente queda implícitamente liberado). Registra una salida referenciando la
// reserva; la verificación es contra el reservado, no contra el disponible.
func (uc *ReservationUseCase) Consume(ctx context.Context, id string, qty decimal.Decimal, actorID string) (*entity.Reservation, error) {
	if !qty.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	var updated *entity.Reservation
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		resRepo repository.ReservationRepository,
	) error {
		reservation, err := resRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if reservation == nil {
			return domain.ErrNotFound
		}
		if !reservation.IsActive() {
			return domain.ErrInvalidTransition
		}
		if qty.GreaterThan(reservation.Quantity) {
			return domain.ErrInvalidQuantity
		}
		balance, err := stockRepo.GetForUpdate(reservation.ItemID, reservation.WarehouseID)
		if err != nil {
			return err
		}
		now := time.Now()
		balance.Quantity = balance.Quantity.Sub(qty)
		balance.Reserved = balance.Reserved.Sub(reservation.Quantity)
		balance.UpdatedAt = now
		if err := stockRepo.Upsert(balance); err != nil {
			return err
		}
		unitCost := balance.AverageCost
		mov := &entity.Movement{
			TransactionID: uuid.New().String(),
			ItemID:        reservation.ItemID,
			WarehouseID:   reservation.WarehouseID,
			Type:          entity.MovementTypeSalida,
			Quantity:      qty.Neg(),
			UnitCost:      unitCost,
			TotalCost:     qty.Neg().Mul(unitCost),
			Reference:     reservation.ID,
			CreatedAt:     now,
			CreatedBy:     actorID,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		reservation.State = entity.ReservationStateConsumido
		reservation.UpdatedAt = now
		if err := resRepo.Update(reservation); err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReleaseExpired libera las reservas activas vencidas (lo invoca el worker periódico).
// Cada liberación corre en su propia transacción y re-verifica el estado bajo
// bloqueo, así una liberación manual concurrente no cuenta dos veces.
func (uc *ReservationUseCase) ReleaseExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	expired, err := uc.resRepo.ListExpiredActive(now, limit)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, r := range expired {
		if _, err := uc.Release(ctx, r.ID); err != nil {
			if err == domain.ErrInvalidTransition || err == domain.ErrNotFound {
				continue // la ganó otra transición concurrente
			}
			return released, err
		}
		released++
	}
	return released, nil
}
