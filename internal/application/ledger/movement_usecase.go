package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	domledger "github.com/invorya/ledger-api/internal/domain/ledger"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// MovementUseCase procesa movimientos de inventario de forma transaccional
// (entrada, salida, transferencia, ajuste) con bloqueo de fila (SELECT FOR UPDATE)
// y Commit/Rollback. Cada aplicación exitosa persiste el registro inmutable del
// movimiento en la misma transacción que la actualización del saldo: el saldo
// siempre es reconstruible re-ejecutando el log.
type MovementUseCase struct {
	txRunner      TxRunner
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner:      txRunner,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
	}
}

// MovementInput borrador de un movimiento.
// Para entrada/salida: ItemID, WarehouseID, Quantity > 0; UnitCost obligatorio en entrada.
// Para transferencia: ItemID, FromWarehouseID, ToWarehouseID, Quantity > 0.
// Para ajuste: ItemID, WarehouseID, Quantity con signo (≠ 0).
type MovementInput struct {
	Type            string
	ItemID          string
	WarehouseID     string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        decimal.Decimal
	UnitCost        *decimal.Decimal
	Reference       string
	ActorID         string
}

// MovementResult movimiento(s) creados y saldo resultante. Una transferencia
// produce dos registros; Balance es el saldo de la bodega destino (o la única afectada).
type MovementResult struct {
	Movements []*entity.Movement
	Balance   *entity.StockBalance
}

// Register valida el borrador, abre una transacción, bloquea la(s) fila(s) de saldo
// y aplica la semántica del tipo. Errores de validación y de regla de negocio son
// finales; los conflictos de almacenamiento los reintenta el TxRunner.
func (uc *MovementUseCase) Register(ctx context.Context, input MovementInput) (*MovementResult, error) {
	if err := uc.validate(input); err != nil {
		return nil, err
	}

	now := time.Now()
	txID := uuid.New().String()
	var result *MovementResult

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ReservationRepository,
	) error {
		var err error
		switch input.Type {
		case entity.MovementTypeEntrada:
			result, err = uc.doEntrada(movRepo, stockRepo, input, now, txID)
		case entity.MovementTypeSalida:
			result, err = uc.doSalida(movRepo, stockRepo, input, now, txID)
		case entity.MovementTypeAjuste:
			result, err = uc.doAjuste(movRepo, stockRepo, input, now, txID)
		case entity.MovementTypeTransferencia:
			result, err = uc.doTransferencia(movRepo, stockRepo, input, now, txID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validate revisa campos por tipo y que artículo y bodega(s) existan en el catálogo.
func (uc *MovementUseCase) validate(input MovementInput) error {
	switch input.Type {
	case entity.MovementTypeEntrada, entity.MovementTypeSalida:
		if input.ItemID == "" || input.WarehouseID == "" {
			return domain.ErrInvalidInput
		}
		if !input.Quantity.IsPositive() {
			return domain.ErrInvalidQuantity
		}
		if input.Type == entity.MovementTypeEntrada && (input.UnitCost == nil || input.UnitCost.IsNegative()) {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeAjuste:
		if input.ItemID == "" || input.WarehouseID == "" {
			return domain.ErrInvalidInput
		}
		if input.Quantity.IsZero() {
			return domain.ErrInvalidQuantity
		}
	case entity.MovementTypeTransferencia:
		if input.ItemID == "" || input.FromWarehouseID == "" || input.ToWarehouseID == "" {
			return domain.ErrInvalidInput
		}
		if input.FromWarehouseID == input.ToWarehouseID {
			return domain.ErrInvalidInput
		}
		if !input.Quantity.IsPositive() {
			return domain.ErrInvalidQuantity
		}
	default:
		return domain.ErrInvalidInput
	}

	item, err := uc.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrUnknownItem
	}

	warehouses := []string{input.WarehouseID}
	if input.Type == entity.MovementTypeTransferencia {
		warehouses = []string{input.FromWarehouseID, input.ToWarehouseID}
	}
	for _, id := range warehouses {
		wh, err := uc.warehouseRepo.GetByID(id)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.ErrUnknownWarehouse
		}
	}
	return nil
}

// doEntrada: bloquea la fila, recalcula costo promedio ponderado, suma la cantidad
// y guarda el movimiento. La fila de saldo se materializa aquí si no existía.
func (uc *MovementUseCase) doEntrada(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	input MovementInput,
	now time.Time, txID string,
) (*MovementResult, error) {
	balance, err := stockRepo.GetForUpdate(input.ItemID, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	unitCost := decimal.Zero
	if input.UnitCost != nil {
		unitCost = *input.UnitCost
	}
	balance.AverageCost = domledger.WeightedAverageCost(balance.Quantity, balance.AverageCost, input.Quantity, unitCost)
	balance.Quantity = balance.Quantity.Add(input.Quantity)
	balance.UpdatedAt = now
	if err := stockRepo.Upsert(balance); err != nil {
		return nil, err
	}
	mov := &entity.Movement{
		TransactionID: txID,
		ItemID:        input.ItemID,
		WarehouseID:   input.WarehouseID,
		Type:          input.Type,
		Quantity:      input.Quantity,
		UnitCost:      unitCost,
		TotalCost:     input.Quantity.Mul(unitCost),
		Reference:     input.Reference,
		CreatedAt:     now,
		CreatedBy:     input.ActorID,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return &MovementResult{Movements: []*entity.Movement{mov}, Balance: balance}, nil
}

// doSalida: bloquea la fila, verifica disponible (existencia menos reservado) y resta
// la cantidad al costo promedio vigente. El costo promedio no cambia en salidas.
func (uc *MovementUseCase) doSalida(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	input MovementInput,
	now time.Time, txID string,
) (*MovementResult, error) {
	balance, err := stockRepo.GetForUpdate(input.ItemID, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if balance.Available().LessThan(input.Quantity) {
		return nil, domain.ErrInsufficientStock
	}
	balance.Quantity = balance.Quantity.Sub(input.Quantity)
	balance.UpdatedAt = now
	if err := stockRepo.Upsert(balance); err != nil {
		return nil, err
	}
	unitCost := balance.AverageCost
	mov := &entity.Movement{
		TransactionID: txID,
		ItemID:        input.ItemID,
		WarehouseID:   input.WarehouseID,
		Type:          input.Type,
		Quantity:      input.Quantity.Neg(),
		UnitCost:      unitCost,
		TotalCost:     input.Quantity.Neg().Mul(unitCost),
		Reference:     input.Reference,
		CreatedAt:     now,
		CreatedBy:     input.ActorID,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return &MovementResult{Movements: []*entity.Movement{mov}, Balance: balance}, nil
}

// doAjuste: delta con signo. Positivo sigue la regla de entrada (recalcula costo);
// negativo sigue la regla de salida (verifica disponible). El registro queda tipado ajuste.
func (uc *MovementUseCase) doAjuste(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	input MovementInput,
	now time.Time, txID string,
) (*MovementResult, error) {
	if input.Quantity.IsPositive() {
		if input.UnitCost == nil {
			// Ajuste positivo sin costo (conteo físico): entra al costo promedio
			// vigente, el promedio no se diluye hacia cero.
			balance, err := stockRepo.GetForUpdate(input.ItemID, input.WarehouseID)
			if err != nil {
				return nil, err
			}
			cost := balance.AverageCost
			input.UnitCost = &cost
		}
		return uc.doEntrada(movRepo, stockRepo, input, now, txID)
	}
	neg := input
	neg.Quantity = input.Quantity.Neg()
	return uc.doSalida(movRepo, stockRepo, neg, now, txID)
}

// doTransferencia: debita origen y acredita destino como unidad atómica, en la misma
// transacción. Las dos filas se bloquean en orden lexicográfico de bodega para evitar
// deadlock entre transferencias cruzadas concurrentes. Genera dos registros con el
// mismo TransactionID; el destino entra al costo promedio del origen.
func (uc *MovementUseCase) doTransferencia(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	input MovementInput,
	now time.Time, txID string,
) (*MovementResult, error) {
	first, second := input.FromWarehouseID, input.ToWarehouseID
	if strings.Compare(second, first) < 0 {
		first, second = second, first
	}
	locked := map[string]*entity.StockBalance{}
	for _, wh := range []string{first, second} {
		b, err := stockRepo.GetForUpdate(input.ItemID, wh)
		if err != nil {
			return nil, err
		}
		locked[wh] = b
	}
	origin := locked[input.FromWarehouseID]
	dest := locked[input.ToWarehouseID]

	if origin.Available().LessThan(input.Quantity) {
		return nil, domain.ErrInsufficientStock
	}
	unitCost := origin.AverageCost

	origin.Quantity = origin.Quantity.Sub(input.Quantity)
	origin.UpdatedAt = now
	dest.AverageCost = domledger.WeightedAverageCost(dest.Quantity, dest.AverageCost, input.Quantity, unitCost)
	dest.Quantity = dest.Quantity.Add(input.Quantity)
	dest.UpdatedAt = now
	if err := stockRepo.Upsert(origin); err != nil {
		return nil, err
	}
	if err := stockRepo.Upsert(dest); err != nil {
		return nil, err
	}

	outMov := &entity.Movement{
		TransactionID: txID,
		ItemID:        input.ItemID,
		WarehouseID:   input.FromWarehouseID,
		Type:          entity.MovementTypeTransferencia,
		Quantity:      input.Quantity.Neg(),
		UnitCost:      unitCost,
		TotalCost:     input.Quantity.Neg().Mul(unitCost),
		Reference:     input.Reference,
		CreatedAt:     now,
		CreatedBy:     input.ActorID,
	}
	if err := movRepo.Create(outMov); err != nil {
		return nil, err
	}
	inMov := &entity.Movement{
		TransactionID: txID,
		ItemID:        input.ItemID,
		WarehouseID:   input.ToWarehouseID,
		Type:          entity.MovementTypeTransferencia,
		Quantity:      input.Quantity,
		UnitCost:      unitCost,
		TotalCost:     input.Quantity.Mul(unitCost),
		Reference:     input.Reference,
		CreatedAt:     now,
		CreatedBy:     input.ActorID,
	}
	if err := movRepo.Create(inMov); err != nil {
		return nil, err
	}
	return &MovementResult{Movements: []*entity.Movement{outMov, inMov}, Balance: dest}, nil
}

// RegisterEntradaInTx ejecuta una entrada usando los repositorios proporcionados
// (misma transacción del caller). Lo usa el coordinador de recepciones para que
// toda la recepción sea una sola unidad atómica.
func (uc *MovementUseCase) RegisterEntradaInTx(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	itemID, warehouseID string,
	quantity, unitCost decimal.Decimal,
	reference, actorID string,
	now time.Time, txID string,
) (*entity.Movement, error) {
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	result, err := uc.doEntrada(movRepo, stockRepo, MovementInput{
		Type:        entity.MovementTypeEntrada,
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		UnitCost:    &unitCost,
		Reference:   reference,
		ActorID:     actorID,
	}, now, txID)
	if err != nil {
		return nil, err
	}
	return result.Movements[0], nil
}
