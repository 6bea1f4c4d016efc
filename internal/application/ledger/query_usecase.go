package ledger

import (
	"context"

	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// QueryUseCase lecturas puras del motor: saldos, movimientos, reservas y kardex.
// Sin efectos secundarios; opera con repositorios atados al pool.
type QueryUseCase struct {
	stockRepo repository.StockRepository
	movRepo   repository.MovementRepository
	resRepo   repository.ReservationRepository
	itemRepo  repository.ItemRepository
	kardexPDF KardexPDFGenerator
}

// NewQueryUseCase construye el caso de uso. kardexPDF puede ser nil si el binario
// no expone el reporte.
func NewQueryUseCase(
	stockRepo repository.StockRepository,
	movRepo repository.MovementRepository,
	resRepo repository.ReservationRepository,
	itemRepo repository.ItemRepository,
	kardexPDF KardexPDFGenerator,
) *QueryUseCase {
	return &QueryUseCase{
		stockRepo: stockRepo,
		movRepo:   movRepo,
		resRepo:   resRepo,
		itemRepo:  itemRepo,
		kardexPDF: kardexPDF,
	}
}

// GetStock devuelve el saldo de un artículo en una bodega. A diferencia de la ruta
// de escritura (que materializa saldos perezosamente), una lectura sobre una pareja
// sin saldo devuelve ErrNotFound.
func (uc *QueryUseCase) GetStock(_ context.Context, itemID, warehouseID string) (*entity.StockBalance, error) {
	if itemID == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	balance, err := uc.stockRepo.Find(itemID, warehouseID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, domain.ErrNotFound
	}
	return balance, nil
}

// ListMovements lista movimientos con filtros opcionales y paginación.
func (uc *QueryUseCase) ListMovements(_ context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.movRepo.List(filter)
}

// GetReservation devuelve una reserva por id.
func (uc *QueryUseCase) GetReservation(_ context.Context, id string) (*entity.Reservation, error) {
	reservation, err := uc.resRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, domain.ErrNotFound
	}
	return reservation, nil
}

// Kardex genera el PDF con el historial de movimientos de un artículo en una bodega
// (bodega vacía = todas).
func (uc *QueryUseCase) Kardex(ctx context.Context, itemID, warehouseID string) ([]byte, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrUnknownItem
	}
	movements, err := uc.movRepo.List(repository.MovementFilter{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Limit:       500,
	})
	if err != nil {
		return nil, err
	}
	return uc.kardexPDF.GenerateKardexPDF(ctx, item, movements)
}
