package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `item_id, warehouse_id, quantity, reserved, average_cost, lot, zone, updated_at`

func scanBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := row.Scan(
		&b.ItemID, &b.WarehouseID, &b.Quantity, &b.Reserved, &b.AverageCost,
		&b.Lot, &b.Zone, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// zeroBalance saldo perezoso para parejas sin fila; el primer Upsert la materializa.
func zeroBalance(itemID, warehouseID string) *entity.StockBalance {
	return &entity.StockBalance{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Quantity:    decimal.Zero,
		Reserved:    decimal.Zero,
		AverageCost: decimal.Zero,
	}
}

// Get obtiene el saldo actual; devuelve un saldo en cero si la fila no existe.
func (r *StockRepo) Get(itemID, warehouseID string) (*entity.StockBalance, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_balances WHERE item_id = $1 AND warehouse_id = $2`
	b, err := scanBalance(r.q.QueryRow(context.Background(), query, itemID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroBalance(itemID, warehouseID), nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return b, nil
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE). Saldos de
// claves distintas no se bloquean entre sí.
func (r *StockRepo) GetForUpdate(itemID, warehouseID string) (*entity.StockBalance, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_balances WHERE item_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(context.Background(), query, itemID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroBalance(itemID, warehouseID), nil
		}
		return nil, fmt.Errorf("get stock balance for update: %w", err)
	}
	return b, nil
}

// Find lectura pura: nil si la fila no existe.
func (r *StockRepo) Find(itemID, warehouseID string) (*entity.StockBalance, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_balances WHERE item_id = $1 AND warehouse_id = $2`
	b, err := scanBalance(r.q.QueryRow(context.Background(), query, itemID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find stock balance: %w", err)
	}
	return b, nil
}

// Upsert inserta o actualiza el saldo (por artículo y bodega). Los CHECK de la
// tabla respaldan los invariantes quantity >= 0 y 0 <= reserved <= quantity.
func (r *StockRepo) Upsert(balance *entity.StockBalance) error {
	query := `
		INSERT INTO stock_balances (item_id, warehouse_id, quantity, reserved, average_cost, lot, zone, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (item_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, reserved = EXCLUDED.reserved,
			average_cost = EXCLUDED.average_cost, lot = EXCLUDED.lot, zone = EXCLUDED.zone,
			updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		balance.ItemID, balance.WarehouseID, balance.Quantity, balance.Reserved,
		balance.AverageCost, balance.Lot, balance.Zone,
	)
	if err != nil {
		return fmt.Errorf("upsert stock balance: %w", err)
	}
	return nil
}

// ListByWarehouse lista los saldos de una bodega.
func (r *StockRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockBalance, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_balances WHERE warehouse_id = $1
		ORDER BY item_id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
