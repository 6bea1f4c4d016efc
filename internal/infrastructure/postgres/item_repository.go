package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo acceso de solo lectura a artículos (el catálogo lo escribe otro sistema).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// GetByID obtiene un artículo; nil si no existe.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	query := `
		SELECT id, sku, name, unit, min_stock, max_stock, created_at
		FROM items WHERE id = $1`
	var it entity.Item
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&it.ID, &it.SKU, &it.Name, &it.Unit, &it.MinStock, &it.MaxStock, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

// List lista artículos con paginación.
func (r *ItemRepo) List(limit, offset int) ([]*entity.Item, error) {
	query := `
		SELECT id, sku, name, unit, min_stock, max_stock, created_at
		FROM items ORDER BY sku LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		var it entity.Item
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &it.Unit, &it.MinStock, &it.MaxStock, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
