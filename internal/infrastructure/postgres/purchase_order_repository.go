package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación sobre PostgreSQL: encabezado en purchase_orders,
// líneas en purchase_order_lines (usable con pool o tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create inserta encabezado y líneas. Llamar dentro de una transacción.
func (r *PurchaseOrderRepo) Create(order *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, supplier_id, date, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.SupplierID, order.Date, order.Estado, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create purchase order: %w", err)
	}
	lineQuery := `
		INSERT INTO purchase_order_lines (order_id, item_id, ordenado, recibido, precio_unitario)
		VALUES ($1, $2, $3, $4, $5)`
	for i := range order.Lines {
		l := &order.Lines[i]
		if _, err := r.q.Exec(context.Background(), lineQuery,
			order.ID, l.ItemID, l.Ordenado, l.Recibido, l.PrecioUnitario,
		); err != nil {
			return fmt.Errorf("create purchase order line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas; nil si no existe.
func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene la orden bloqueando el encabezado (SELECT FOR UPDATE):
// es el candado que serializa las recepciones por orden.
func (r *PurchaseOrderRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	return r.get(id, true)
}

func (r *PurchaseOrderRepo) get(id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `
		SELECT id, supplier_id, date, estado, created_at, updated_at
		FROM purchase_orders WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var o entity.PurchaseOrder
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.SupplierID, &o.Date, &o.Estado, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}

	lineQuery := `
		SELECT item_id, ordenado, recibido, precio_unitario
		FROM purchase_order_lines WHERE order_id = $1
		ORDER BY item_id`
	rows, err := r.q.Query(context.Background(), lineQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get purchase order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(&l.ItemID, &l.Ordenado, &l.Recibido, &l.PrecioUnitario); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Update persiste estado del encabezado y recibido de cada línea.
func (r *PurchaseOrderRepo) Update(order *entity.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET estado = $2, updated_at = $3
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, order.ID, order.Estado, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	lineQuery := `
		UPDATE purchase_order_lines
		SET recibido = $3
		WHERE order_id = $1 AND item_id = $2`
	for i := range order.Lines {
		l := &order.Lines[i]
		if _, err := r.q.Exec(context.Background(), lineQuery, order.ID, l.ItemID, l.Recibido); err != nil {
			return fmt.Errorf("update purchase order line: %w", err)
		}
	}
	return nil
}
