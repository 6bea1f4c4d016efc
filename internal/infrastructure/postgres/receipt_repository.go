package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo almacén de idempotencia de recepciones sobre PostgreSQL
// (usable con pool o tx). Los registros solo se insertan, nunca se actualizan.
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// Get devuelve el registro para (orden, llave) o nil si no existe.
func (r *ReceiptRepo) Get(orderID, idempotencyKey string) (*entity.ReceiptRecord, error) {
	query := `
		SELECT order_id, idempotency_key, result, created_at
		FROM receipt_idempotency WHERE order_id = $1 AND idempotency_key = $2`
	var rec entity.ReceiptRecord
	err := r.q.QueryRow(context.Background(), query, orderID, idempotencyKey).Scan(
		&rec.OrderID, &rec.IdempotencyKey, &rec.Result, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt record: %w", err)
	}
	return &rec, nil
}

// Create inserta el registro. La PK (order_id, idempotency_key) cierra la carrera
// entre dos reintentos concurrentes con la misma llave; la violación se reporta
// como conflicto para que el caller reintente y reciba el snapshot guardado.
func (r *ReceiptRepo) Create(record *entity.ReceiptRecord) error {
	query := `
		INSERT INTO receipt_idempotency (order_id, idempotency_key, result, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query,
		record.OrderID, record.IdempotencyKey, record.Result, record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create receipt record: %w", err)
	}
	return nil
}
