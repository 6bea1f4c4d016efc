package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL
// (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, item_id, warehouse_id, quantity, state, requested_by, reason, expires_at, created_at, updated_at`

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var r entity.Reservation
	var reason *string
	err := row.Scan(
		&r.ID, &r.ItemID, &r.WarehouseID, &r.Quantity, &r.State,
		&r.RequestedBy, &reason, &r.ExpiresAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reason != nil {
		r.Reason = *reason
	}
	return &r, nil
}

// Create persiste una reserva nueva (estado activo).
func (r *ReservationRepo) Create(reservation *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	reason := (*string)(nil)
	if reservation.Reason != "" {
		reason = &reservation.Reason
	}
	_, err := r.q.Exec(context.Background(), query,
		reservation.ID, reservation.ItemID, reservation.WarehouseID, reservation.Quantity,
		reservation.State, reservation.RequestedBy, reason, reservation.ExpiresAt,
		reservation.CreatedAt, reservation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// GetByID obtiene una reserva; nil si no existe.
func (r *ReservationRepo) GetByID(id string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	res, err := scanReservation(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// GetForUpdate obtiene la reserva y bloquea la fila, serializando transiciones
// de estado concurrentes sobre la misma reserva.
func (r *ReservationRepo) GetForUpdate(id string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	res, err := scanReservation(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation for update: %w", err)
	}
	return res, nil
}

// Update persiste la transición de estado (las reservas nunca se borran).
func (r *ReservationRepo) Update(reservation *entity.Reservation) error {
	query := `
		UPDATE reservations
		SET state = $2, updated_at = $3
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		reservation.ID, reservation.State, reservation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return nil
}

// ListExpiredActive reservas activas vencidas antes de now (para el worker de liberación).
func (r *ReservationRepo) ListExpiredActive(now time.Time, limit int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE state = $1 AND expires_at IS NOT NULL AND expires_at < $2
		ORDER BY expires_at ASC LIMIT $3`
	rows, err := r.q.Query(context.Background(), query, entity.ReservationStateActivo, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}
