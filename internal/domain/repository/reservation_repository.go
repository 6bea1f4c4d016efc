package repository

import (
	"time"

	"github.com/invorya/ledger-api/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia de reservas.
// Las reservas terminales se conservan (auditoría), solo cambian de estado.
type ReservationRepository interface {
	Create(reservation *entity.Reservation) error
	GetByID(id string) (*entity.Reservation, error)
	// GetForUpdate bloquea la fila de la reserva (SELECT FOR UPDATE) para
	// serializar transiciones de estado concurrentes.
	GetForUpdate(id string) (*entity.Reservation, error)
	Update(reservation *entity.Reservation) error
	// ListExpiredActive reservas activas con vencimiento anterior a now.
	ListExpiredActive(now time.Time, limit int) ([]*entity.Reservation, error)
}
