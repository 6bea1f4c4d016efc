package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/pkg/logger"
)

const (
	// QueueDefault cola por defecto de trabajos en segundo plano.
	QueueDefault = "default"
	// TaskReservationsExpire tipo de tarea de liberación de reservas vencidas.
	TaskReservationsExpire = "reservations:expire"
)

// ReservationExpirePayload parámetros de una corrida de expiración.
type ReservationExpirePayload struct {
	Limit int `json:"limit"`
}

// NewReservationExpireTask construye la tarea asynq.
func NewReservationExpireTask(limit int) (*asynq.Task, error) {
	data, err := json.Marshal(ReservationExpirePayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReservationsExpire, data), nil
}

// ReservationExpiryJob libera reservas activas cuyo expires_at ya pasó.
type ReservationExpiryJob struct {
	reservations *ledger.ReservationUseCase
	log          *logger.Logger
}

// NewReservationExpiryJob construye el job.
func NewReservationExpiryJob(reservations *ledger.ReservationUseCase, log *logger.Logger) *ReservationExpiryJob {
	return &ReservationExpiryJob{reservations: reservations, log: log}
}

// Handle procesa TaskReservationsExpire. Un payload ilegible no se reintenta.
func (j *ReservationExpiryJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReservationExpirePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Limit <= 0 {
		payload.Limit = 100
	}
	released, err := j.reservations.ReleaseExpired(ctx, time.Now(), payload.Limit)
	if err != nil {
		j.log.Error().Err(err).Int("released", released).Msg("liberación de reservas vencidas falló")
		return err
	}
	if released > 0 {
		j.log.Info().Int("released", released).Msg("reservas vencidas liberadas")
	}
	return nil
}
