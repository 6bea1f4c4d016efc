package repository

import "github.com/invorya/ledger-api/internal/domain/entity"

// ReceiptRepository define el puerto del almacén de idempotencia de recepciones.
type ReceiptRepository interface {
	// Get devuelve el registro para (orden, llave) o nil si no existe.
	Get(orderID, idempotencyKey string) (*entity.ReceiptRecord, error)
	// Create inserta el registro; la clave primaria (order_id, idempotency_key)
	// respalda la unicidad a nivel de almacenamiento.
	Create(record *entity.ReceiptRecord) error
}
