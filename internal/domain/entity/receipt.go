package entity

import "time"

// ReceiptRecord registro de idempotencia de una recepción. Clave: (orden, llave del
// cliente). Result guarda el snapshot JSON de la orden devuelto en la primera
// aplicación exitosa; se escribe en la misma transacción de la recepción y después
// es solo lectura.
type ReceiptRecord struct {
	OrderID        string
	IdempotencyKey string
	Result         []byte
	CreatedAt      time.Time
}
