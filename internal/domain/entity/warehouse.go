package entity

import "time"

// Warehouse bodega física o lógica. Propiedad del catálogo externo, solo lectura aquí.
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
}
