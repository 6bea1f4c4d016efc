package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	// Validación: rechazo inmediato, sin efectos; el caller corrige y reintenta.
	ErrInvalidQuantity  = errors.New("cantidad inválida")
	ErrUnknownItem      = errors.New("artículo desconocido")
	ErrUnknownWarehouse = errors.New("bodega desconocida")
	ErrInvalidInput     = errors.New("entrada inválida")

	// Regla de negocio: rechazo sin efectos; nunca se reintenta automáticamente.
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrInsufficientAvailable = errors.New("disponible insuficiente para reservar")
	ErrInvalidTransition     = errors.New("transición de estado inválida")
	ErrOrderCancelled        = errors.New("orden de compra cancelada")
	ErrNothingToReceive      = errors.New("nada pendiente por recibir")
	ErrReceivingFailed       = errors.New("recepción fallida")

	// Infraestructura.
	ErrNotFound = errors.New("recurso no encontrado")
	ErrConflict = errors.New("conflicto de concurrencia, reintentos agotados")
)
