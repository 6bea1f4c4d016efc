package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/ledger-api/internal/application/dto"
	"github.com/invorya/ledger-api/internal/domain"
)

// respondError mapea errores de dominio a códigos HTTP con el cuerpo estándar.
// Validación -> 400, referencias desconocidas -> 404, reglas de negocio y
// conflictos -> 409, lo demás -> 500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return reject(c, fiber.StatusBadRequest, "INVALID_QUANTITY", "cantidad inválida")
	case errors.Is(err, domain.ErrInvalidInput):
		return reject(c, fiber.StatusBadRequest, "VALIDATION", "datos inválidos")
	case errors.Is(err, domain.ErrUnknownItem):
		return reject(c, fiber.StatusNotFound, "UNKNOWN_ITEM", "artículo desconocido")
	case errors.Is(err, domain.ErrUnknownWarehouse):
		return reject(c, fiber.StatusNotFound, "UNKNOWN_WAREHOUSE", "bodega desconocida")
	case errors.Is(err, domain.ErrNotFound):
		return reject(c, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado")
	case errors.Is(err, domain.ErrInsufficientStock):
		return reject(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente")
	case errors.Is(err, domain.ErrInsufficientAvailable):
		return reject(c, fiber.StatusConflict, "INSUFFICIENT_AVAILABLE", "disponible insuficiente")
	case errors.Is(err, domain.ErrInvalidTransition):
		return reject(c, fiber.StatusConflict, "INVALID_TRANSITION", "transición de estado inválida")
	case errors.Is(err, domain.ErrOrderCancelled):
		return reject(c, fiber.StatusConflict, "ORDER_CANCELLED", "orden de compra cancelada")
	case errors.Is(err, domain.ErrNothingToReceive):
		return reject(c, fiber.StatusConflict, "NOTHING_TO_RECEIVE", "nada pendiente por recibir")
	case errors.Is(err, domain.ErrReceivingFailed):
		return reject(c, fiber.StatusConflict, "RECEIVING_FAILED", err.Error())
	case errors.Is(err, domain.ErrConflict):
		return reject(c, fiber.StatusConflict, "CONFLICT", "conflicto de concurrencia, reintente")
	default:
		return reject(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func reject(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}
