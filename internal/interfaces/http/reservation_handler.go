package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/ledger-api/internal/application/dto"
	"github.com/invorya/ledger-api/internal/application/ledger"
)

// ReservationHandler maneja las peticiones HTTP de reservas de stock.
type ReservationHandler struct {
	uc      *ledger.ReservationUseCase
	queries *ledger.QueryUseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *ledger.ReservationUseCase, queries *ledger.QueryUseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc, queries: queries}
}

// Reserve godoc
// @Summary      Crear una reserva de stock
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "item_id, warehouse_id, quantity, requested_by"
// @Success      201   {object}  dto.ReservationDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return reject(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return reject(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	}
	reservation, err := h.uc.Reserve(c.Context(), ledger.ReserveInput{
		ItemID:      in.ItemID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		RequestedBy: in.RequestedBy,
		Reason:      in.Reason,
		ExpiresAt:   in.ExpiresAt,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewReservationDTO(reservation))
}

// Get godoc
// @Summary      Consultar una reserva
// @Tags         reservations
// @Produce      json
// @Param        id  path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	reservation, err := h.queries.GetReservation(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewReservationDTO(reservation))
}

// Release godoc
// @Summary      Liberar una reserva activa
// @Tags         reservations
// @Produce      json
// @Param        id  path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	reservation, err := h.uc.Release(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewReservationDTO(reservation))
}

// Consume godoc
// @Summary      Consumir una reserva activa (salida física)
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la reserva"
// @Param        body  body  dto.ConsumeRequest  true  "quantity <= cantidad reservada"
// @Success      200   {object}  dto.ReservationDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/consume [post]
func (h *ReservationHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return reject(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	reservation, err := h.uc.Consume(c.Context(), c.Params("id"), in.Quantity, in.ActorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewReservationDTO(reservation))
}

// Cancel godoc
// @Summary      Cancelar administrativamente una reserva activa
// @Tags         reservations
// @Produce      json
// @Param        id  path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	reservation, err := h.uc.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewReservationDTO(reservation))
}
