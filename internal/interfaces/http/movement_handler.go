package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/ledger-api/internal/application/dto"
	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// MovementHandler maneja las peticiones HTTP de movimientos de inventario.
type MovementHandler struct {
	uc      *ledger.MovementUseCase
	queries *ledger.QueryUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *ledger.MovementUseCase, queries *ledger.QueryUseCase) *MovementHandler {
	return &MovementHandler{uc: uc, queries: queries}
}

// Register godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "item_id, warehouse_id (o from/to para transferencia), type, quantity, unit_cost (entradas)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return reject(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return reject(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	}
	result, err := h.uc.Register(c.Context(), ledger.MovementInput{
		Type:            in.Type,
		ItemID:          in.ItemID,
		WarehouseID:     in.WarehouseID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
		Reference:       in.Reference,
		ActorID:         in.ActorID,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := dto.MovementResponse{Balance: dto.NewStockBalanceDTO(result.Balance)}
	for _, m := range result.Movements {
		out.Movements = append(out.Movements, dto.NewMovementDTO(m))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar movimientos del ledger
// @Tags         inventory
// @Produce      json
// @Param        item_id       query  string  false  "Filtrar por artículo"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        reference     query  string  false  "Filtrar por referencia (orden, reserva)"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Success      200  {array}   dto.MovementDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return reject(c, fiber.StatusBadRequest, "VALIDATION", "paginación inválida")
	}
	page.DefaultPage()

	filter := repository.MovementFilter{
		ItemID:      c.Query("item_id"),
		WarehouseID: c.Query("warehouse_id"),
		Reference:   c.Query("reference"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return reject(c, fiber.StatusBadRequest, "VALIDATION", "parámetro from inválido")
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return reject(c, fiber.StatusBadRequest, "VALIDATION", "parámetro to inválido")
		}
		filter.To = &t
	}

	movements, err := h.queries.ListMovements(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.NewMovementDTO(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}
