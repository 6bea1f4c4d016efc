package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/ledger-api/internal/application/dto"
	"github.com/invorya/ledger-api/internal/application/receiving"
)

// OrderHandler maneja las peticiones HTTP de órdenes de compra y recepción.
type OrderHandler struct {
	orders  *receiving.OrderUseCase
	receive *receiving.ReceiveUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(orders *receiving.OrderUseCase, receive *receiving.ReceiveUseCase) *OrderHandler {
	return &OrderHandler{orders: orders, receive: receive}
}

// Create godoc
// @Summary      Crear una orden de compra
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "supplier_id y líneas (ordenado > 0)"
// @Success      201   {object}  dto.OrderDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return reject(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return reject(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	}
	input := receiving.CreateOrderInput{SupplierID: in.SupplierID}
	if in.Date != nil {
		input.Date = *in.Date
	}
	for _, line := range in.Lines {
		input.Lines = append(input.Lines, receiving.CreateOrderLine{
			ItemID:         line.ItemID,
			Ordenado:       line.Ordenado,
			PrecioUnitario: line.PrecioUnitario,
		})
	}
	order, err := h.orders.Create(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderDTO(order))
}

// Get godoc
// @Summary      Consultar una orden de compra
// @Tags         orders
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewOrderDTO(order))
}

// Receive godoc
// @Summary      Recibir mercancía contra una orden
// @Description  Idempotente por (orden, llave). Repetir la misma llave devuelve el
// @Description  resultado original sin duplicar entradas. La llave va en el body o
// @Description  en el header X-Idempotency-Key.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id                 path    string              true   "ID de la orden"
// @Param        X-Idempotency-Key  header  string              false  "Llave de idempotencia"
// @Param        body               body    dto.ReceiveRequest  true   "warehouse_id y líneas recibidas"
// @Success      200   {object}  dto.ReceiveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receive [post]
func (h *OrderHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return reject(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return reject(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	}
	key := in.IdempotencyKey
	if key == "" {
		key = c.Get("X-Idempotency-Key")
	}
	if key == "" {
		return reject(c, fiber.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "se requiere llave de idempotencia")
	}

	input := receiving.ReceiveInput{
		OrderID:        c.Params("id"),
		WarehouseID:    in.WarehouseID,
		IdempotencyKey: key,
		ActorID:        in.ActorID,
	}
	for _, line := range in.Lines {
		input.Lines = append(input.Lines, receiving.ReceiveLine{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			UnitCost: line.UnitCost,
		})
	}

	result, err := h.receive.Receive(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReceiveResponse{
		Order:      dto.NewOrderDTO(result.Order),
		Idempotent: result.Idempotent,
	})
}

// Cancel godoc
// @Summary      Cancelar una orden de compra
// @Tags         orders
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	order, err := h.orders.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewOrderDTO(order))
}
