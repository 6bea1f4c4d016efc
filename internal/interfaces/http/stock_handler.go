package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/ledger-api/internal/application/dto"
	"github.com/invorya/ledger-api/internal/application/ledger"
)

// StockHandler lecturas de saldos y kardex.
type StockHandler struct {
	queries *ledger.QueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(queries *ledger.QueryUseCase) *StockHandler {
	return &StockHandler{queries: queries}
}

// Get godoc
// @Summary      Consultar saldo de un artículo en una bodega
// @Tags         inventory
// @Produce      json
// @Param        item_id       query  string  true  "Artículo"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.StockBalanceDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	balance, err := h.queries.GetStock(c.Context(), c.Query("item_id"), c.Query("warehouse_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockBalanceDTO(balance))
}

// Kardex godoc
// @Summary      Kardex PDF de un artículo
// @Tags         inventory
// @Produce      application/pdf
// @Param        itemID        path   string  true   "Artículo"
// @Param        warehouse_id  query  string  false  "Bodega (vacío = todas)"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/kardex/{itemID}/pdf [get]
func (h *StockHandler) Kardex(c *fiber.Ctx) error {
	pdfBytes, err := h.queries.Kardex(c.Context(), c.Params("itemID"), c.Query("warehouse_id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdfBytes)
}
