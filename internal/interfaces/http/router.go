package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/internal/application/receiving"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MovementUC    *ledger.MovementUseCase
	ReservationUC *ledger.ReservationUseCase
	QueryUC       *ledger.QueryUseCase
	OrderUC       *receiving.OrderUseCase
	ReceiveUC     *receiving.ReceiveUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Movimientos y saldos
	inv := api.Group("/inventory")
	movementHandler := NewMovementHandler(deps.MovementUC, deps.QueryUC)
	stockHandler := NewStockHandler(deps.QueryUC)
	inv.Post("/movements", movementHandler.Register)
	inv.Get("/movements", movementHandler.List)
	inv.Get("/stock", stockHandler.Get)
	inv.Get("/kardex/:itemID/pdf", stockHandler.Kardex)

	// Reservas
	reservations := api.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.ReservationUC, deps.QueryUC)
	reservations.Post("/", reservationHandler.Reserve)
	reservations.Get("/:id", reservationHandler.Get)
	reservations.Post("/:id/release", reservationHandler.Release)
	reservations.Post("/:id/consume", reservationHandler.Consume)
	reservations.Post("/:id/cancel", reservationHandler.Cancel)

	// Órdenes de compra y recepción
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.ReceiveUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/:id", orderHandler.Get)
	orders.Post("/:id/receive", orderHandler.Receive)
	orders.Post("/:id/cancel", orderHandler.Cancel)
}
