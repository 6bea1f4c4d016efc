package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/internal/application/receiving"
	infrapdf "github.com/invorya/ledger-api/internal/infrastructure/pdf"
	"github.com/invorya/ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/invorya/ledger-api/internal/interfaces/http"
	"github.com/invorya/ledger-api/pkg/config"
	"github.com/invorya/ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	kardexPDF := infrapdf.NewKardexGenerator()

	movementUC := ledger.NewMovementUseCase(txRunner, itemRepo, warehouseRepo)
	reservationUC := ledger.NewReservationUseCase(txRunner, itemRepo, warehouseRepo, reservationRepo)
	queryUC := ledger.NewQueryUseCase(stockRepo, movementRepo, reservationRepo, itemRepo, kardexPDF)
	orderUC := receiving.NewOrderUseCase(txRunner, orderRepo, itemRepo)
	receiveUC := receiving.NewReceiveUseCase(txRunner, movementUC, orderRepo, itemRepo, warehouseRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		MovementUC:    movementUC,
		ReservationUC: reservationUC,
		QueryUC:       queryUC,
		OrderUC:       orderUC,
		ReceiveUC:     receiveUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
