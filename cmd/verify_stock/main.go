package main

import (
	"context"
	"flag"
	"os"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/invorya/ledger-api/internal/domain/repository"
	"github.com/invorya/ledger-api/internal/infrastructure/postgres"
	"github.com/invorya/ledger-api/pkg/config"
	"github.com/invorya/ledger-api/pkg/logger"
)

const balancePageSize = 500

// verify_stock audita la equivalencia entre los saldos materializados y la
// re-ejecución del log de movimientos: para cada (artículo, bodega) la existencia
// debe ser exactamente la suma de las cantidades con signo de sus movimientos.
// Sale con código 1 si encuentra alguna divergencia.
func main() {
	workers := flag.Int("workers", 4, "bodegas auditadas en paralelo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)

	warehouses, err := warehouseRepo.List(1000, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("listar bodegas")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)

	results := make(chan int, len(warehouses))
	for _, wh := range warehouses {
		wh := wh
		g.Go(func() error {
			mismatches, err := auditWarehouse(gctx, log, stockRepo, movementRepo, wh.ID)
			if err != nil {
				return err
			}
			results <- mismatches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("auditoría abortada")
	}
	close(results)

	total := 0
	for n := range results {
		total += n
	}
	if total > 0 {
		log.Error().Int("mismatches", total).Msg("divergencias entre saldos y log de movimientos")
		os.Exit(1)
	}
	log.Info().Int("warehouses", len(warehouses)).Msg("saldos consistentes con el log de movimientos")
}

func auditWarehouse(
	ctx context.Context,
	log *logger.Logger,
	stockRepo repository.StockRepository,
	movementRepo repository.MovementRepository,
	warehouseID string,
) (int, error) {
	mismatches := 0
	for offset := 0; ; offset += balancePageSize {
		if err := ctx.Err(); err != nil {
			return mismatches, err
		}
		balances, err := stockRepo.ListByWarehouse(warehouseID, balancePageSize, offset)
		if err != nil {
			return mismatches, err
		}
		if len(balances) == 0 {
			return mismatches, nil
		}
		for _, balance := range balances {
			movements, err := movementRepo.ListByKey(balance.ItemID, warehouseID)
			if err != nil {
				return mismatches, err
			}
			replayed := decimal.Zero
			for _, m := range movements {
				replayed = replayed.Add(m.Quantity)
			}
			if !replayed.Equal(balance.Quantity) {
				mismatches++
				log.Error().
					Str("item_id", balance.ItemID).
					Str("warehouse_id", warehouseID).
					Str("balance", balance.Quantity.String()).
					Str("replayed", replayed.String()).
					Msg("saldo no coincide con la re-ejecución del log")
			}
		}
		if len(balances) < balancePageSize {
			return mismatches, nil
		}
	}
}
