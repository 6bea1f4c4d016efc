package receiving_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/internal/application/receiving"
	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
	"github.com/invorya/ledger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	itemCable  = "item-cable"
	itemTubo   = "item-tubo"
	bodegaRecv = "wh-recepcion"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store   *memory.Store
	orders  *receiving.OrderUseCase
	receive *receiving.ReceiveUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedItem(entity.Item{ID: itemCable, SKU: "CAB-001", Name: "Cable 12AWG", Unit: "m"})
	store.SeedItem(entity.Item{ID: itemTubo, SKU: "TUB-001", Name: "Tubo PVC", Unit: "und"})
	store.SeedWarehouse(entity.Warehouse{ID: bodegaRecv, Code: "REC", Name: "Recepción"})

	movementUC := ledger.NewMovementUseCase(store, store.Items(), store.Warehouses())
	orders := receiving.NewOrderUseCase(store, store.Orders(), store.Items())
	receive := receiving.NewReceiveUseCase(store, movementUC, store.Orders(), store.Items(), store.Warehouses())
	return &fixture{store: store, orders: orders, receive: receive}
}

func (f *fixture) crearOrden(t *testing.T, lines ...receiving.CreateOrderLine) *entity.PurchaseOrder {
	t.Helper()
	order, err := f.orders.Create(context.Background(), receiving.CreateOrderInput{
		SupplierID: "prov-acme",
		Lines:      lines,
	})
	require.NoError(t, err)
	require.Equal(t, entity.OrderEstadoPendiente, order.Estado)
	return order
}

func (f *fixture) recibir(t *testing.T, orderID, key string, lines ...receiving.ReceiveLine) *receiving.ReceiveResult {
	t.Helper()
	result, err := f.receive.Receive(context.Background(), receiving.ReceiveInput{
		OrderID:        orderID,
		WarehouseID:    bodegaRecv,
		Lines:          lines,
		IdempotencyKey: key,
		ActorID:        "recibidor-01",
	})
	require.NoError(t, err)
	return result
}

func (f *fixture) contarMovimientos(t *testing.T, orderID string) int {
	t.Helper()
	movs, err := f.store.Movements().List(repository.MovementFilter{Reference: orderID})
	require.NoError(t, err)
	return len(movs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción y derivación de estado
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_TotalDejaOrdenRecibida(t *testing.T) {
	f := newFixture(t)
	order := f.crearOrden(t,
		receiving.CreateOrderLine{ItemID: itemCable, Ordenado: dec("10"), PrecioUnitario: dec("3")},
	)

	result := f.recibir(t, order.ID, "rcpt-1",
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("10"), UnitCost: dec("3")},
	)
	assert.False(t, result.Idempotent)
	assert.Equal(t, entity.OrderEstadoRecibido, result.Order.Estado)
	assert.True(t, dec("10").Equal(result.Order.Lines[0].Recibido))

	// La entrada quedó en el ledger referenciando la orden y el stock subió.
	balance, err := f.store.Stock().Get(itemCable, bodegaRecv)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(balance.Quantity))
	assert.True(t, dec("3").Equal(balance.AverageCost))
	assert.Equal(t, 1, f.contarMovimientos(t, order.ID))
}

func TestReceive_ParcialDejaOrdenParcial(t *testing.T) {
	f := newFixture(t)
	order := f.crearOrden(t,
		receiving.CreateOrderLine{ItemID: itemCable, Ordenado: dec("10"), PrecioUnitario: dec("3")},
		receiving.CreateOrderLine{ItemID: itemTubo, Ordenado: dec("5"), PrecioUnitario: dec("8")},
	)

	result := f.recibir(t, order.ID, "rcpt-1",
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("4"), UnitCost: dec("3")},
	)
	assert.Equal(t, entity.OrderEstadoParcial, result.Order.Estado)
}

func TestReceive_RecortaAlPendiente(t *testing.T) {
	f := newFixture(t)
	order := f.crearOrden(t,
		receiving.CreateOrderLine{ItemID: itemCable, Ordenado: dec("10"), PrecioUnitario: dec("3")},
	)

	// Primera recepción: 3 de 10.
	f.recibir(t, order.ID, "rcpt-1",
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("3"), UnitCost: dec("3")},
	)

	// Pedir 20 con pendiente 7: se recorta, nunca se sobre-recibe.
	result := f.recibir(t, order.ID, "rcpt-2",
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("20"), UnitCost: dec("3")},
	)
	assert.True(t, dec("10").Equal(result.Order.Lines[0].Recibido))
	assert.Equal(t, entity.OrderEstadoRecibido, result.Order.Estado)

	// Solo entraron las 7 recortadas.
	balance, _ := f.store.Stock().Get(itemCable, bodegaRecv)
	assert.True(t, dec("10").Equal(balance.Quantity))
}

func TestReceive_LineasRepetidasCompartenPendiente(t *testing.T) {
	f := newFixture(t)
	order := f.crearOrden(t,
		receiving.CreateOrderLine{ItemID: itemCable, Ordenado: dec("10"), PrecioUnitario: dec("3")},
	)
	f.recibir(t, order.ID, "rcpt-1",
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("3"), UnitCost: dec("3")},
	)

	// Dos líneas del mismo artículo contra pendiente 7: la primera entra completa
	// y la segunda se recorta al remanente, nunca se sobre-recibe.
	result := f.recibir(t, order.ID, "rcpt-2",
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("5"), UnitCost: dec("3")},
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("5"), UnitCost: dec("3")},
	)
	linea := result.Order.Lines[0]
	assert.True(t, dec("10").Equal(linea.Recibido), "recibido %s", linea.Recibido)
	assert.True(t, linea.Recibido.LessThanOrEqual(linea.Ordenado))
	assert.Equal(t, entity.OrderEstadoRecibido, result.Order.Estado)

	balance, _ := f.store.Stock().Get(itemCable, bodegaRecv)
	assert.True(t, dec("10").Equal(balance.Quantity))
}

func TestReceive_NadaPendiente(t *testing.T) {
	f := newFixture(t)
	order := f.crearOrden(t,
		receiving.CreateOrderLine{ItemID: itemCable, Ordenado: dec("5"), PrecioUnitario: dec("3")},
	)
	f.recibir(t, order.ID, "rcpt-1",
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("5"), UnitCost: dec("3")},
	)

	// Orden completa: una llave nueva contra pendiente cero es un conflicto,
	// no una repetición idempotente.
	_, err := f.receive.Receive(context.Background(), receiving.ReceiveInput{
		OrderID:     order.ID,
		WarehouseID: bodegaRecv,
		Lines: []receiving.ReceiveLine{
			{ItemID: itemCable, Quantity: dec("1"), UnitCost: dec("3")},
		},
		IdempotencyKey: "rcpt-2",
	})
	assert.ErrorIs(t, err, domain.ErrNothingToReceive)
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_RepetirLlaveNoDuplica(t *testing.T) {
	f := newFixture(t)
	order := f.crearOrden(t,
		receiving.CreateOrderLine{ItemID: itemCable, Ordenado: dec("10"), PrecioUnitario: dec("3")},
	)

	first := f.recibir(t, order.ID, "rcpt-1",
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("4"), UnitCost: dec("3")},
	)
	movsAntes := f.contarMovimientos(t, order.ID)

	// El reintento del cliente con la misma llave devuelve el snapshot original
	// sin tocar el ledger, aun con cantidades distintas en el body.
	replay := f.recibir(t, order.ID, "rcpt-1",
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("9"), UnitCost: dec("3")},
	)
	assert.True(t, replay.Idempotent)
	assert.Equal(t, first.Order.Estado, replay.Order.Estado)
	assert.True(t, first.Order.Lines[0].Recibido.Equal(replay.Order.Lines[0].Recibido))
	assert.Equal(t, movsAntes, f.contarMovimientos(t, order.ID))

	balance, _ := f.store.Stock().Get(itemCable, bodegaRecv)
	assert.True(t, dec("4").Equal(balance.Quantity))
}

func TestReceive_SinLlave(t *testing.T) {
	f := newFixture(t)
	order := f.crearOrden(t,
		receiving.CreateOrderLine{ItemID: itemCable, Ordenado: dec("10"), PrecioUnitario: dec("3")},
	)
	_, err := f.receive.Receive(context.Background(), receiving.ReceiveInput{
		OrderID:     order.ID,
		WarehouseID: bodegaRecv,
		Lines: []receiving.ReceiveLine{
			{ItemID: itemCable, Quantity: dec("1"), UnitCost: dec("3")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación y atomicidad
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_OrdenCancelada(t *testing.T) {
	f := newFixture(t)
	order := f.crearOrden(t,
		receiving.CreateOrderLine{ItemID: itemCable, Ordenado: dec("10"), PrecioUnitario: dec("3")},
	)
	_, err := f.orders.Cancel(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = f.receive.Receive(context.Background(), receiving.ReceiveInput{
		OrderID:     order.ID,
		WarehouseID: bodegaRecv,
		Lines: []receiving.ReceiveLine{
			{ItemID: itemCable, Quantity: dec("1"), UnitCost: dec("3")},
		},
		IdempotencyKey: "rcpt-1",
	})
	assert.ErrorIs(t, err, domain.ErrOrderCancelled)
	assert.Equal(t, 0, f.contarMovimientos(t, order.ID))
}

func TestReceive_LineaDesconocidaRevierteTodo(t *testing.T) {
	f := newFixture(t)
	order := f.crearOrden(t,
		receiving.CreateOrderLine{ItemID: itemCable, Ordenado: dec("10"), PrecioUnitario: dec("3")},
	)

	// itemTubo existe en catálogo pero no en la orden: la recepción completa se rechaza.
	_, err := f.receive.Receive(context.Background(), receiving.ReceiveInput{
		OrderID:     order.ID,
		WarehouseID: bodegaRecv,
		Lines: []receiving.ReceiveLine{
			{ItemID: itemCable, Quantity: dec("4"), UnitCost: dec("3")},
			{ItemID: itemTubo, Quantity: dec("2"), UnitCost: dec("8")},
		},
		IdempotencyKey: "rcpt-1",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownItem)

	// Nada quedó a medias: ni movimientos, ni recibido, ni registro de idempotencia.
	assert.Equal(t, 0, f.contarMovimientos(t, order.ID))
	got, err := f.orders.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, got.Lines[0].Recibido.IsZero())
	assert.Equal(t, entity.OrderEstadoPendiente, got.Estado)

	// El mismo intento corregido con la misma llave ahora sí aplica.
	result := f.recibir(t, order.ID, "rcpt-1",
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("4"), UnitCost: dec("3")},
	)
	assert.False(t, result.Idempotent)
	assert.True(t, dec("4").Equal(result.Order.Lines[0].Recibido))
}

func TestCancel_CongelaRecepcionesFuturas(t *testing.T) {
	f := newFixture(t)
	order := f.crearOrden(t,
		receiving.CreateOrderLine{ItemID: itemCable, Ordenado: dec("10"), PrecioUnitario: dec("3")},
	)
	f.recibir(t, order.ID, "rcpt-1",
		receiving.ReceiveLine{ItemID: itemCable, Quantity: dec("4"), UnitCost: dec("3")},
	)

	cancelled, err := f.orders.Cancel(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderEstadoCancelado, cancelled.Estado)

	// Lo ya recibido permanece en el ledger; cancelar no revierte entradas.
	balance, _ := f.store.Stock().Get(itemCable, bodegaRecv)
	assert.True(t, dec("4").Equal(balance.Quantity))

	// Cancelar dos veces es una transición inválida.
	_, err = f.orders.Cancel(context.Background(), order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
