package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
	"github.com/invorya/ledger-api/internal/infrastructure/memory"
)

// newReservationFixture deja 10 unidades a costo 5 en bodega norte.
func newReservationFixture(t *testing.T) (*ledger.ReservationUseCase, *memory.Store) {
	t.Helper()
	movUC, store := newMovementFixture(t)
	entrada(t, movUC, bodegaNorte, "10", "5")
	uc := ledger.NewReservationUseCase(store, store.Items(), store.Warehouses(), store.Reservations())
	return uc, store
}

func reservar(t *testing.T, uc *ledger.ReservationUseCase, qty string) *entity.Reservation {
	t.Helper()
	res, err := uc.Reserve(context.Background(), ledger.ReserveInput{
		ItemID:      itemTornillo,
		WarehouseID: bodegaNorte,
		Quantity:    dec(qty),
		RequestedBy: "picking-01",
	})
	require.NoError(t, err)
	return res
}

// requireInvariante verifica 0 <= reservado <= existencia tras cada operación.
func requireInvariante(t *testing.T, store *memory.Store) {
	t.Helper()
	balance, err := store.Stock().Get(itemTornillo, bodegaNorte)
	require.NoError(t, err)
	require.True(t, balance.Reserved.GreaterThanOrEqual(decimal.Zero),
		"reservado negativo: %s", balance.Reserved)
	require.True(t, balance.Reserved.LessThanOrEqual(balance.Quantity),
		"reservado %s > existencia %s", balance.Reserved, balance.Quantity)
}

func TestReserve_ApartaSinMoverExistencia(t *testing.T) {
	uc, store := newReservationFixture(t)

	res := reservar(t, uc, "4")
	assert.Equal(t, entity.ReservationStateActivo, res.State)

	balance, err := store.Stock().Get(itemTornillo, bodegaNorte)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(balance.Quantity), "reservar no mueve existencia")
	assert.True(t, dec("4").Equal(balance.Reserved))
	assert.True(t, dec("6").Equal(balance.Available()))
	requireInvariante(t, store)
}

func TestReserve_DisponibleInsuficiente(t *testing.T) {
	uc, store := newReservationFixture(t)
	reservar(t, uc, "8")

	// Quedan 2 disponibles; pedir 3 se rechaza contra disponible, no contra existencia.
	_, err := uc.Reserve(context.Background(), ledger.ReserveInput{
		ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("3"), RequestedBy: "picking-02",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailable)
	requireInvariante(t, store)
}

func TestRelease_DevuelveElReservado(t *testing.T) {
	uc, store := newReservationFixture(t)
	res := reservar(t, uc, "4")

	released, err := uc.Release(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStateLiberado, released.State)

	balance, _ := store.Stock().Get(itemTornillo, bodegaNorte)
	assert.True(t, dec("10").Equal(balance.Quantity))
	assert.True(t, balance.Reserved.IsZero())

	// Liberar de nuevo es una transición inválida: los estados terminales no cuentan doble.
	_, err = uc.Release(context.Background(), res.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	requireInvariante(t, store)
}

func TestConsume_Total(t *testing.T) {
	uc, store := newReservationFixture(t)
	res := reservar(t, uc, "4")

	consumed, err := uc.Consume(context.Background(), res.ID, dec("4"), "op-01")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStateConsumido, consumed.State)

	balance, _ := store.Stock().Get(itemTornillo, bodegaNorte)
	assert.True(t, dec("6").Equal(balance.Quantity))
	assert.True(t, balance.Reserved.IsZero())

	// El consumo deja una salida en el log referenciando la reserva.
	movs, err := store.Movements().List(repository.MovementFilter{Reference: res.ID})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeSalida, movs[0].Type)
	assert.True(t, dec("-4").Equal(movs[0].Quantity))
	requireInvariante(t, store)
}

func TestConsume_ParcialLiberaElRemanente(t *testing.T) {
	uc, store := newReservationFixture(t)
	res := reservar(t, uc, "6")

	_, err := uc.Consume(context.Background(), res.ID, dec("4"), "op-01")
	require.NoError(t, err)

	// Se consumieron 4 y las 2 restantes quedan implícitamente liberadas.
	balance, _ := store.Stock().Get(itemTornillo, bodegaNorte)
	assert.True(t, dec("6").Equal(balance.Quantity))
	assert.True(t, balance.Reserved.IsZero())
	requireInvariante(t, store)
}

func TestConsume_MasQueLaReserva(t *testing.T) {
	uc, _ := newReservationFixture(t)
	res := reservar(t, uc, "4")

	_, err := uc.Consume(context.Background(), res.ID, dec("5"), "op-01")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCancel_EsTerminal(t *testing.T) {
	uc, store := newReservationFixture(t)
	res := reservar(t, uc, "4")

	cancelled, err := uc.Cancel(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStateCancelado, cancelled.State)

	balance, _ := store.Stock().Get(itemTornillo, bodegaNorte)
	assert.True(t, balance.Reserved.IsZero())

	_, err = uc.Consume(context.Background(), res.ID, dec("1"), "op-01")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	requireInvariante(t, store)
}

func TestTransition_ReservaInexistente(t *testing.T) {
	uc, _ := newReservationFixture(t)
	_, err := uc.Release(context.Background(), "res-fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReleaseExpired_LiberaSoloVencidas(t *testing.T) {
	uc, store := newReservationFixture(t)

	pasada := time.Now().Add(-time.Hour)
	futura := time.Now().Add(time.Hour)

	vencida, err := uc.Reserve(context.Background(), ledger.ReserveInput{
		ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("3"), RequestedBy: "picking-01", ExpiresAt: &pasada,
	})
	require.NoError(t, err)
	vigente, err := uc.Reserve(context.Background(), ledger.ReserveInput{
		ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("2"), RequestedBy: "picking-02", ExpiresAt: &futura,
	})
	require.NoError(t, err)

	released, err := uc.ReleaseExpired(context.Background(), time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	got, err := store.Reservations().GetByID(vencida.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStateLiberado, got.State)

	got, err = store.Reservations().GetByID(vigente.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStateActivo, got.State)

	balance, _ := store.Stock().Get(itemTornillo, bodegaNorte)
	assert.True(t, dec("2").Equal(balance.Reserved))
	requireInvariante(t, store)
}
