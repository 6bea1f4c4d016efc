package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/ledger-api/internal/application/ledger"
	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	itemTornillo = "item-tornillo"
	bodegaNorte  = "wh-norte"
	bodegaSur    = "wh-sur"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func newMovementFixture(t *testing.T) (*ledger.MovementUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.SeedItem(entity.Item{ID: itemTornillo, SKU: "TOR-001", Name: "Tornillo 3/8", Unit: "und"})
	store.SeedWarehouse(entity.Warehouse{ID: bodegaNorte, Code: "NOR", Name: "Bodega Norte"})
	store.SeedWarehouse(entity.Warehouse{ID: bodegaSur, Code: "SUR", Name: "Bodega Sur"})
	return ledger.NewMovementUseCase(store, store.Items(), store.Warehouses()), store
}

func registrar(t *testing.T, uc *ledger.MovementUseCase, input ledger.MovementInput) *ledger.MovementResult {
	t.Helper()
	result, err := uc.Register(context.Background(), input)
	require.NoError(t, err)
	return result
}

func entrada(t *testing.T, uc *ledger.MovementUseCase, wh, qty, cost string) *ledger.MovementResult {
	t.Helper()
	return registrar(t, uc, ledger.MovementInput{
		Type: entity.MovementTypeEntrada, ItemID: itemTornillo, WarehouseID: wh,
		Quantity: dec(qty), UnitCost: ptr(dec(cost)),
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas y costo promedio
// ──────────────────────────────────────────────────────────────────────────────

func TestEntrada_MaterializaSaldoYPromedia(t *testing.T) {
	uc, _ := newMovementFixture(t)

	// Primera entrada: la fila de saldo nace con el costo de la entrada.
	res := entrada(t, uc, bodegaNorte, "10", "5")
	assert.True(t, dec("10").Equal(res.Balance.Quantity))
	assert.True(t, dec("5").Equal(res.Balance.AverageCost))

	// Segunda entrada a costo distinto: 10@5 + 10@7 => 20 unidades a 6.
	res = entrada(t, uc, bodegaNorte, "10", "7")
	assert.True(t, dec("20").Equal(res.Balance.Quantity))
	assert.True(t, dec("6").Equal(res.Balance.AverageCost))
	require.Len(t, res.Movements, 1)
	assert.Equal(t, entity.MovementTypeEntrada, res.Movements[0].Type)
	assert.True(t, dec("10").Equal(res.Movements[0].Quantity))
}

func TestEntrada_SinCostoUnitario(t *testing.T) {
	uc, _ := newMovementFixture(t)
	_, err := uc.Register(context.Background(), ledger.MovementInput{
		Type: entity.MovementTypeEntrada, ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("5"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Salidas
// ──────────────────────────────────────────────────────────────────────────────

func TestSalida_DescuentaSinAlterarPromedio(t *testing.T) {
	uc, _ := newMovementFixture(t)
	entrada(t, uc, bodegaNorte, "10", "5")
	entrada(t, uc, bodegaNorte, "10", "7")

	res := registrar(t, uc, ledger.MovementInput{
		Type: entity.MovementTypeSalida, ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("5"),
	})
	assert.True(t, dec("15").Equal(res.Balance.Quantity))
	assert.True(t, dec("6").Equal(res.Balance.AverageCost), "la salida no recalcula el promedio")
	// La cantidad del registro va con signo negativo y al costo promedio vigente.
	require.Len(t, res.Movements, 1)
	assert.True(t, dec("-5").Equal(res.Movements[0].Quantity))
	assert.True(t, dec("6").Equal(res.Movements[0].UnitCost))
}

func TestSalida_StockInsuficiente(t *testing.T) {
	uc, store := newMovementFixture(t)
	entrada(t, uc, bodegaNorte, "20", "6")

	_, err := uc.Register(context.Background(), ledger.MovementInput{
		Type: entity.MovementTypeSalida, ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("25"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El rechazo no deja rastro: ni en el saldo ni en el log.
	balance, err := store.Stock().Get(itemTornillo, bodegaNorte)
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(balance.Quantity))
	movs, err := store.Movements().ListByKey(itemTornillo, bodegaNorte)
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestSalida_RespetaReservado(t *testing.T) {
	uc, store := newMovementFixture(t)
	entrada(t, uc, bodegaNorte, "10", "5")

	// 4 unidades apartadas: el disponible baja a 6 aunque existan 10.
	balance, err := store.Stock().Get(itemTornillo, bodegaNorte)
	require.NoError(t, err)
	balance.Reserved = dec("4")
	require.NoError(t, store.Stock().Upsert(balance))

	_, err = uc.Register(context.Background(), ledger.MovementInput{
		Type: entity.MovementTypeSalida, ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("7"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	res := registrar(t, uc, ledger.MovementInput{
		Type: entity.MovementTypeSalida, ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("6"),
	})
	assert.True(t, dec("4").Equal(res.Balance.Quantity))
	assert.True(t, dec("4").Equal(res.Balance.Reserved))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestAjuste_PositivoYNegativo(t *testing.T) {
	uc, _ := newMovementFixture(t)
	entrada(t, uc, bodegaNorte, "10", "5")

	// Ajuste positivo con costo: sigue la regla de entrada pero queda tipado ajuste.
	res := registrar(t, uc, ledger.MovementInput{
		Type: entity.MovementTypeAjuste, ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("10"), UnitCost: ptr(dec("7")),
	})
	assert.True(t, dec("20").Equal(res.Balance.Quantity))
	assert.True(t, dec("6").Equal(res.Balance.AverageCost))
	assert.Equal(t, entity.MovementTypeAjuste, res.Movements[0].Type)

	// Ajuste negativo: regla de salida, cantidad con signo.
	res = registrar(t, uc, ledger.MovementInput{
		Type: entity.MovementTypeAjuste, ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("-3"),
	})
	assert.True(t, dec("17").Equal(res.Balance.Quantity))
	assert.True(t, dec("-3").Equal(res.Movements[0].Quantity))
	assert.Equal(t, entity.MovementTypeAjuste, res.Movements[0].Type)
}

func TestAjuste_PositivoSinCostoMantienePromedio(t *testing.T) {
	uc, _ := newMovementFixture(t)
	entrada(t, uc, bodegaNorte, "10", "5")

	// Conteo físico sin costo: las unidades entran al promedio vigente,
	// el promedio no se diluye hacia cero.
	res := registrar(t, uc, ledger.MovementInput{
		Type: entity.MovementTypeAjuste, ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("10"),
	})
	assert.True(t, dec("20").Equal(res.Balance.Quantity))
	assert.True(t, dec("5").Equal(res.Balance.AverageCost))
	assert.True(t, dec("5").Equal(res.Movements[0].UnitCost))
}

func TestAjuste_CantidadCero(t *testing.T) {
	uc, _ := newMovementFixture(t)
	_, err := uc.Register(context.Background(), ledger.MovementInput{
		Type: entity.MovementTypeAjuste, ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transferencias
// ──────────────────────────────────────────────────────────────────────────────

func TestTransferencia_DebitaYAcreditaAtomicamente(t *testing.T) {
	uc, store := newMovementFixture(t)
	entrada(t, uc, bodegaNorte, "10", "5")
	entrada(t, uc, bodegaSur, "10", "9")

	res := registrar(t, uc, ledger.MovementInput{
		Type: entity.MovementTypeTransferencia, ItemID: itemTornillo,
		FromWarehouseID: bodegaNorte, ToWarehouseID: bodegaSur,
		Quantity: dec("10"),
	})

	// Dos registros, mismo transaction_id, signos opuestos.
	require.Len(t, res.Movements, 2)
	assert.Equal(t, res.Movements[0].TransactionID, res.Movements[1].TransactionID)
	assert.True(t, dec("-10").Equal(res.Movements[0].Quantity))
	assert.True(t, dec("10").Equal(res.Movements[1].Quantity))

	origen, err := store.Stock().Get(itemTornillo, bodegaNorte)
	require.NoError(t, err)
	assert.True(t, origen.Quantity.IsZero())

	// El destino entra al costo promedio del origen: 10@9 + 10@5 => 20 a 7.
	destino, err := store.Stock().Get(itemTornillo, bodegaSur)
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(destino.Quantity))
	assert.True(t, dec("7").Equal(destino.AverageCost))
}

func TestTransferencia_InsuficienteNoDejaRastro(t *testing.T) {
	uc, store := newMovementFixture(t)
	entrada(t, uc, bodegaNorte, "5", "5")

	_, err := uc.Register(context.Background(), ledger.MovementInput{
		Type: entity.MovementTypeTransferencia, ItemID: itemTornillo,
		FromWarehouseID: bodegaNorte, ToWarehouseID: bodegaSur,
		Quantity: dec("8"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	origen, _ := store.Stock().Get(itemTornillo, bodegaNorte)
	destino, _ := store.Stock().Get(itemTornillo, bodegaSur)
	assert.True(t, dec("5").Equal(origen.Quantity))
	assert.True(t, destino.Quantity.IsZero())
}

func TestTransferencia_MismaBodega(t *testing.T) {
	uc, _ := newMovementFixture(t)
	_, err := uc.Register(context.Background(), ledger.MovementInput{
		Type: entity.MovementTypeTransferencia, ItemID: itemTornillo,
		FromWarehouseID: bodegaNorte, ToWarehouseID: bodegaNorte,
		Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de catálogo y equivalencia por re-ejecución
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_CatalogoDesconocido(t *testing.T) {
	uc, _ := newMovementFixture(t)

	_, err := uc.Register(context.Background(), ledger.MovementInput{
		Type: entity.MovementTypeEntrada, ItemID: "item-fantasma", WarehouseID: bodegaNorte,
		Quantity: dec("1"), UnitCost: ptr(dec("1")),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownItem)

	_, err = uc.Register(context.Background(), ledger.MovementInput{
		Type: entity.MovementTypeEntrada, ItemID: itemTornillo, WarehouseID: "wh-fantasma",
		Quantity: dec("1"), UnitCost: ptr(dec("1")),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownWarehouse)
}

// TestReplayEquivalencia: tras cualquier secuencia de operaciones, la existencia
// de cada (artículo, bodega) debe ser la suma de las cantidades con signo de su log.
func TestReplayEquivalencia(t *testing.T) {
	uc, store := newMovementFixture(t)

	entrada(t, uc, bodegaNorte, "10", "5")
	entrada(t, uc, bodegaNorte, "10", "7")
	registrar(t, uc, ledger.MovementInput{
		Type: entity.MovementTypeSalida, ItemID: itemTornillo, WarehouseID: bodegaNorte,
		Quantity: dec("5"),
	})
	registrar(t, uc, ledger.MovementInput{
		Type: entity.MovementTypeTransferencia, ItemID: itemTornillo,
		FromWarehouseID: bodegaNorte, ToWarehouseID: bodegaSur,
		Quantity: dec("4"),
	})
	registrar(t, uc, ledger.MovementInput{
		Type: entity.MovementTypeAjuste, ItemID: itemTornillo, WarehouseID: bodegaSur,
		Quantity: dec("-1"),
	})

	for _, wh := range []string{bodegaNorte, bodegaSur} {
		balance, err := store.Stock().Get(itemTornillo, wh)
		require.NoError(t, err)
		movs, err := store.Movements().ListByKey(itemTornillo, wh)
		require.NoError(t, err)
		replayed := decimal.Zero
		for _, m := range movs {
			replayed = replayed.Add(m.Quantity)
		}
		assert.True(t, replayed.Equal(balance.Quantity),
			"bodega %s: saldo %s vs re-ejecución %s", wh, balance.Quantity, replayed)
	}
}
