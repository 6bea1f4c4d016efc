package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/invorya/ledger-api/internal/domain/ledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TestWeightedAverageCost valida el promedio ponderado con el ejemplo canónico:
// 10 unidades a 5.00 más 10 unidades a 7.00 dejan 20 unidades a 6.00.
func TestWeightedAverageCost(t *testing.T) {
	got := ledger.WeightedAverageCost(dec("10"), dec("5"), dec("10"), dec("7"))
	assert.True(t, dec("6").Equal(got), "esperaba 6, obtuve %s", got)
}

func TestWeightedAverageCost_StockEnCero(t *testing.T) {
	// Sin stock previo el costo es el de la entrada, sin promediar.
	got := ledger.WeightedAverageCost(decimal.Zero, dec("99"), dec("4"), dec("7.50"))
	assert.True(t, dec("7.50").Equal(got))
}

func TestWeightedAverageCost_StockNegativo(t *testing.T) {
	// Un stock negativo (ajustes históricos) no debe envenenar el promedio:
	// se adopta el costo de la entrada.
	got := ledger.WeightedAverageCost(dec("-3"), dec("5"), dec("10"), dec("7"))
	assert.True(t, dec("7").Equal(got))
}

func TestWeightedAverageCost_SumaNoPositiva(t *testing.T) {
	got := ledger.WeightedAverageCost(dec("-10"), dec("5"), dec("10"), dec("7"))
	assert.True(t, got.IsZero())
}

func TestWeightedAverageCost_Fraccionario(t *testing.T) {
	// 2 @ 1.00 + 1 @ 2.50 = 4.50 / 3 = 1.50
	got := ledger.WeightedAverageCost(dec("2"), dec("1"), dec("1"), dec("2.50"))
	assert.True(t, dec("1.50").Equal(got), "esperaba 1.50, obtuve %s", got)
}
