package ledger

import "github.com/shopspring/decimal"

// WeightedAverageCost calcula el costo promedio ponderado tras una entrada
// (servicio de dominio puro).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con StockActual = 0 el nuevo costo es el costo de la entrada.
func WeightedAverageCost(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if stockActual.LessThanOrEqual(decimal.Zero) {
		return costoEntrada
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}
