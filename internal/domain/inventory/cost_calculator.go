package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(4)
}

// WeightedCost es CostCalculator con cantidades enteras de unidades.
func WeightedCost(stock int, cost decimal.Decimal, qty int, unitCost decimal.Decimal) decimal.Decimal {
	if stock < 0 {
		stock = 0
	}
	return CostCalculator(decimal.NewFromInt(int64(stock)), cost, decimal.NewFromInt(int64(qty)), unitCost)
}
