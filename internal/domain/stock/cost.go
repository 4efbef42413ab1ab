package stock

import "github.com/shopspring/decimal"

// AverageCost costo promedio ponderado móvil tras una entrada (servicio de dominio).
// NuevoCosto = ((QtyActual * CostoActual) + (QtyEntrada * CostoEntrada)) / (QtyActual + QtyEntrada)
// Con stock previo en cero el resultado es el costo de la entrada. Solo las entradas
// recalculan el promedio; las salidas nunca lo modifican.
func AverageCost(qtyActual, costoActual, qtyEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	total := qtyActual.Add(qtyEntrada)
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	valor := qtyActual.Mul(costoActual).Add(qtyEntrada.Mul(costoEntrada))
	return valor.Div(total)
}
