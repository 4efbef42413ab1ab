package stock

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Deduction descuento planificado sobre un lote concreto.
type Deduction struct {
	Batch *entity.Batch
	Qty   decimal.Decimal
}

// PlanDepletion recorre los lotes candidatos (ya ordenados FIFO por fecha de
// recepción, solo Qty > 0) y reparte la cantidad requerida. Devuelve los
// descuentos por lote y el costo total extraído (suma de qty * costo del lote).
// No muta los lotes: el caller aplica los descuentos dentro de su transacción.
// Si los candidatos no alcanzan, falla con ErrInsufficientBatchStock y no se
// aplica ningún descuento parcial.
func PlanDepletion(batches []*entity.Batch, required decimal.Decimal) ([]Deduction, decimal.Decimal, error) {
	if !required.GreaterThan(decimal.Zero) {
		return nil, decimal.Zero, domain.ErrInvalidQuantity
	}
	remaining := required
	cost := decimal.Zero
	var plan []Deduction
	for _, b := range batches {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		if !b.Qty.GreaterThan(decimal.Zero) {
			continue
		}
		deduct := decimal.Min(b.Qty, remaining)
		plan = append(plan, Deduction{Batch: b, Qty: deduct})
		cost = cost.Add(deduct.Mul(b.UnitCost))
		remaining = remaining.Sub(deduct)
	}
	if remaining.GreaterThan(decimal.Zero) {
		return nil, decimal.Zero, domain.ErrInsufficientBatchStock
	}
	return plan, cost, nil
}
