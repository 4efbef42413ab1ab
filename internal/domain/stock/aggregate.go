package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Operaciones aritméticas sobre el registro maestro de stock. Cada función valida
// sus precondiciones, muta el agregado y recalcula AvailableQty = Qty - LockedQty.
// El caller es responsable de ejecutarlas bajo la sección crítica por clave
// (fila bloqueada con SELECT FOR UPDATE) y de persistir el resultado.

// Receive suma una entrada y recalcula el costo promedio ponderado.
// Única operación que modifica AvgCost.
func Receive(s *entity.Stock, qty, unitCost decimal.Decimal, now time.Time) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	if unitCost.LessThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	s.AvgCost = AverageCost(s.Qty, s.AvgCost, qty, unitCost)
	s.Qty = s.Qty.Add(qty)
	s.AvailableQty = s.Qty.Sub(s.LockedQty)
	s.UpdatedAt = now
	return nil
}

// Issue resta una salida directa. Requiere disponibilidad suficiente;
// no toca AvgCost (el promedio móvil solo se ajusta en entradas).
func Issue(s *entity.Stock, qty decimal.Decimal, now time.Time) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	if s.AvailableQty.LessThan(qty) {
		return domain.ErrInsufficientStock
	}
	s.Qty = s.Qty.Sub(qty)
	s.AvailableQty = s.Qty.Sub(s.LockedQty)
	s.UpdatedAt = now
	return nil
}

// Reserve bloquea cantidad disponible sin tocar la cantidad física ni los lotes.
func Reserve(s *entity.Stock, qty decimal.Decimal, now time.Time) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	if s.AvailableQty.LessThan(qty) {
		return domain.ErrInsufficientAvailableStock
	}
	s.LockedQty = s.LockedQty.Add(qty)
	s.AvailableQty = s.Qty.Sub(s.LockedQty)
	s.UpdatedAt = now
	return nil
}

// Release libera cantidad bloqueada. LockedQty nunca baja de cero.
func Release(s *entity.Stock, qty decimal.Decimal, now time.Time) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	s.LockedQty = s.LockedQty.Sub(qty)
	if s.LockedQty.LessThan(decimal.Zero) {
		s.LockedQty = decimal.Zero
	}
	s.AvailableQty = s.Qty.Sub(s.LockedQty)
	s.UpdatedAt = now
	return nil
}

// Fulfill consume cantidad bloqueada: Qty y LockedQty bajan juntas, de modo que
// AvailableQty no cambia (ya excluía lo bloqueado).
func Fulfill(s *entity.Stock, qty decimal.Decimal, now time.Time) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	if s.LockedQty.LessThan(qty) || s.Qty.LessThan(qty) {
		return domain.ErrInsufficientStock
	}
	s.Qty = s.Qty.Sub(qty)
	s.LockedQty = s.LockedQty.Sub(qty)
	s.AvailableQty = s.Qty.Sub(s.LockedQty)
	s.UpdatedAt = now
	return nil
}
