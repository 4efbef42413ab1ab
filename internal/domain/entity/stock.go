package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock registro maestro de inventario por (SKU, bodega). Clave única sku_id + warehouse_id.
// AvailableQty es derivada (Qty - LockedQty) y se recalcula en cada operación.
// El registro nunca se elimina: puede quedar en cero pero se conserva para auditoría.
type Stock struct {
	ID           string
	SkuID        string
	WarehouseID  string
	Qty          decimal.Decimal // cantidad física en bodega
	LockedQty    decimal.Decimal // cantidad bloqueada (reservas)
	AvailableQty decimal.Decimal // Qty - LockedQty
	AvgCost      decimal.Decimal // costo promedio ponderado móvil
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
