package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un bloqueo de stock. LOCKED es el único estado activo;
// UNLOCKED y CONSUMED son terminales y no admiten transición de vuelta.
const (
	LockStatusLocked   = "LOCKED"
	LockStatusUnlocked = "UNLOCKED"
	LockStatusConsumed = "CONSUMED"
)

// StockLock reserva contra la cantidad disponible de un (SKU, bodega).
// Reduce la disponibilidad vendible sin tocar la cantidad física ni los lotes.
type StockLock struct {
	ID            string
	LockNo        string // número de documento único (LK...)
	SkuID         string
	WarehouseID   string
	LockedQty     decimal.Decimal
	Status        string
	SourceType    string // normalmente ORDER
	SourceOrderNo string
	Operator      string
	LockedAt      time.Time
	UnlockedAt    *time.Time // fecha de cierre (UNLOCKED o CONSUMED)
}
